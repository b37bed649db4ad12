package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/config"
)

// CORS allows the configured origins plus any origin matching one of the
// configured regex patterns (wildcard subdomains of the hosting domain).
// Credentials stay enabled, so the origin is always echoed, never "*".
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, origin := range cfg.AllowOrigins {
		originMap[strings.TrimSpace(origin)] = struct{}{}
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.OriginPatterns))
	for _, pattern := range cfg.OriginPatterns {
		if re, err := regexp.Compile(pattern); err == nil {
			patterns = append(patterns, re)
		}
	}

	allowed := func(origin string) bool {
		if _, ok := originMap[origin]; ok {
			return true
		}
		for _, re := range patterns {
			if re.MatchString(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && allowed(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Visitor-Session")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
			c.Writer.Header().Set("Access-Control-Max-Age", "300")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
