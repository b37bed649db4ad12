package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
)

const (
	ContextUser  = "current_user"
	ContextToken = "auth_token"
)

// Auth resolves the bearer token to a live auth_tokens row and loads the
// owning user into the context.
func Auth(tokens *repository.TokenRepository, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		authToken, err := tokens.FindLive(c.Request.Context(), tokenStr, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), authToken.UserID)
		if err != nil {
			status := http.StatusUnauthorized
			if err != repository.ErrUserNotFound {
				status = http.StatusInternalServerError
			}
			c.AbortWithStatusJSON(status, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextToken, tokenStr)
		c.Set(ContextUser, user)

		c.Next()
	}
}

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userVal, exists := c.Get(ContextUser)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the gin context.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(ContextUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
