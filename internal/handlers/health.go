package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *HandlerSet) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// healthz reports readiness of the two hard dependencies.
func (h *HandlerSet) healthz(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	checks := gin.H{"postgres": "ok", "redis": "ok"}

	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.cache.Ping(ctx).Err(); err != nil {
		checks["redis"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, checks)
}
