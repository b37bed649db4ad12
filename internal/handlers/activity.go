package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultActivityLimit = 20

func (h *HandlerSet) activityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = defaultActivityLimit
	}

	entries, err := h.activity.Recent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("list activity logs failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": renderActivities(entries)})
}
