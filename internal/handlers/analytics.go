package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	visitorSessionHeader = "X-Visitor-Session"
	visitorSessionCookie = "visitor_session"
	visitorCookieMaxAge  = 30 * 24 * 60 * 60
)

type trackRequest struct {
	SessionID string `json:"session_id"`
	CountView bool   `json:"count_view"`
}

// trackVisit registers a page visit. The session id comes from the header,
// the body, or the cookie, in that order; the response always refreshes the
// cookie so returning browsers keep their identity.
func (h *HandlerSet) trackVisit(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An empty or unparsable body is fine; tracking still proceeds.
		req = trackRequest{}
	}

	sessionID := c.GetHeader(visitorSessionHeader)
	if sessionID == "" {
		sessionID = req.SessionID
	}
	if sessionID == "" {
		if cookie, err := c.Cookie(visitorSessionCookie); err == nil {
			sessionID = cookie
		}
	}

	summary, err := h.analytics.Track(c.Request.Context(), sessionID, c.ClientIP(), c.Request.UserAgent(), req.CountView)
	if err != nil {
		h.log.Error().Err(err).Msg("track visit failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.SetCookie(visitorSessionCookie, summary.SessionID, visitorCookieMaxAge, "/", "", false, true)

	c.JSON(http.StatusOK, summary)
}

func (h *HandlerSet) visitorStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	stats, err := h.analytics.RecentStats(c.Request.Context(), days)
	if err != nil {
		h.log.Error().Err(err).Msg("visitor stats failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *HandlerSet) visitorSummary(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("visitor summary failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.JSON(http.StatusOK, summary)
}
