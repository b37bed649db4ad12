package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/ids"
	"github.com/dextryayers/rujukan-jatim/internal/middleware"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
)

func accreditationFilterFromQuery(c *gin.Context) repository.AccreditationFilter {
	filter := repository.AccreditationFilter{}

	if raw := c.Query("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			filter.Year = &year
		}
	}
	if raw := c.Query("month"); raw != "" {
		if month, err := strconv.Atoi(raw); err == nil && month >= 1 && month <= 12 {
			filter.Month = &month
		}
	}
	if region := strings.TrimSpace(c.Query("region")); region != "" {
		filter.Region = region
		filter.RegionSet = true
	}

	return filter
}

// latestAccreditation returns the newest snapshot matching the filters, or a
// zero-value body when nothing has been recorded yet.
func (h *HandlerSet) latestAccreditation(c *gin.Context) {
	stat, err := h.accreditation.Latest(c.Request.Context(), accreditationFilterFromQuery(c))
	if err != nil {
		if errors.Is(err, repository.ErrAccreditationNotFound) {
			c.JSON(http.StatusOK, accreditationResponse{})
			return
		}
		h.log.Error().Err(err).Msg("latest accreditation failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.JSON(http.StatusOK, renderAccreditation(stat))
}

const (
	defaultHistoryLimit = 120
	maxHistoryLimit     = 500
)

func (h *HandlerSet) accreditationHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	stats, err := h.accreditation.History(c.Request.Context(), accreditationFilterFromQuery(c), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("accreditation history failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": renderAccreditations(stats)})
}

type accreditationRequest struct {
	Paripurna  float64 `json:"paripurna" binding:"min=0"`
	Utama      float64 `json:"utama" binding:"min=0"`
	Madya      float64 `json:"madya" binding:"min=0"`
	Year       *int    `json:"year"`
	Month      *int    `json:"month" binding:"omitempty,min=1,max=12"`
	Region     *string `json:"region"`
	RecordedAt *string `json:"recorded_at"`
}

// resolveRecordedAt prefers an explicit timestamp, then the first of the
// stated period, then now.
func resolveRecordedAt(req accreditationRequest, now time.Time) (time.Time, error) {
	if req.RecordedAt != nil && *req.RecordedAt != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, *req.RecordedAt); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, errors.New("invalid recorded_at")
	}
	if req.Year != nil {
		month := time.January
		if req.Month != nil {
			month = time.Month(*req.Month)
		}
		return time.Date(*req.Year, month, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return now, nil
}

func (h *HandlerSet) upsertAccreditation(c *gin.Context) {
	var req accreditationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	recordedAt, err := resolveRecordedAt(req, time.Now())
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid_recorded_at")
		return
	}

	var region *string
	if req.Region != nil {
		if trimmed := strings.TrimSpace(*req.Region); trimmed != "" {
			region = &trimmed
		}
	}

	stat, err := h.accreditation.Upsert(c.Request.Context(), models.AccreditationStat{
		ID:         ids.New(),
		Paripurna:  int(math.Round(req.Paripurna)),
		Utama:      int(math.Round(req.Utama)),
		Madya:      int(math.Round(req.Madya)),
		RecordedAt: &recordedAt,
		Year:       req.Year,
		Month:      req.Month,
		Region:     region,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("upsert accreditation failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(c.Request.Context(), "akreditasi.updated",
		"Data akreditasi diperbarui.",
		&actor, map[string]any{
			"paripurna": stat.Paripurna,
			"utama":     stat.Utama,
			"madya":     stat.Madya,
		})

	c.JSON(http.StatusOK, renderAccreditation(stat))
}
