package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/ids"
	"github.com/dextryayers/rujukan-jatim/internal/middleware"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
)

func (h *HandlerSet) listIndicators(c *gin.Context) {
	filter := repository.IndicatorFilter{
		Region: c.Query("region"),
		Status: c.Query("status"),
	}

	indicators, err := h.indicators.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("list indicators failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"indikators": renderIndicators(indicators)})
}

type indicatorRequest struct {
	Name    string   `json:"name" binding:"required"`
	Region  *string  `json:"region"`
	Capaian *float64 `json:"capaian"`
	Target  *float64 `json:"target"`
	Status  *string  `json:"status"`
	Date    *string  `json:"date"`
}

func parseIndicatorDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (h *HandlerSet) createIndicator(c *gin.Context) {
	var req indicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	date, err := parseIndicatorDate(req.Date)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid_date")
		return
	}

	status := req.Status
	if status == nil {
		status = models.DeriveIndicatorStatus(req.Capaian, req.Target)
	}

	ind := models.Indicator{
		ID:      ids.New(),
		Name:    req.Name,
		Region:  req.Region,
		Capaian: req.Capaian,
		Target:  req.Target,
		Status:  status,
		Date:    date,
	}

	if err := h.indicators.Create(c.Request.Context(), ind); err != nil {
		h.log.Error().Err(err).Msg("create indicator failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(c.Request.Context(), "indicator.created",
		fmt.Sprintf("Indikator %q ditambahkan.", ind.Name),
		&actor, map[string]any{"indicator_id": ind.ID})

	c.JSON(http.StatusCreated, gin.H{"indikator": renderIndicator(ind)})
}

type indicatorUpdateRequest struct {
	Name    *string  `json:"name"`
	Region  *string  `json:"region"`
	Capaian *float64 `json:"capaian"`
	Target  *float64 `json:"target"`
	Status  *string  `json:"status"`
	Date    *string  `json:"date"`
}

// applyIndicatorUpdate folds the provided fields into the row. The status is
// re-derived only when the payload carries both capaian and target and no
// explicit status; a lone number keeps the stored status.
func applyIndicatorUpdate(ind models.Indicator, req indicatorUpdateRequest) (models.Indicator, error) {
	if req.Name != nil {
		ind.Name = *req.Name
	}
	if req.Region != nil {
		ind.Region = req.Region
	}
	if req.Capaian != nil {
		ind.Capaian = req.Capaian
	}
	if req.Target != nil {
		ind.Target = req.Target
	}
	if req.Status != nil {
		ind.Status = req.Status
	} else if req.Capaian != nil && req.Target != nil {
		ind.Status = models.DeriveIndicatorStatus(ind.Capaian, ind.Target)
	}
	if req.Date != nil {
		date, err := parseIndicatorDate(req.Date)
		if err != nil {
			return models.Indicator{}, err
		}
		ind.Date = date
	}
	return ind, nil
}

func (h *HandlerSet) updateIndicator(c *gin.Context) {
	ind, err := h.indicators.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrIndicatorNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("load indicator failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	var req indicatorUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	ind, err = applyIndicatorUpdate(ind, req)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "invalid_date")
		return
	}

	if err := h.indicators.Update(c.Request.Context(), ind); err != nil {
		if errors.Is(err, repository.ErrIndicatorNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("update indicator failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(c.Request.Context(), "indicator.updated",
		fmt.Sprintf("Indikator %q diperbarui.", ind.Name),
		&actor, map[string]any{"indicator_id": ind.ID})

	c.JSON(http.StatusOK, gin.H{"indikator": renderIndicator(ind)})
}

func (h *HandlerSet) deleteIndicator(c *gin.Context) {
	ind, err := h.indicators.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrIndicatorNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("load indicator failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	if err := h.indicators.Delete(c.Request.Context(), ind.ID); err != nil {
		if errors.Is(err, repository.ErrIndicatorNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("delete indicator failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(c.Request.Context(), "indicator.deleted",
		fmt.Sprintf("Indikator %q dihapus.", ind.Name),
		&actor, map[string]any{"indicator_id": ind.ID})

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type replaceIndicatorsRequest struct {
	Indikators []indicatorRequest `json:"indikators" binding:"required,dive"`
}

// replaceIndicators swaps the whole data set in one transaction; a bad row
// anywhere leaves the existing rows untouched.
func (h *HandlerSet) replaceIndicators(c *gin.Context) {
	var req replaceIndicatorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	indicators := make([]models.Indicator, 0, len(req.Indikators))
	for _, item := range req.Indikators {
		date, err := parseIndicatorDate(item.Date)
		if err != nil {
			respondError(c, http.StatusUnprocessableEntity, "invalid_date")
			return
		}
		status := item.Status
		if status == nil {
			status = models.DeriveIndicatorStatus(item.Capaian, item.Target)
		}
		indicators = append(indicators, models.Indicator{
			ID:      ids.New(),
			Name:    item.Name,
			Region:  item.Region,
			Capaian: item.Capaian,
			Target:  item.Target,
			Status:  status,
			Date:    date,
		})
	}

	if err := h.indicators.ReplaceAll(c.Request.Context(), indicators); err != nil {
		h.log.Error().Err(err).Msg("replace indicators failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(c.Request.Context(), "indicator.bulk_replace",
		fmt.Sprintf("Data indikator diganti (%d entri).", len(indicators)),
		&actor, map[string]any{"count": len(indicators)})

	c.JSON(http.StatusOK, gin.H{"count": len(indicators)})
}
