package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/middleware"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
	"github.com/dextryayers/rujukan-jatim/internal/security"
)

type profileRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	City        *string `json:"city"`
	Institution *string `json:"institution"`
	PhotoURL    *string `json:"photo_url"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
}

// updateProfile is a partial self-update; only the provided fields change.
func (h *HandlerSet) updateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email != user.Email {
			if _, err := h.users.FindByEmail(c.Request.Context(), email); err == nil {
				respondError(c, http.StatusUnprocessableEntity, "email_taken")
				return
			} else if !errors.Is(err, repository.ErrUserNotFound) {
				h.log.Error().Err(err).Msg("email lookup failed")
				respondError(c, http.StatusInternalServerError, "internal_server_error")
				return
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.City != nil {
		user.City = req.City
	}
	if req.Institution != nil {
		user.Institution = req.Institution
	}
	if req.PhotoURL != nil {
		user.PhotoURL = req.PhotoURL
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			h.log.Error().Err(err).Msg("hash password failed")
			respondError(c, http.StatusInternalServerError, "internal_server_error")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("update profile failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": renderUser(user)})
}
