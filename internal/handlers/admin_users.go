package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/ids"
	"github.com/dextryayers/rujukan-jatim/internal/middleware"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
	"github.com/dextryayers/rujukan-jatim/internal/security"
)

func (h *HandlerSet) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": renderUsers(users)})
}

type createUserRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50"`
	Password    string  `json:"password" binding:"required,min=8"`
	Email       string  `json:"email" binding:"required,email"`
	Role        string  `json:"role" binding:"required"`
	FullName    string  `json:"full_name" binding:"required"`
	Phone       *string `json:"phone"`
	City        *string `json:"city"`
	Institution *string `json:"institution"`
	HumanToken  string  `json:"recaptcha_token"`
}

func (h *HandlerSet) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if !models.ValidRole(req.Role) {
		respondError(c, http.StatusUnprocessableEntity, "invalid_role")
		return
	}

	ctx := c.Request.Context()

	// Minting another admin account takes a human-check pass of its own.
	if req.Role == string(models.UserRoleAdmin) {
		if !h.humanCheck.Verify(ctx, req.HumanToken, "create_admin") {
			respondError(c, http.StatusUnprocessableEntity, "human_check_failed")
			return
		}
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := h.users.FindByUsername(ctx, username); err == nil {
		respondError(c, http.StatusUnprocessableEntity, "username_taken")
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		h.log.Error().Err(err).Msg("username lookup failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}
	if _, err := h.users.FindByEmail(ctx, email); err == nil {
		respondError(c, http.StatusUnprocessableEntity, "email_taken")
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		h.log.Error().Err(err).Msg("email lookup failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("hash password failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	user := models.User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
		Name:         req.FullName,
		Phone:        req.Phone,
		City:         req.City,
		Institution:  req.Institution,
	}

	if err := h.users.Create(ctx, user); err != nil {
		h.log.Error().Err(err).Msg("create user failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(ctx, "user.created",
		fmt.Sprintf("Pengguna %q ditambahkan.", user.Username),
		&actor, map[string]any{"user_id": user.ID, "role": string(user.Role)})

	c.JSON(http.StatusCreated, gin.H{"user": renderUser(user)})
}

type updateUserRequest struct {
	Username    *string `json:"username" binding:"omitempty,min=3,max=50"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Role        *string `json:"role"`
	FullName    *string `json:"full_name"`
	Phone       *string `json:"phone"`
	City        *string `json:"city"`
	Institution *string `json:"institution"`
}

func (h *HandlerSet) updateUser(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("load user failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			respondError(c, http.StatusUnprocessableEntity, "invalid_role")
			return
		}
		user.Role = models.UserRole(*req.Role)
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			if _, err := h.users.FindByUsername(ctx, username); err == nil {
				respondError(c, http.StatusUnprocessableEntity, "username_taken")
				return
			} else if !errors.Is(err, repository.ErrUserNotFound) {
				h.log.Error().Err(err).Msg("username lookup failed")
				respondError(c, http.StatusInternalServerError, "internal_server_error")
				return
			}
			user.Username = username
		}
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email != user.Email {
			if _, err := h.users.FindByEmail(ctx, email); err == nil {
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
	if req.FullName != nil {
		user.Name = *req.FullName
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
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			h.log.Error().Err(err).Msg("hash password failed")
			respondError(c, http.StatusInternalServerError, "internal_server_error")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.users.Update(ctx, user); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("update user failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	actor, _ := middleware.CurrentUser(c)
	h.activity.Log(ctx, "user.updated",
		fmt.Sprintf("Pengguna %q diperbarui.", user.Username),
		&actor, map[string]any{"user_id": user.ID})

	c.JSON(http.StatusOK, gin.H{"user": renderUser(user)})
}

func (h *HandlerSet) deleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	actor, _ := middleware.CurrentUser(c)
	if actor.ID == c.Param("id") {
		respondError(c, http.StatusUnprocessableEntity, "cannot_delete_self")
		return
	}

	user, err := h.users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("load user failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	// Revoke any live session before the row goes away.
	if err := h.tokens.DeleteByUser(ctx, user.ID); err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("revoke tokens failed")
	}

	if err := h.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "not_found")
			return
		}
		h.log.Error().Err(err).Msg("delete user failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}

	h.activity.Log(ctx, "user.deleted",
		fmt.Sprintf("Pengguna %q dihapus.", user.Username),
		&actor, map[string]any{"user_id": user.ID})

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
