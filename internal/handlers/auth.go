package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dextryayers/rujukan-jatim/internal/middleware"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/service"
)

const blockedPage = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Akses Diblokir</title>
</head>
<body>
<h1>Terlalu banyak percobaan</h1>
<p>Akses dari alamat %s diblokir sementara. Silakan coba lagi dalam 30 menit.</p>
</body>
</html>`

// gateAttempts returns true when the caller is rate-limited; the block
// response is a static HTML page, not the JSON envelope.
func (h *HandlerSet) gateAttempts(c *gin.Context, action string) bool {
	ip := c.ClientIP()
	blocked, err := h.limiter.Blocked(c.Request.Context(), action, ip)
	if err != nil {
		h.log.Error().Err(err).Str("action", action).Msg("rate limit lookup failed")
		return false
	}
	if blocked {
		c.Data(http.StatusForbidden, "text/html; charset=utf-8", []byte(fmt.Sprintf(blockedPage, ip)))
		c.Abort()
		return true
	}
	return false
}

// countable reports whether a failed attempt should feed the rate limiter.
// Validation and uniqueness failures do not count.
func countable(err error) bool {
	return errors.Is(err, service.ErrInvalidCredentials) ||
		errors.Is(err, service.ErrHumanCheckFailed) ||
		errors.Is(err, service.ErrInvalidAdminCode)
}

func (h *HandlerSet) recordFailure(c *gin.Context, action string) {
	if err := h.limiter.RecordFailure(c.Request.Context(), action, c.ClientIP()); err != nil {
		h.log.Error().Err(err).Str("action", action).Msg("record auth failure failed")
	}
}

func (h *HandlerSet) resetAttempts(c *gin.Context, action string) {
	if err := h.limiter.Reset(c.Request.Context(), action, c.ClientIP()); err != nil {
		h.log.Error().Err(err).Str("action", action).Msg("reset auth attempts failed")
	}
}

type registerRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50"`
	Password    string  `json:"password" binding:"required,min=8"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	Role        string  `json:"role"`
	FullName    string  `json:"full_name" binding:"required"`
	City        *string `json:"city"`
	Institution *string `json:"institution"`
	HumanToken  string  `json:"recaptcha_token"`
	AdminCode   string  `json:"admin_code"`
}

func (h *HandlerSet) register(c *gin.Context) {
	if h.gateAttempts(c, "register") {
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if req.Role == "" {
		req.Role = string(models.UserRoleMember)
	}
	if !models.ValidRole(req.Role) {
		respondError(c, http.StatusUnprocessableEntity, "invalid_role")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        req.Role,
		FullName:    req.FullName,
		City:        req.City,
		Institution: req.Institution,
		HumanToken:  req.HumanToken,
		AdminCode:   req.AdminCode,
	})
	if err != nil {
		if countable(err) {
			h.recordFailure(c, "register")
		}
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			respondError(c, http.StatusUnprocessableEntity, "username_taken")
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusUnprocessableEntity, "email_taken")
		case errors.Is(err, service.ErrHumanCheckFailed):
			respondError(c, http.StatusUnprocessableEntity, "human_check_failed")
		case errors.Is(err, service.ErrInvalidAdminCode):
			respondError(c, http.StatusUnprocessableEntity, "invalid_admin_code")
		default:
			h.log.Error().Err(err).Msg("register failed")
			respondError(c, http.StatusInternalServerError, "internal_server_error")
		}
		return
	}

	h.resetAttempts(c, "register")
	h.activity.Log(c.Request.Context(), "user.registered",
		fmt.Sprintf("Pengguna %q mendaftar.", result.User.Username),
		&result.User, map[string]any{"role": string(result.User.Role)})

	c.JSON(http.StatusCreated, gin.H{
		"token": result.Token,
		"user":  renderUser(result.User),
	})
}

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	HumanToken string `json:"recaptcha_token"`
}

func (h *HandlerSet) login(c *gin.Context) {
	if h.gateAttempts(c, "login") {
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		HumanToken: req.HumanToken,
	})
	if err != nil {
		if countable(err) {
			h.recordFailure(c, "login")
		}
		switch {
		case errors.Is(err, service.ErrHumanCheckFailed):
			respondError(c, http.StatusUnprocessableEntity, "human_check_failed")
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "invalid_credentials")
		default:
			h.log.Error().Err(err).Msg("login failed")
			respondError(c, http.StatusInternalServerError, "internal_server_error")
		}
		return
	}

	h.resetAttempts(c, "login")

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  renderUser(result.User),
	})
}

func (h *HandlerSet) logout(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		respondError(c, http.StatusInternalServerError, "internal_server_error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *HandlerSet) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": renderUser(user)})
}
