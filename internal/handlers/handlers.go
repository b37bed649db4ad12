package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dextryayers/rujukan-jatim/internal/config"
	"github.com/dextryayers/rujukan-jatim/internal/middleware"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
	"github.com/dextryayers/rujukan-jatim/internal/service"
	"github.com/dextryayers/rujukan-jatim/internal/storage"
)

// HandlerSet owns the repositories and services behind the API and knows how
// to mount them on a router.
type HandlerSet struct {
	cfg   *config.AppConfig
	log   zerolog.Logger
	pool  *pgxpool.Pool
	cache *redis.Client

	users         *repository.UserRepository
	tokens        *repository.TokenRepository
	indicators    *repository.IndicatorRepository
	accreditation *repository.AccreditationRepository

	auth       *service.AuthService
	limiter    *service.RateLimiter
	analytics  *service.AnalyticsService
	documents  *service.DocumentService
	activity   *service.ActivityLogger
	humanCheck service.HumanVerifier
}

func NewHandlerSet(cfg *config.AppConfig, log zerolog.Logger, pool *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore) *HandlerSet {
	users := repository.NewUserRepository(pool)
	tokens := repository.NewTokenRepository(pool)
	visitors := repository.NewVisitorRepository(pool)
	indicators := repository.NewIndicatorRepository(pool)
	accreditation := repository.NewAccreditationRepository(pool)
	documents := repository.NewDocumentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	humanCheck := service.NewHumanCheck(cfg.HumanCheck, log)

	return &HandlerSet{
		cfg:           cfg,
		log:           log,
		pool:          pool,
		cache:         cache,
		users:         users,
		tokens:        tokens,
		indicators:    indicators,
		accreditation: accreditation,
		auth:          service.NewAuthService(users, tokens, humanCheck, cfg.Auth, log),
		limiter:       service.NewRateLimiter(cache, cfg.Auth.MaxAttempts, cfg.Auth.AttemptWindow),
		analytics:     service.NewAnalyticsService(visitors, log),
		documents:     service.NewDocumentService(documents, store, users, cfg.Upload, log),
		activity:      service.NewActivityLogger(activityRepo, log),
		humanCheck:    humanCheck,
	}
}

func (h *HandlerSet) Register(engine *gin.Engine) {
	api := engine.Group("/api")

	api.GET("/ping", h.ping)
	api.GET("/healthz", h.healthz)

	api.GET("/akreditasi", h.latestAccreditation)
	api.GET("/akreditasi/history", h.accreditationHistory)
	api.GET("/indikators", h.listIndicators)
	api.GET("/documents", h.listDocuments)
	api.GET("/documents/:id", h.getDocument)
	api.GET("/documents/:id/download", h.downloadDocument)

	api.POST("/analytics/track", h.trackVisit)
	api.GET("/analytics/stats", h.visitorStats)
	api.GET("/analytics/summary", h.visitorSummary)

	auth := api.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)

	session := auth.Group("", middleware.Auth(h.tokens, h.users))
	session.POST("/logout", h.logout)
	session.GET("/me", h.me)

	authed := api.Group("", middleware.Auth(h.tokens, h.users))
	authed.PUT("/profile", h.updateProfile)
	authed.GET("/activity/logs", h.activityLogs)

	admin := authed.Group("", middleware.RequireRoles(models.UserRoleAdmin))
	admin.POST("/akreditasi", h.upsertAccreditation)
	admin.POST("/indikators", h.createIndicator)
	admin.POST("/indikators/replace", h.replaceIndicators)
	admin.PUT("/indikators/:id", h.updateIndicator)
	admin.DELETE("/indikators/:id", h.deleteIndicator)
	admin.POST("/documents", h.uploadDocument)
	admin.PUT("/documents/:id", h.updateDocument)
	admin.DELETE("/documents/:id", h.deleteDocument)
	admin.GET("/admin/users", h.listUsers)
	admin.POST("/admin/users", h.createUser)
	admin.PUT("/admin/users/:id", h.updateUser)
	admin.DELETE("/admin/users/:id", h.deleteUser)
}
