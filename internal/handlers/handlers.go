package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/t-azam747/SecureRelief-sub003/internal/cache"
	"github.com/t-azam747/SecureRelief-sub003/internal/config"
	"github.com/t-azam747/SecureRelief-sub003/internal/metrics"
	"github.com/t-azam747/SecureRelief-sub003/internal/middleware"
	"github.com/t-azam747/SecureRelief-sub003/internal/models"
	"github.com/t-azam747/SecureRelief-sub003/internal/repository"
	"github.com/t-azam747/SecureRelief-sub003/internal/service"
)

type pingFunc func(ctx context.Context) error

type HandlerSet struct {
	cfg         *config.AppConfig
	authService *service.AuthService
	pingDB      pingFunc
	cache       *redis.Client
	limiter     middleware.Limiter
	revocations middleware.RevocationChecker
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, db *pgxpool.Pool, redisClient *redis.Client, m *metrics.Auth) HandlerSet {
	return newHandlerSet(log, cfg, repository.NewUserRepository(db), db.Ping, redisClient, m)
}

func newHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	users service.UserStore,
	pingDB pingFunc,
	redisClient *redis.Client,
	m *metrics.Auth,
) HandlerSet {
	var (
		revoker     service.Revoker
		revocations middleware.RevocationChecker
		limiter     middleware.Limiter
	)
	if redisClient != nil {
		if cfg.Security.RevokeOnLogout {
			denylist := cache.NewTokenDenylist(redisClient)
			revoker, revocations = denylist, denylist
		}
		if cfg.RateLimit.Requests > 0 {
			limiter = cache.NewRateLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	}

	return HandlerSet{
		cfg:         cfg,
		authService: service.NewAuthService(users, revoker, cfg, m, log),
		pingDB:      pingDB,
		cache:       redisClient,
		limiter:     limiter,
		revocations: revocations,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireAuth := middleware.Auth(h.cfg.Security.JWTAccessSecret, h.revocations)

	auth := router.Group("/auth")
	{
		auth.POST("/precheck", middleware.RateLimit(h.limiter, "precheck"), h.Precheck)
		auth.POST("/nonce", middleware.RateLimit(h.limiter, "nonce"), h.Nonce)
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", middleware.RateLimit(h.limiter, "login"), h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", requireAuth, h.Me)
	}

	admin := router.Group("/admin")
	admin.Use(
		requireAuth,
		middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleGovernment),
	)
	admin.PATCH("/users/:id/status", h.UpdateUserStatus)
}
