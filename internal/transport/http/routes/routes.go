package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/core/domain"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/infra/config"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/transport/http/handlers"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/transport/http/middleware"
	"github.com/Azerothforev/YaMDB-Social-Network-API/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Signup  *usecase.SignupService
	Tokens  *usecase.TokenService
	Users   *usecase.UserService
	Catalog *usecase.CatalogService
	Reviews *usecase.ReviewService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if len(deps.Config.App.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	}

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	optionalAuth := middleware.OptionalAuth(deps.Services.Tokens)
	requireAuth := middleware.RequireAuth(deps.Services.Tokens)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Signup, deps.Services.Tokens)
		authHandler.RegisterRoutes(authGroup,
			buildRateLimit(deps, "auth_signup_ip", deps.Config.RateLimit.SignupMaxAttempts),
			buildRateLimit(deps, "auth_token_ip", deps.Config.RateLimit.TokenMaxAttempts),
		)

		userHandler := handlers.NewUserHandler(deps.Services.Users)
		userHandler.RegisterRoutes(api,
			[]gin.HandlerFunc{requireAuth, middleware.RequirePolicy(domain.AdminOnly{})},
			[]gin.HandlerFunc{requireAuth, middleware.RequirePolicy(domain.SelfService{})},
		)

		catalogChain := []gin.HandlerFunc{optionalAuth, middleware.RequirePolicy(domain.ReadOnlyOrAdmin{})}

		catalogHandler := handlers.NewCatalogHandler(deps.Services.Catalog)
		catalogHandler.RegisterRoutes(api, catalogChain)

		titleHandler := handlers.NewTitleHandler(deps.Services.Catalog)
		titleHandler.RegisterRoutes(api, catalogChain)

		contentPolicy := domain.AuthorOrModeratorOrReadOnly{}
		contentChain := []gin.HandlerFunc{optionalAuth, middleware.RequirePolicy(contentPolicy)}

		reviewHandler := handlers.NewReviewHandler(deps.Services.Reviews, contentPolicy)
		reviewHandler.RegisterRoutes(api, contentChain)

		commentHandler := handlers.NewCommentHandler(deps.Services.Reviews, contentPolicy)
		commentHandler.RegisterRoutes(api, contentChain)
	}

	return r
}

func buildRateLimit(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
