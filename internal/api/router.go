package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	"github.com/rbac-labs/user-service/internal/api/handler"
	"github.com/rbac-labs/user-service/internal/api/middleware"
	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/service"
	"github.com/rbac-labs/user-service/internal/infrastructure/config"
	mongodb "github.com/rbac-labs/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/rbac-labs/user-service/internal/infrastructure/db/redis"
	"github.com/rbac-labs/user-service/internal/infrastructure/db/sqlite"
	"github.com/rbac-labs/user-service/internal/infrastructure/queue"
)

// Deps bundles the shared infrastructure handles the router wires together.
type Deps struct {
	DB    *sql.DB
	Redis *redis.Client
	Mongo *mongodriver.Database
	Audit *queue.AuditDispatcher
	Log   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("rbac"))

	// --- Dependencies ---
	userRepo := sqlite.NewUserRepository(deps.DB)
	sessionStore := redisdb.NewSessionStore(deps.Redis, deps.Log)
	auditRepo := mongodb.NewAuditRepository(deps.Mongo)

	sessionService := service.NewSessionService(sessionStore, userRepo, cfg.JWTSecret, cfg.Session.TTL, deps.Log)
	guard := service.NewGuard(service.NewAuthzService(userRepo), deps.Audit, deps.Log)
	authService := service.NewAuthService(userRepo, sessionService, deps.Audit, deps.Log)
	userService := service.NewUserService(userRepo, guard, deps.Log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	auditHandler := handler.NewAuditHandler(auditRepo)

	authMW := middleware.Auth(sessionService, guard)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	canList := middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)

	// Login attempts are throttled per client IP to slow brute forcing.
	loginLimiter := echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.Login.RatePerSecond),
			Burst: cfg.Login.Burst,
		}),
	})

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login, loginLimiter)
	e.POST("/api/auth/logout", authHandler.Logout, authMW)
	e.POST("/api/auth/logout-all", authHandler.LogoutAll, authMW)

	// --- User routes ---
	users := e.Group("/api/users", authMW)
	users.GET("", userHandler.List, canList)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.PATCH("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Session routes ---
	e.GET("/api/sessions", sessionHandler.List, authMW)

	// --- Audit routes (admin only) ---
	audit := e.Group("/api/audit", authMW, adminOnly)
	audit.GET("", auditHandler.ListDecisions)
	audit.GET("/violations", auditHandler.ListViolations)
	audit.GET("/stats", auditHandler.Stats)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis, deps.Mongo)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e
}
