package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/famlink/family-api/docs" // swagger docs, generated by swag

	"github.com/famlink/family-api/internal/api/handler"
	"github.com/famlink/family-api/internal/api/middleware"
	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
	"github.com/famlink/family-api/internal/core/service"
	"github.com/famlink/family-api/internal/infrastructure/config"
	mongodb "github.com/famlink/family-api/internal/infrastructure/db/mongo"
	redisdb "github.com/famlink/family-api/internal/infrastructure/db/redis"
	"github.com/famlink/family-api/internal/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, activity ports.ActivitySink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173", cfg.AppURL},
		AllowCredentials: true,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Refresh-Token"},
	}))
	e.Use(echoprometheus.NewMiddleware("famlink"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(db)
	familyRepo := mongodb.NewFamilyRepository(db)
	codec := token.NewCodec(cfg.JWTSecret)

	authService := service.NewAuthService(accountRepo, familyRepo, codec, activity)
	familyService := service.NewFamilyService(accountRepo, familyRepo, codec, cfg.AppURL, activity)

	authHandler := handler.NewAuthHandler(authService)
	familyHandler := handler.NewFamilyHandler(familyService)

	requireAuth := middleware.Auth(codec, accountRepo)
	childOnly := middleware.RequireRole(domain.RoleChild)

	counterStore := redisdb.NewCounterStore(rdb)
	authLimit := middleware.RateLimit(counterStore, middleware.Policy{
		Tag:    "auth",
		Window: time.Duration(cfg.RateLimit.AuthWindowSeconds) * time.Second,
		Max:    cfg.RateLimit.AuthMaxRequests,
	}, log)
	inviteLimit := middleware.RateLimit(counterStore, middleware.Policy{
		Tag:    "invite",
		Window: time.Duration(cfg.RateLimit.InviteWindowSeconds) * time.Second,
		Max:    cfg.RateLimit.InviteMaxRequests,
	}, log)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register, authLimit)
	e.POST("/auth/login", authHandler.Login, authLimit)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, requireAuth)

	// --- Family routes ---
	e.GET("/family", familyHandler.Get, requireAuth)
	e.GET("/family/invite", familyHandler.Invite, requireAuth, childOnly)
	e.GET("/family/invite/:code", familyHandler.ValidateInvite, inviteLimit)
	e.POST("/family/join", familyHandler.Join, authLimit)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
