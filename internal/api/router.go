package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identito/auth-service/internal/api/handler"
	"github.com/identito/auth-service/internal/api/middleware"
	"github.com/identito/auth-service/internal/core/ports"
)

// Deps carries everything the router needs to wire the routes.
type Deps struct {
	Auth       ports.AuthService
	Audit      handler.AuditSink // may be nil
	CookieName string
	Mongo      *mongo.Database
	Redis      *redis.Client // may be nil
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("auth"))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Audit, deps.CookieName)
	session := middleware.Session(deps.Auth, deps.CookieName)

	// --- Auth routes (mirroring the original form-based app) ---
	e.GET("/", authHandler.Welcome)
	e.POST("/users", authHandler.Register)
	e.POST("/sessions", authHandler.Login)
	e.DELETE("/sessions", authHandler.Logout, session)
	e.GET("/profile", authHandler.Profile, session)
	e.POST("/reset_password", authHandler.RequestReset)
	e.PUT("/reset_password", authHandler.CompleteReset)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
