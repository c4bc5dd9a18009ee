// Package api wires the HTTP surface.
//
//	@title						messagely API
//	@version					1.0
//	@description				Direct messaging between registered users.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/messagely/messagely-api/docs"
	"github.com/messagely/messagely-api/internal/api/handler"
	"github.com/messagely/messagely-api/internal/api/middleware"
	"github.com/messagely/messagely-api/internal/core/ports"
	"github.com/messagely/messagely-api/internal/infrastructure/http/handlers"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Auth      ports.AuthService
	Messages  ports.MessageService
	Directory ports.Directory
	Sessions  ports.SessionVerifier
	// Readiness checks run by GET /health/ready, keyed by dependency name.
	Readiness map[string]handlers.Check
	Logger    zerolog.Logger

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "messagely",
		Registerer: deps.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	messageHandler := handler.NewMessageHandler(deps.Messages)
	userHandler := handler.NewUserHandler(deps.Directory, deps.Messages)
	authMiddleware := middleware.Auth(deps.Sessions)
	ownAccount := middleware.EnsureCorrectUser("username")

	// --- Auth routes ---
	e.POST("/login", authHandler.Login)
	e.POST("/register", authHandler.Register)

	// --- Message routes ---
	messages := e.Group("/messages", authMiddleware)
	messages.GET("/:id", messageHandler.Get)
	messages.POST("", messageHandler.Create)
	messages.POST("/:id/read", messageHandler.MarkRead)

	// --- User routes ---
	users := e.Group("/users", authMiddleware)
	users.GET("", userHandler.List)
	users.GET("/:username", userHandler.Get, ownAccount)
	users.GET("/:username/to", userHandler.Received, ownAccount)
	users.GET("/:username/from", userHandler.Sent, ownAccount)

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
