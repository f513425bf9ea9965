package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/perfilapp/perfil/docs"
	"github.com/perfilapp/perfil/internal/api/handler"
	"github.com/perfilapp/perfil/internal/api/metrics"
	"github.com/perfilapp/perfil/internal/api/middleware"
	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/ports"
	"github.com/perfilapp/perfil/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router needs, built once in main.
type Dependencies struct {
	Auth     ports.AuthController
	Profiles ports.ProfileService
	Editor   ports.ProfileEditor
	Sessions handler.SessionReader
	Tokens   handler.TokenSource
	Checks   map[string]handlers.Check
	Verifier middleware.TokenVerifier

	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(deps.Metrics.Middleware())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, deps.Tokens, deps.Metrics)
	sessionHandler := handler.NewSessionHandler(deps.Sessions)
	profileHandler := handler.NewProfileHandler(deps.Profiles, deps.Editor, deps.Metrics)
	healthHandler := handlers.NewHealthHandler(deps.Checks)

	// --- Health probes and tooling (no session required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(deps.Gatherer)))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")
	v1.GET("/session", sessionHandler.Get)

	// --- Unauthenticated group ---
	guest := v1.Group("/auth", middleware.RequireView(deps.Sessions, domain.ViewUnauthenticated))
	guest.POST("/login", authHandler.Login)
	guest.POST("/register", authHandler.Register)

	// --- Authenticated group ---
	signedIn := v1.Group("",
		middleware.RequireView(deps.Sessions, domain.ViewAuthenticated),
		middleware.Session(deps.Verifier, deps.Sessions),
	)
	signedIn.POST("/auth/logout", authHandler.Logout)
	signedIn.GET("/home", profileHandler.Home)
	signedIn.GET("/profile", profileHandler.Get)
	signedIn.PUT("/profile", profileHandler.Update)
	signedIn.POST("/profile/edit", profileHandler.BeginEdit)
	signedIn.DELETE("/profile/edit", profileHandler.CancelEdit)

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
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
