// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seatbook/internal/config"
	"github.com/iliyamo/seatbook/internal/handler"
	"github.com/iliyamo/seatbook/internal/middleware"
)

// Deps carries everything the routes need.  Redis may be nil, in which
// case caching and rate limiting are off.
type Deps struct {
	Config       config.Config
	Logger       *slog.Logger
	Redis        *redis.Client
	Health       handler.Health
	Auth         *handler.AuthHandler
	Seats        *handler.SeatHandler
	Reservations *handler.ReservationHandler
}

// New builds the echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Config.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Identify(d.Config.JWTSecret))
	e.Use(middleware.NewTokenBucket(d.Config.RateLimit, d.Redis))

	RegisterRoutes(e, d.Health)
	RegisterAuth(e, d.Auth, d.Config.JWTSecret)

	var guard []echo.MiddlewareFunc
	if d.Config.RequireAuth {
		guard = append(guard, middleware.JWTAuth(d.Config.JWTSecret))
	}
	RegisterSeats(e, d.Seats, d.Config.Cache, d.Redis, guard...)
	RegisterReservations(e, d.Reservations, d.Config.Cache, d.Redis, guard...)
	return e
}

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, h handler.Health) {
	e.GET("/healthz", h.Check)
}

// RegisterAuth registers signup and login under /api and the token
// protected /api/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}
