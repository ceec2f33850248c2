package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seatbook/internal/config"
	"github.com/iliyamo/seatbook/internal/handler"
	"github.com/iliyamo/seatbook/internal/middleware"
)

// RegisterReservations registers the per-account reservation routes.
// GET /:email and the write routes share one path segment; echo routes
// them by method.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, cache config.CacheConfig, rdb *redis.Client, guard ...echo.MiddlewareFunc) {
	g := e.Group("/api/reservations", guard...)
	purge := middleware.PurgeCache(cache, rdb)

	g.GET("/:email", h.ListByEmail)
	g.PUT("/:id", h.Reschedule, purge)
	g.DELETE("/:id", h.Delete, purge)
}
