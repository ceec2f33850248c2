package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seatbook/internal/config"
	"github.com/iliyamo/seatbook/internal/handler"
	"github.com/iliyamo/seatbook/internal/middleware"
)

// RegisterSeats registers /api/seats.  Reads go through the response
// cache; every write purges it.
func RegisterSeats(e *echo.Echo, h *handler.SeatHandler, cache config.CacheConfig, rdb *redis.Client, guard ...echo.MiddlewareFunc) {
	g := e.Group("/api/seats", guard...)

	cached := middleware.NewRedisCache(cache, rdb)
	g.GET("", h.Status, cached)
	g.GET("/reserved-details", h.ReservedDetails, cached)
	g.GET("/reservation", h.Lookup, cached)
	g.GET("/usage-report", h.UsageReport, cached)

	purge := middleware.PurgeCache(cache, rdb)
	g.POST("/reserve", h.Reserve, purge)
	g.PUT("/reserve/:id", h.Update, purge)
	g.DELETE("/reserve/:id", h.Delete, purge)
	g.POST("/disable", h.Disable, purge)
	g.POST("/release", h.Release, purge)
	g.POST("/add-seat", h.AddSeat, purge)
}
