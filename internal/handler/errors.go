// Package handler contains the echo handlers for the seat API.  Handlers
// decode requests, call a service and translate service errors into
// status codes.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seatbook/internal/service"
)

// storeTimeout bounds every service call made by a handler.
const storeTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// messages overrides the default text for a sentinel error on a single
// endpoint.
type messages map[error]string

// errorStatus maps a service error to a status code and the text shown
// to the client.  Unknown errors become 500 with fallback.
func errorStatus(err error, fallback string, override messages) (int, string) {
	status, msg := http.StatusInternalServerError, fallback
	var in *service.InputError
	switch {
	case errors.As(err, &in):
		return http.StatusBadRequest, in.Msg
	case errors.Is(err, service.ErrAccountNotFound):
		status, msg = http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrReservationNotFound):
		status, msg = http.StatusNotFound, "Reservation not found"
	case errors.Is(err, service.ErrSeatNotDisabled):
		status, msg = http.StatusNotFound, "Seat is not disabled"
	case errors.Is(err, service.ErrSeatReserved):
		status, msg = http.StatusConflict, "Seat already reserved"
	case errors.Is(err, service.ErrSeatAlreadyDisabled):
		status, msg = http.StatusConflict, "Seat is already disabled"
	case errors.Is(err, service.ErrSeatDisabled):
		status, msg = http.StatusForbidden, "This seat is disabled and cannot be reserved"
	case errors.Is(err, service.ErrEmailExists):
		status, msg = http.StatusBadRequest, "User already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusBadRequest, "Invalid credentials"
	}
	for target, text := range override {
		if errors.Is(err, target) {
			msg = text
		}
	}
	return status, msg
}

// fail writes err under key ("error" or "message").  Server errors are
// logged with the request id; their detail never reaches the client.
func fail(c echo.Context, key string, err error, fallback string, override messages) error {
	status, msg := errorStatus(err, fallback, override)
	if status >= http.StatusInternalServerError {
		slog.Error(fallback, "component", "handler", "path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID), "error", err)
	}
	return c.JSON(status, echo.Map{key: msg})
}
