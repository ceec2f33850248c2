package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seatbook/internal/model"
)

// ReservationService is used by the /api/reservations routes, which
// answer with {"message": ...} bodies on error.
type ReservationService interface {
	ListByEmail(ctx context.Context, email string) ([]model.Reservation, error)
	Cancel(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id, seat, date string) (model.Reservation, error)
}

type ReservationHandler struct {
	Reservations ReservationService
}

func NewReservationHandler(r ReservationService) *ReservationHandler {
	if r == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: r}
}

// ListByEmail handles GET /api/reservations/:email.
func (h *ReservationHandler) ListByEmail(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Reservations.ListByEmail(ctx, c.Param("email"))
	if err != nil {
		return fail(c, "message", err, "Server error", nil)
	}
	return c.JSON(http.StatusOK, list)
}

// Delete handles DELETE /api/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Reservations.Cancel(ctx, c.Param("id")); err != nil {
		return fail(c, "message", err, "Error deleting reservation", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Deleted"})
}

// Reschedule handles PUT /api/reservations/:id and returns the updated
// reservation.
func (h *ReservationHandler) Reschedule(c echo.Context) error {
	var req rescheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Reservations.Reschedule(ctx, c.Param("id"), string(req.SeatNumber), req.Date)
	if err != nil {
		return fail(c, "message", err, "Update failed", nil)
	}
	return c.JSON(http.StatusOK, res)
}
