package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/service"
)

// SeatService is the part of service.SeatService the seat routes use.
type SeatService interface {
	Status(ctx context.Context, date string) (service.SeatStatus, error)
	ReservedDetails(ctx context.Context, date string) ([]model.ReservedDetail, error)
	Lookup(ctx context.Context, seat, date string) (model.ReservedDetail, error)
	Reserve(ctx context.Context, in service.ReserveInput) (model.Reservation, error)
	Update(ctx context.Context, id string, in service.ReserveInput) (model.Reservation, bool, error)
	Cancel(ctx context.Context, id string) error
	Disable(ctx context.Context, seat string) error
	Release(ctx context.Context, seat string) error
	AddSeat(ctx context.Context) (string, error)
}

// ReportService builds usage reports.
type ReportService interface {
	Usage(ctx context.Context, start, end string) (service.UsageReport, error)
}

// SeatHandler serves /api/seats.
type SeatHandler struct {
	Seats   SeatService
	Reports ReportService
}

func NewSeatHandler(seats SeatService, reports ReportService) *SeatHandler {
	if seats == nil || reports == nil {
		panic("nil service passed to NewSeatHandler")
	}
	return &SeatHandler{Seats: seats, Reports: reports}
}

// Status handles GET /api/seats?date=.
func (h *SeatHandler) Status(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := h.Seats.Status(ctx, c.QueryParam("date"))
	if err != nil {
		return fail(c, "error", err, "Server error", nil)
	}
	return c.JSON(http.StatusOK, st)
}

// ReservedDetails handles GET /api/seats/reserved-details?date=.
func (h *SeatHandler) ReservedDetails(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	details, err := h.Seats.ReservedDetails(ctx, c.QueryParam("date"))
	if err != nil {
		return fail(c, "error", err, "Server error", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservedDetails": details})
}

// Lookup handles GET /api/seats/reservation?seatNumber=&date=.
func (h *SeatHandler) Lookup(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Seats.Lookup(ctx, c.QueryParam("seatNumber"), c.QueryParam("date"))
	if err != nil {
		return fail(c, "error", err, "Server error", messages{
			service.ErrReservationNotFound: "No reservation found for this seat and date",
		})
	}
	return c.JSON(http.StatusOK, d)
}

// Reserve handles POST /api/seats/reserve.
func (h *SeatHandler) Reserve(c echo.Context) error {
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Seats.Reserve(ctx, service.ReserveInput{
		SeatNumber: string(req.SeatNumber), Date: req.Date, Email: req.Email,
	})
	if err != nil {
		return fail(c, "error", err, "Reservation failed", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"message":     "Seat reserved successfully",
		"reservation": res,
	})
}

// Update handles PUT /api/seats/reserve/:id.  An unknown id creates a new
// reservation.
func (h *SeatHandler) Update(c echo.Context) error {
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, created, err := h.Seats.Update(ctx, c.Param("id"), service.ReserveInput{
		SeatNumber: string(req.SeatNumber), Date: req.Date, Email: req.Email,
	})
	if err != nil {
		return fail(c, "error", err, "Update failed", messages{
			service.ErrSeatReserved: "Seat already reserved for this date",
		})
	}
	msg := "Seat reservation updated successfully"
	if created {
		msg = "Seat reservation created successfully"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg, "reservation": res})
}

// Delete handles DELETE /api/seats/reserve/:id.
func (h *SeatHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Seats.Cancel(ctx, c.Param("id")); err != nil {
		return fail(c, "error", err, "Deletion failed", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Seat reservation deleted successfully"})
}

// Disable handles POST /api/seats/disable.
func (h *SeatHandler) Disable(c echo.Context) error {
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Seats.Disable(ctx, string(req.SeatNumber)); err != nil {
		return fail(c, "error", err, "Failed to disable seat", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("Seat %s disabled successfully", req.SeatNumber),
	})
}

// Release handles POST /api/seats/release.
func (h *SeatHandler) Release(c echo.Context) error {
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Seats.Release(ctx, string(req.SeatNumber)); err != nil {
		return fail(c, "error", err, "Failed to release seat", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("Seat %s released successfully", req.SeatNumber),
	})
}

// AddSeat handles POST /api/seats/add-seat.
func (h *SeatHandler) AddSeat(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	seat, err := h.Seats.AddSeat(ctx)
	if err != nil {
		return fail(c, "error", err, "Failed to add new seat", nil)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"message":       fmt.Sprintf("New seat %s added successfully", seat),
		"newSeatNumber": seat,
	})
}

// UsageReport handles GET /api/seats/usage-report?startDate=&endDate=.
func (h *SeatHandler) UsageReport(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	rep, err := h.Reports.Usage(ctx, c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return fail(c, "error", err, "Failed to generate seat usage report", nil)
	}
	return c.JSON(http.StatusOK, rep)
}
