package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iliyamo/seatbook/internal/queue"
	"github.com/iliyamo/seatbook/internal/repository"
)

// Disable stops seat from being reserved until it is released.  Existing
// reservations on the seat are kept.
func (s *SeatService) Disable(ctx context.Context, seat string) error {
	seat = CanonicalSeat(seat)
	if seat == "" {
		return invalid("Seat number is required")
	}
	cfg, err := s.seats.Get(ctx)
	if err != nil {
		return fmt.Errorf("load seat config: %w", err)
	}
	if cfg.IsDisabled(seat) {
		return ErrSeatAlreadyDisabled
	}
	n, err := strconv.Atoi(seat)
	if err != nil || n < 1 {
		return invalid("Seat number must be a positive integer")
	}
	if n > cfg.TotalSeats {
		return invalid("Seat number exceeds total seats")
	}
	if err := s.seats.DisableSeat(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrSeatAlreadyDisabled
		}
		return fmt.Errorf("disable seat: %w", err)
	}
	ev := s.event(queue.EventSeatDisabled)
	ev.SeatNumber = seat
	publish(ctx, s.events, ev)
	return nil
}

// Release makes a disabled seat reservable again.
func (s *SeatService) Release(ctx context.Context, seat string) error {
	seat = CanonicalSeat(seat)
	if seat == "" {
		return invalid("Seat number is required")
	}
	if err := s.seats.ReleaseSeat(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSeatNotDisabled
		}
		return fmt.Errorf("release seat: %w", err)
	}
	ev := s.event(queue.EventSeatReleased)
	ev.SeatNumber = seat
	publish(ctx, s.events, ev)
	return nil
}

// AddSeat grows the seat count by one and returns the new seat's
// identifier, which equals the new total.
func (s *SeatService) AddSeat(ctx context.Context) (string, error) {
	total, err := s.seats.AddSeat(ctx)
	if err != nil {
		return "", fmt.Errorf("add seat: %w", err)
	}
	seat := strconv.Itoa(total)
	ev := s.event(queue.EventSeatAdded)
	ev.SeatNumber = seat
	ev.TotalSeats = total
	publish(ctx, s.events, ev)
	return seat, nil
}
