package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/queue"
	"github.com/iliyamo/seatbook/internal/repository"
)

// ReserveInput names a seat, a date and the account to reserve it for.
type ReserveInput struct {
	SeatNumber string
	Date       string
	Email      string
}

func (in ReserveInput) normalized() ReserveInput {
	return ReserveInput{
		SeatNumber: CanonicalSeat(in.SeatNumber),
		Date:       strings.TrimSpace(in.Date),
		Email:      NormalizeEmail(in.Email),
	}
}

func (in ReserveInput) validate() error {
	if in.SeatNumber == "" || in.Date == "" || in.Email == "" {
		return invalid("Seat number, date, and email are required")
	}
	if err := checkLen("Seat number", in.SeatNumber, MaxSeatLen); err != nil {
		return err
	}
	if err := checkLen("Email", in.Email, MaxEmailLen); err != nil {
		return err
	}
	_, err := parseDate(in.Date)
	return err
}

// Reserve books a free, enabled seat on a date for an existing account.
// There is no bounds check against the seat count here; only Disable
// enforces it.
func (s *SeatService) Reserve(ctx context.Context, in ReserveInput) (model.Reservation, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return model.Reservation{}, err
	}
	cfg, err := s.seats.Get(ctx)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("load seat config: %w", err)
	}
	if err := s.checkReservable(ctx, cfg, in.SeatNumber, in.Email); err != nil {
		return model.Reservation{}, err
	}
	if err := s.checkFree(ctx, in.SeatNumber, in.Date, ""); err != nil {
		return model.Reservation{}, err
	}

	res := model.Reservation{ID: s.newID(), SeatNumber: in.SeatNumber, Date: in.Date, Email: in.Email}
	if err := s.reservations.Create(ctx, &res); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Reservation{}, ErrSeatReserved
		}
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}
	s.emit(ctx, queue.EventReservationCreated, res)
	return res, nil
}

// Update reassigns the seat, date and email of reservation id.  When no
// reservation with that id exists a new one is created under a fresh id
// and created is true.
func (s *SeatService) Update(ctx context.Context, id string, in ReserveInput) (res model.Reservation, created bool, err error) {
	id = strings.TrimSpace(id)
	in = in.normalized()
	if err := in.validate(); err != nil {
		return model.Reservation{}, false, err
	}
	cfg, err := s.seats.Get(ctx)
	if err != nil {
		return model.Reservation{}, false, fmt.Errorf("load seat config: %w", err)
	}
	if err := s.checkReservable(ctx, cfg, in.SeatNumber, in.Email); err != nil {
		return model.Reservation{}, false, err
	}
	if err := s.checkFree(ctx, in.SeatNumber, in.Date, id); err != nil {
		return model.Reservation{}, false, err
	}

	res = model.Reservation{ID: id, SeatNumber: in.SeatNumber, Date: in.Date, Email: in.Email}
	if id != "" {
		err = s.reservations.Update(ctx, &res)
		switch {
		case err == nil:
			s.emit(ctx, queue.EventReservationUpdated, res)
			return res, false, nil
		case errors.Is(err, repository.ErrDuplicate):
			return model.Reservation{}, false, ErrSeatReserved
		case !errors.Is(err, repository.ErrNotFound):
			return model.Reservation{}, false, fmt.Errorf("update reservation: %w", err)
		}
	}

	res.ID = s.newID()
	if err := s.reservations.Create(ctx, &res); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Reservation{}, false, ErrSeatReserved
		}
		return model.Reservation{}, false, fmt.Errorf("create reservation: %w", err)
	}
	s.emit(ctx, queue.EventReservationCreated, res)
	return res, true, nil
}

// Reschedule moves an existing reservation to another seat and/or date,
// keeping its email.
func (s *SeatService) Reschedule(ctx context.Context, id, seat, date string) (model.Reservation, error) {
	id, seat, date = strings.TrimSpace(id), CanonicalSeat(seat), strings.TrimSpace(date)
	if seat == "" || date == "" {
		return model.Reservation{}, invalid("Seat number and date are required")
	}
	if err := checkLen("Seat number", seat, MaxSeatLen); err != nil {
		return model.Reservation{}, err
	}
	if _, err := parseDate(date); err != nil {
		return model.Reservation{}, err
	}
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, ErrReservationNotFound
		}
		return model.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	cfg, err := s.seats.Get(ctx)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("load seat config: %w", err)
	}
	if cfg.IsDisabled(seat) {
		return model.Reservation{}, ErrSeatDisabled
	}
	if err := s.checkFree(ctx, seat, date, id); err != nil {
		return model.Reservation{}, err
	}

	current.SeatNumber, current.Date = seat, date
	if err := s.reservations.Update(ctx, &current); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return model.Reservation{}, ErrSeatReserved
		case errors.Is(err, repository.ErrNotFound):
			return model.Reservation{}, ErrReservationNotFound
		}
		return model.Reservation{}, fmt.Errorf("update reservation: %w", err)
	}
	s.emit(ctx, queue.EventReservationUpdated, current)
	return current, nil
}

// Cancel deletes reservation id.
func (s *SeatService) Cancel(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("get reservation: %w", err)
	}
	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("delete reservation: %w", err)
	}
	s.emit(ctx, queue.EventReservationCancelled, res)
	return nil
}

// checkReservable rejects disabled seats and unknown accounts, in that order.
func (s *SeatService) checkReservable(ctx context.Context, cfg model.SeatConfig, seat, email string) error {
	if cfg.IsDisabled(seat) {
		return ErrSeatDisabled
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("get account: %w", err)
	}
	return nil
}

// checkFree fails with ErrSeatReserved when a reservation other than
// exceptID holds seat on date.
func (s *SeatService) checkFree(ctx context.Context, seat, date, exceptID string) error {
	existing, err := s.reservations.FindBySeatAndDate(ctx, seat, date)
	switch {
	case err == nil:
		if existing.ID != exceptID || exceptID == "" {
			return ErrSeatReserved
		}
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("find reservation: %w", err)
	}
}

func (s *SeatService) emit(ctx context.Context, typ string, res model.Reservation) {
	ev := s.event(typ)
	ev.ReservationID = res.ID
	ev.SeatNumber = res.SeatNumber
	ev.Date = res.Date
	ev.Email = res.Email
	publish(ctx, s.events, ev)
}
