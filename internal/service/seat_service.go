package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/seatbook/internal/clock"
	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/queue"
	"github.com/iliyamo/seatbook/internal/repository"
)

// SeatService answers availability queries and performs reservation and
// seat configuration changes.  The seat configuration is read once per
// call and passed explicitly to the checks that need it.
type SeatService struct {
	accounts     AccountStore
	reservations ReservationStore
	seats        SeatConfigStore
	events       EventPublisher
	clock        clock.Clock
	newID        func() string
}

// NewSeatService wires a SeatService.  A nil publisher disables events.
func NewSeatService(accounts AccountStore, reservations ReservationStore, seats SeatConfigStore, events EventPublisher, clk clock.Clock) *SeatService {
	if accounts == nil || reservations == nil || seats == nil {
		panic("nil store passed to NewSeatService")
	}
	if events == nil {
		events = NopPublisher{}
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &SeatService{
		accounts:     accounts,
		reservations: reservations,
		seats:        seats,
		events:       events,
		clock:        clk,
		newID:        uuid.NewString,
	}
}

// SeatStatus partitions the seats of one date.
type SeatStatus struct {
	AvailableSeats []string `json:"availableSeats"`
	ReservedSeats  []string `json:"reservedSeats"`
	DisabledSeats  []string `json:"disabledSeats"`
	TotalSeats     int      `json:"totalSeats"`
}

// ResolveAvailability computes the seat partition for one date from the
// seat configuration and that date's reservations.  Available seats keep
// the order of "1".."TotalSeats".  Reservations made before a seat was
// disabled are not evicted, so such a seat is listed as both reserved
// and disabled.
func ResolveAvailability(cfg model.SeatConfig, reservations []model.Reservation) SeatStatus {
	reserved := make([]string, 0, len(reservations))
	taken := make(map[string]struct{}, len(reservations)+len(cfg.DisabledSeats))
	for _, r := range reservations {
		reserved = append(reserved, r.SeatNumber)
		taken[r.SeatNumber] = struct{}{}
	}
	for _, s := range cfg.DisabledSeats {
		taken[s] = struct{}{}
	}
	available := make([]string, 0, cfg.TotalSeats)
	for _, s := range cfg.AllSeats() {
		if _, ok := taken[s]; !ok {
			available = append(available, s)
		}
	}
	disabled := cfg.DisabledSeats
	if disabled == nil {
		disabled = []string{}
	}
	return SeatStatus{
		AvailableSeats: available,
		ReservedSeats:  reserved,
		DisabledSeats:  disabled,
		TotalSeats:     cfg.TotalSeats,
	}
}

// Status returns the seat partition for date.
func (s *SeatService) Status(ctx context.Context, date string) (SeatStatus, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return SeatStatus{}, invalid("Date is required")
	}
	if _, err := parseDate(date); err != nil {
		return SeatStatus{}, err
	}
	cfg, err := s.seats.Get(ctx)
	if err != nil {
		return SeatStatus{}, fmt.Errorf("load seat config: %w", err)
	}
	list, err := s.reservations.ListByDate(ctx, date)
	if err != nil {
		return SeatStatus{}, fmt.Errorf("list reservations: %w", err)
	}
	return ResolveAvailability(cfg, list), nil
}

// ReservedDetails lists the reservations on date with the owning
// account's full name, or model.UnknownName when the account is gone.
func (s *SeatService) ReservedDetails(ctx context.Context, date string) ([]model.ReservedDetail, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, invalid("Date is required")
	}
	if _, err := parseDate(date); err != nil {
		return nil, err
	}
	list, err := s.reservations.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	names, err := fullNames(ctx, s.accounts, list)
	if err != nil {
		return nil, err
	}
	out := make([]model.ReservedDetail, 0, len(list))
	for _, r := range list {
		out = append(out, model.ReservedDetail{
			ID:         r.ID,
			SeatNumber: r.SeatNumber,
			Email:      r.Email,
			FullName:   displayName(names, r.Email),
		})
	}
	return out, nil
}

// Lookup returns the reservation holding seat on date.
func (s *SeatService) Lookup(ctx context.Context, seat, date string) (model.ReservedDetail, error) {
	seat, date = CanonicalSeat(seat), strings.TrimSpace(date)
	if seat == "" || date == "" {
		return model.ReservedDetail{}, invalid("Seat number and date are required")
	}
	if _, err := parseDate(date); err != nil {
		return model.ReservedDetail{}, err
	}
	r, err := s.reservations.FindBySeatAndDate(ctx, seat, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.ReservedDetail{}, ErrReservationNotFound
		}
		return model.ReservedDetail{}, fmt.Errorf("find reservation: %w", err)
	}
	names, err := fullNames(ctx, s.accounts, []model.Reservation{r})
	if err != nil {
		return model.ReservedDetail{}, err
	}
	return model.ReservedDetail{
		ID:         r.ID,
		SeatNumber: r.SeatNumber,
		Email:      r.Email,
		FullName:   displayName(names, r.Email),
	}, nil
}

// ListByEmail returns every reservation held by email.
func (s *SeatService) ListByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, invalid("Email is required")
	}
	list, err := s.reservations.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

// fullNames resolves the display names for the emails in list with a
// single store call.
func fullNames(ctx context.Context, accounts AccountStore, list []model.Reservation) (map[string]string, error) {
	seen := make(map[string]struct{}, len(list))
	emails := make([]string, 0, len(list))
	for _, r := range list {
		if _, ok := seen[r.Email]; ok {
			continue
		}
		seen[r.Email] = struct{}{}
		emails = append(emails, r.Email)
	}
	names, err := accounts.FullNames(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("resolve account names: %w", err)
	}
	return names, nil
}

func displayName(names map[string]string, email string) string {
	if n, ok := names[email]; ok {
		return n
	}
	return model.UnknownName
}

func (s *SeatService) event(typ string) queue.SeatEvent {
	return queue.SeatEvent{Type: typ, OccurredAt: s.clock.Now().Format(time.RFC3339)}
}
