package service

import (
	"context"
	"log/slog"

	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/queue"
)

// AccountStore is implemented by repository.AccountRepo and
// postgres.AccountStore.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	FullNames(ctx context.Context, emails []string) (map[string]string, error)
}

// ReservationStore is implemented by repository.ReservationRepo and
// postgres.ReservationStore.  Create and Update return
// repository.ErrDuplicate when (seat, date) is taken; lookups, Update and
// Delete return repository.ErrNotFound for unknown rows.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id string) (model.Reservation, error)
	FindBySeatAndDate(ctx context.Context, seat, date string) (model.Reservation, error)
	ListByDate(ctx context.Context, date string) ([]model.Reservation, error)
	ListByEmail(ctx context.Context, email string) ([]model.Reservation, error)
	ListInRange(ctx context.Context, start, end string) ([]model.Reservation, error)
	Update(ctx context.Context, res *model.Reservation) error
	Delete(ctx context.Context, id string) error
}

// SeatConfigStore is implemented by repository.SeatConfigRepo and
// postgres.SeatConfigStore.
type SeatConfigStore interface {
	Get(ctx context.Context) (model.SeatConfig, error)
	DisableSeat(ctx context.Context, seat string) error
	ReleaseSeat(ctx context.Context, seat string) error
	AddSeat(ctx context.Context) (int, error)
}

// EventPublisher delivers seat events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SeatEvent) error
}

// NopPublisher drops every event.  It is used when publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.SeatEvent) error { return nil }

// publish sends ev and only logs a failure: a broker outage must never
// fail the request that produced the event.
func publish(ctx context.Context, p EventPublisher, ev queue.SeatEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		slog.Warn("publish seat event failed", "component", "service", "type", ev.Type, "error", err)
	}
}
