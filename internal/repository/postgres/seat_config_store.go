package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/repository"
)

// SeatConfigStore keeps the seat count in the singleton seat_config row
// and disabled seats in disabled_seats.
type SeatConfigStore struct {
	pool         *pgxpool.Pool
	defaultTotal int
}

func NewSeatConfigStore(pool *pgxpool.Pool, defaultTotal int) *SeatConfigStore {
	if defaultTotal <= 0 {
		defaultTotal = model.DefaultTotalSeats
	}
	return &SeatConfigStore{pool: pool, defaultTotal: defaultTotal}
}

func (s *SeatConfigStore) Get(ctx context.Context) (model.SeatConfig, error) {
	cfg := model.DefaultSeatConfig(s.defaultTotal)
	err := s.pool.QueryRow(ctx, `SELECT total_seats FROM seat_config WHERE id = 1`).Scan(&cfg.TotalSeats)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.SeatConfig{}, fmt.Errorf("get seat config: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT seat_number FROM disabled_seats ORDER BY seq`)
	if err != nil {
		return model.SeatConfig{}, fmt.Errorf("list disabled seats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return model.SeatConfig{}, fmt.Errorf("scan disabled seat: %w", err)
		}
		cfg.DisabledSeats = append(cfg.DisabledSeats, seat)
	}
	if rows.Err() != nil {
		return model.SeatConfig{}, fmt.Errorf("iterate disabled seats: %w", rows.Err())
	}
	return cfg, nil
}

func (s *SeatConfigStore) DisableSeat(ctx context.Context, seat string) error {
	if _, err := s.pool.Exec(ctx, `INSERT INTO disabled_seats (seat_number) VALUES ($1)`, seat); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("disable seat: %w", err)
	}
	return nil
}

func (s *SeatConfigStore) ReleaseSeat(ctx context.Context, seat string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM disabled_seats WHERE seat_number = $1`, seat)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *SeatConfigStore) AddSeat(ctx context.Context) (int, error) {
	const stmt = `
INSERT INTO seat_config (id, total_seats)
VALUES (1, $1)
ON CONFLICT (id) DO UPDATE SET total_seats = seat_config.total_seats + 1
RETURNING total_seats`
	var total int
	if err := s.pool.QueryRow(ctx, stmt, s.defaultTotal+1).Scan(&total); err != nil {
		return 0, fmt.Errorf("add seat: %w", err)
	}
	return total, nil
}
