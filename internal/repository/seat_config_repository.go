package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/seatbook/internal/model"
)

// SeatConfigRepo stores the singleton seat configuration.  The seat
// count lives in the single row of `seat_config` (id = 1), created on the
// first AddSeat; disabled seats live in `disabled_seats`, one row per
// seat, so that disabling and releasing are single atomic statements.
type SeatConfigRepo struct {
	db           *sql.DB
	defaultTotal int
}

// NewSeatConfigRepo constructs a SeatConfigRepo.  defaultTotal is the
// seat count reported before the configuration row exists.
func NewSeatConfigRepo(db *sql.DB, defaultTotal int) *SeatConfigRepo {
	if defaultTotal <= 0 {
		defaultTotal = model.DefaultTotalSeats
	}
	return &SeatConfigRepo{db: db, defaultTotal: defaultTotal}
}

// Get returns the current configuration, falling back to the default
// seat count when no row has been stored yet.
func (r *SeatConfigRepo) Get(ctx context.Context) (model.SeatConfig, error) {
	cfg := model.DefaultSeatConfig(r.defaultTotal)
	err := r.db.QueryRowContext(ctx, `SELECT total_seats FROM seat_config WHERE id = 1`).Scan(&cfg.TotalSeats)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return model.SeatConfig{}, fmt.Errorf("get seat config: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT seat_number FROM disabled_seats ORDER BY seq`)
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
	if err := rows.Err(); err != nil {
		return model.SeatConfig{}, fmt.Errorf("iterate disabled seats: %w", err)
	}
	return cfg, nil
}

// DisableSeat appends seat to the disabled set.  A seat that is already
// disabled yields ErrDuplicate.
func (r *SeatConfigRepo) DisableSeat(ctx context.Context, seat string) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO disabled_seats (seat_number) VALUES (?)`, seat); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("disable seat: %w", err)
	}
	return nil
}

// ReleaseSeat removes seat from the disabled set, returning ErrNotFound
// when it was not disabled.
func (r *SeatConfigRepo) ReleaseSeat(ctx context.Context, seat string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM disabled_seats WHERE seat_number = ?`, seat)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddSeat increments the seat count by one and returns the new total.
// The upsert creates the configuration row on first use.
func (r *SeatConfigRepo) AddSeat(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin add seat: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const upsert = `INSERT INTO seat_config (id, total_seats) VALUES (1, ?)
	                ON DUPLICATE KEY UPDATE total_seats = total_seats + 1`
	if _, err := tx.ExecContext(ctx, upsert, r.defaultTotal+1); err != nil {
		return 0, fmt.Errorf("add seat: %w", err)
	}
	var total int
	if err := tx.QueryRowContext(ctx, `SELECT total_seats FROM seat_config WHERE id = 1`).Scan(&total); err != nil {
		return 0, fmt.Errorf("read seat total: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit add seat: %w", err)
	}
	committed = true
	return total, nil
}
