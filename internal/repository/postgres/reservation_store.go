package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iliyamo/seatbook/internal/model"
	"github.com/iliyamo/seatbook/internal/repository"
)

// ReservationStore persists reservations.  The unique index on
// (seat_number, res_date) backs the one-reservation-per-seat-per-day rule.
type ReservationStore struct {
	pool *pgxpool.Pool
}

func NewReservationStore(pool *pgxpool.Pool) *ReservationStore {
	return &ReservationStore{pool: pool}
}

const reservationColumns = `id, seat_number, res_date, email, created_at, updated_at`

func (s *ReservationStore) Create(ctx context.Context, res *model.Reservation) error {
	date, err := parseDate(res.Date)
	if err != nil {
		return err
	}
	const stmt = `
INSERT INTO reservations (id, seat_number, res_date, email)
VALUES ($1, $2, $3, $4)
RETURNING ` + reservationColumns
	row := s.pool.QueryRow(ctx, stmt, res.ID, res.SeatNumber, date, res.Email)
	stored, err := scanReservation(row)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	*res = stored
	return nil
}

func (s *ReservationStore) GetByID(ctx context.Context, id string) (model.Reservation, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	return scanReservation(row)
}

func (s *ReservationStore) FindBySeatAndDate(ctx context.Context, seat, date string) (model.Reservation, error) {
	d, err := parseDate(date)
	if err != nil {
		return model.Reservation{}, err
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE seat_number = $1 AND res_date = $2 LIMIT 1`,
		seat, d)
	return scanReservation(row)
}

func (s *ReservationStore) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	d, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	return s.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE res_date = $1 ORDER BY created_at, id`, d)
}

func (s *ReservationStore) ListByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	return s.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE email = $1 ORDER BY res_date, created_at`, email)
}

func (s *ReservationStore) ListInRange(ctx context.Context, start, end string) ([]model.Reservation, error) {
	from, err := parseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(end)
	if err != nil {
		return nil, err
	}
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE res_date BETWEEN $1 AND $2
ORDER BY res_date, created_at, id`
	return s.list(ctx, query, from, to)
}

func (s *ReservationStore) Update(ctx context.Context, res *model.Reservation) error {
	date, err := parseDate(res.Date)
	if err != nil {
		return err
	}
	const stmt = `
UPDATE reservations
SET seat_number = $1, res_date = $2, email = $3, updated_at = NOW()
WHERE id = $4
RETURNING ` + reservationColumns
	row := s.pool.QueryRow(ctx, stmt, res.SeatNumber, date, res.Email, res.ID)
	stored, err := scanReservation(row)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	*res = stored
	return nil
}

func (s *ReservationStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *ReservationStore) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservations: %w", rows.Err())
	}
	return out, nil
}

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var (
		res  model.Reservation
		date time.Time
	)
	if err := row.Scan(&res.ID, &res.SeatNumber, &date, &res.Email, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Reservation{}, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.Reservation{}, err
		}
		return model.Reservation{}, fmt.Errorf("scan reservation: %w", err)
	}
	res.Date = date.Format(model.DateLayout)
	return res, nil
}
