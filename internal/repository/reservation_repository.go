package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/seatbook/internal/model"
)

// ReservationRepo provides CRUD operations for seat reservations.  The
// `reservations` table carries a unique key on (seat_number, res_date)
// so that two concurrent inserts for the same seat and date cannot both
// succeed; the loser receives ErrDuplicate.  Dates are stored in a DATE
// column and exchanged as model.DateLayout strings.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, seat_number, res_date, email, created_at, updated_at`

// Create inserts a reservation.  ID must already be set.  CreatedAt and
// UpdatedAt are populated from the database defaults.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (id, seat_number, res_date, email) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, res.ID, res.SeatNumber, res.Date, res.Email); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

// GetByID returns a reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

// FindBySeatAndDate returns the reservation holding seat on date, or
// ErrNotFound when the seat is free that day.
func (r *ReservationRepo) FindBySeatAndDate(ctx context.Context, seat, date string) (model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE seat_number = ? AND res_date = ? LIMIT 1`,
		seat, date)
	return scanReservation(row)
}

// ListByDate returns every reservation on date in insertion order.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE res_date = ? ORDER BY created_at, id`, date)
}

// ListByEmail returns all reservations made for email, oldest date first.
func (r *ReservationRepo) ListByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE email = ? ORDER BY res_date, created_at`, email)
}

// ListInRange returns reservations whose date lies in [start, end]
// inclusive, ordered by date and then insertion.
func (r *ReservationRepo) ListInRange(ctx context.Context, start, end string) ([]model.Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE res_date BETWEEN ? AND ?
		 ORDER BY res_date, created_at, id`, start, end)
}

// Update overwrites seat, date and email of an existing reservation.
// It returns ErrNotFound when no row has the id and ErrDuplicate when
// the new (seat, date) pair is taken by another reservation.  The DSN
// sets clientFoundRows so that an update with unchanged values still
// reports one affected row.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations SET seat_number = ?, res_date = ?, email = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, q, res.SeatNumber, res.Date, res.Email, res.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update reservation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	stored, err := r.GetByID(ctx, res.ID)
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

// Delete removes a reservation, returning ErrNotFound when it does not exist.
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res  model.Reservation
		date time.Time
	)
	err := s.Scan(&res.ID, &res.SeatNumber, &date, &res.Email, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, ErrNotFound
		}
		return model.Reservation{}, fmt.Errorf("scan reservation: %w", err)
	}
	res.Date = date.Format(model.DateLayout)
	return res, nil
}
