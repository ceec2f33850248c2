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

// AccountStore persists accounts.
type AccountStore struct {
	pool *pgxpool.Pool
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

func (s *AccountStore) Create(ctx context.Context, a *model.Account) error {
	const stmt = `
INSERT INTO accounts (id, email, full_name, password_hash)
VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, stmt, a.ID, a.Email, a.FullName, a.PasswordHash); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	const query = `
SELECT id, email, full_name, password_hash, created_at
FROM accounts
WHERE email = $1`
	var a model.Account
	err := s.pool.QueryRow(ctx, query, email).Scan(&a.ID, &a.Email, &a.FullName, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Account{}, repository.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) FullNames(ctx context.Context, emails []string) (map[string]string, error) {
	names := make(map[string]string, len(emails))
	if len(emails) == 0 {
		return names, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT email, full_name FROM accounts WHERE email = ANY($1)`, emails)
	if err != nil {
		return nil, fmt.Errorf("query account names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var email, name string
		if err := rows.Scan(&email, &name); err != nil {
			return nil, fmt.Errorf("scan account name: %w", err)
		}
		names[email] = name
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate account names: %w", rows.Err())
	}
	return names, nil
}
