package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/seatbook/internal/model"
)

// AccountRepo persists accounts in the `accounts` table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account.  The caller supplies the id and the
// password hash; a duplicate email yields ErrDuplicate.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (id, email, full_name, password_hash) VALUES (?,?,?,?)",
		a.ID, a.Email, a.FullName, a.PasswordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,full_name,password_hash,created_at FROM accounts WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.Email, &a.FullName, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// FullNames maps each known email in emails to its account's full name.
// Emails without an account are simply absent from the result.
func (r *AccountRepo) FullNames(ctx context.Context, emails []string) (map[string]string, error) {
	names := make(map[string]string, len(emails))
	if len(emails) == 0 {
		return names, nil
	}
	args := make([]interface{}, 0, len(emails))
	for _, e := range emails {
		args = append(args, e)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(emails)), ",")
	rows, err := r.DB.QueryContext(ctx,
		"SELECT email, full_name FROM accounts WHERE email IN ("+placeholders+")", args...)
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
	return names, rows.Err()
}
