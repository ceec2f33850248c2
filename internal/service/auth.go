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
	"github.com/iliyamo/seatbook/internal/repository"
	"github.com/iliyamo/seatbook/internal/utils"
)

// AuthService registers accounts and issues access tokens.
type AuthService struct {
	accounts AccountStore
	secret   string
	ttl      time.Duration
	cost     int
	clock    clock.Clock
}

func NewAuthService(accounts AccountStore, secret string, ttl time.Duration, bcryptCost int, clk clock.Clock) *AuthService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &AuthService{accounts: accounts, secret: secret, ttl: ttl, cost: bcryptCost, clock: clk}
}

type SignupInput struct {
	FullName string
	Email    string
	Password string
}

// AccountView is the public part of an account.
type AccountView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      AccountView
}

// Signup creates an account.  A taken email yields ErrEmailExists.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (AccountView, error) {
	name := strings.TrimSpace(in.FullName)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return AccountView{}, invalid("fullName, email and password are required")
	}
	if err := checkLen("Full name", name, MaxNameLen); err != nil {
		return AccountView{}, err
	}
	if err := checkLen("Email", email, MaxEmailLen); err != nil {
		return AccountView{}, err
	}
	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return AccountView{}, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AccountView{}, fmt.Errorf("get account: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return AccountView{}, invalid("Password must be at most 72 bytes")
	}
	if err != nil {
		return AccountView{}, fmt.Errorf("hash password: %w", err)
	}
	acc := model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     name,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, &acc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AccountView{}, ErrEmailExists
		}
		return AccountView{}, fmt.Errorf("create account: %w", err)
	}
	return AccountView{ID: acc.ID, Email: acc.Email, FullName: acc.FullName}, nil
}

// Login checks the password and signs an access token.  Missing fields,
// an unknown email and a wrong password all return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("get account: %w", err)
	}
	if !utils.VerifyPassword(acc.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	tok, err := utils.NewAccessToken(s.secret, acc.ID, acc.Email, s.ttl, s.clock.Now())
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	return LoginResult{
		Token:     tok.Token,
		ExpiresAt: tok.Exp,
		User:      AccountView{ID: acc.ID, Email: acc.Email, FullName: acc.FullName},
	}, nil
}
