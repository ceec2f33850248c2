// Package utils holds the token and password helpers shared by the
// auth service and the JWT middleware.
package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT along with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims is what an access token carries besides iat and exp.
type Claims struct {
	AccountID string
	Email     string
}

// NewAccessToken signs a token for the account with claims id, email,
// iat and exp.  now is passed in so callers can use a fixed clock.
func NewAccessToken(secret, accountID, email string, ttl time.Duration, now time.Time) (AccessToken, error) {
	now = now.UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":    accountID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of raw and returns
// its claims.  Only HS256 is accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, err
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, errors.New("invalid token claims")
	}
	id, _ := mc["id"].(string)
	email, _ := mc["email"].(string)
	if id == "" {
		return Claims{}, fmt.Errorf("token has no id claim")
	}
	return Claims{AccountID: id, Email: email}, nil
}
