package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/seatbook/internal/model"
)

// Length limits of the stored columns, in characters.
const (
	MaxSeatLen  = 16
	MaxEmailLen = 255
	MaxNameLen  = 255
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanonicalSeat trims a seat identifier and writes integer identifiers
// without sign or leading zeros, so "05" and "+5" both name seat "5".
// Other identifiers are returned trimmed.
func CanonicalSeat(seat string) string {
	seat = strings.TrimSpace(seat)
	if n, err := strconv.Atoi(seat); err == nil && n >= 0 {
		return strconv.Itoa(n)
	}
	return seat
}

func checkLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return invalid(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, invalid(fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}
