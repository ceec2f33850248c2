package model

import "strconv"

// DefaultTotalSeats is the seat count assumed before any seat
// configuration has been stored.
const DefaultTotalSeats = 40

// SeatConfig is the singleton seat configuration: how many seats exist
// and which of them are currently disabled.  DisabledSeats keeps the
// order in which seats were disabled.
type SeatConfig struct {
	TotalSeats    int
	DisabledSeats []string
}

// DefaultSeatConfig returns the configuration readers see when no
// record exists yet.
func DefaultSeatConfig(total int) SeatConfig {
	if total <= 0 {
		total = DefaultTotalSeats
	}
	return SeatConfig{TotalSeats: total, DisabledSeats: []string{}}
}

// IsDisabled reports whether seat is in the disabled set.
func (c SeatConfig) IsDisabled(seat string) bool {
	for _, s := range c.DisabledSeats {
		if s == seat {
			return true
		}
	}
	return false
}

// AllSeats returns the ordered seat identifiers "1".."TotalSeats".
func (c SeatConfig) AllSeats() []string {
	out := make([]string, 0, c.TotalSeats)
	for i := 1; i <= c.TotalSeats; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
