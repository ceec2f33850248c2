// Package clock supplies the time stamped on reservations and seat events
// and used for token expiry.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.  Times are returned in UTC.
type Func func() time.Time

func (f Func) Now() time.Time { return f().UTC() }

// NewSystem returns the wall clock.
func NewSystem() Clock { return Func(time.Now) }

// Fixed reports the instant it was last set to.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{t: t.UTC()} }

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
