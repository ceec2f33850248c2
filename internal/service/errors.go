// Package service implements the seat availability, reservation,
// usage report and authentication rules on top of the store interfaces.
// Handlers call services and map the sentinel errors below onto HTTP
// status codes.
package service

import "errors"

// ErrInvalidInput marks client input errors (missing or malformed
// fields, seat numbers out of range, inverted date ranges).  Concrete
// errors carry a user-facing message and match it through errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Not found errors.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSeatNotDisabled     = errors.New("seat is not disabled")
)

// Conflict errors.
var (
	ErrSeatReserved        = errors.New("seat already reserved")
	ErrSeatAlreadyDisabled = errors.New("seat is already disabled")
	ErrEmailExists         = errors.New("email already registered")
)

// ErrSeatDisabled is returned when reserving a seat that is currently
// disabled.
var ErrSeatDisabled = errors.New("seat is disabled")

// ErrInvalidCredentials is returned by Login for an unknown email and
// for a wrong password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// InputError is a client input error with a message safe to return to
// the caller.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Is makes every InputError match ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(msg string) error { return &InputError{Msg: msg} }
