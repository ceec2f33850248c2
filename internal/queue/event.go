// Package queue defines the seat events exchanged over the message
// broker, the publisher used by the services and the consumer that
// writes them to an audit log.
package queue

// Event types published on the seat.events queue.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventReservationCancelled = "reservation.cancelled"
	EventSeatDisabled         = "seat.disabled"
	EventSeatReleased         = "seat.released"
	EventSeatAdded            = "seat.added"
)

// SeatEventsQueue is the durable queue all seat events are routed to.
const SeatEventsQueue = "seat.events"

// SeatEvent is published after every successful reservation or seat
// configuration change.  Fields that do not apply to an event type are
// left empty.
type SeatEvent struct {
	Type          string `json:"type"`
	ReservationID string `json:"reservation_id,omitempty"`
	SeatNumber    string `json:"seat_number,omitempty"`
	Date          string `json:"date,omitempty"`
	Email         string `json:"email,omitempty"`
	TotalSeats    int    `json:"total_seats,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
