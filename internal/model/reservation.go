package model

import "time"

// DateLayout is the calendar date format used for reservation dates
// on the wire and in the store.
const DateLayout = "2006-01-02"

// Reservation binds one seat to one date for one account email.  At
// most one reservation may exist per (SeatNumber, Date) pair.
//
// Fields:
//  ID         – uuid primary key.
//  SeatNumber – seat identifier ("1".."totalSeats").
//  Date       – calendar date in DateLayout.
//  Email      – account the seat is reserved for.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         string    `json:"id"`
	SeatNumber string    `json:"seatNumber"`
	Date       string    `json:"date"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ReservedDetail is a reservation joined with the owning account's
// display name.
type ReservedDetail struct {
	ID         string `json:"id"`
	SeatNumber string `json:"seatNumber"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
}
