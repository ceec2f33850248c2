package model

import "time"

// Account represents a registered user as stored in the `accounts`
// table. Accounts are created at signup and never modified afterwards.
//
// Fields:
//  ID           – uuid primary key.
//  Email        – unique, normalised (trimmed, lower-case) address.
//  FullName     – display name shown next to reservations.
//  PasswordHash – bcrypt hash of the password.
//  CreatedAt    – timestamp of creation.
type Account struct {
	ID           string    // accounts.id
	Email        string    // accounts.email
	FullName     string    // accounts.full_name
	PasswordHash string    // accounts.password_hash
	CreatedAt    time.Time // accounts.created_at
}

// UnknownName is shown in place of a full name when a reservation's
// email no longer resolves to an account.
const UnknownName = "Unknown"
