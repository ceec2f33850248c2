// Package repository implements the MySQL-backed stores for accounts,
// reservations and the seat configuration.  It also defines the
// sentinel errors every store implementation (including the Postgres
// one) returns, so that the service layer can distinguish a missing
// record from a uniqueness violation without knowing the driver.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup, update or delete matches no
// rows.  Services translate it into the domain-specific not found
// error for the resource involved.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update would violate a
// unique key, such as a second reservation for the same seat and date
// or a second account with the same email.
var ErrDuplicate = errors.New("duplicate key")

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
