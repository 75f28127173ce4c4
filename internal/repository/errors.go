// Package repository is the MySQL side of the service.  Each table has a
// small repo type; Store bundles them and implements seating.Store.
//
// Seat inventory reads and writes report failures as seating sentinels:
// a missing event is seating.ErrNotFound and every driver error is
// wrapped with seating.StoreFault, carrying a stack trace for logs.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/event-seat-inventory/internal/seating"
)

// ErrConflict is returned when a write collides with an existing row,
// such as a second venue with the same name.  Handlers should translate
// this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUsernameTaken is returned by UserRepo.Create for a username that is
// already registered.
var ErrUsernameTaken = errors.New("username already exists")

// mysqlDuplicateEntry is the server error number for a unique key
// violation.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// fault annotates a driver error and tags it as a store fault.
func fault(op string, err error) error {
	if err == nil {
		return nil
	}
	return seating.StoreFault(op, pkgerrors.WithStack(err))
}
