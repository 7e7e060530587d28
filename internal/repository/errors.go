// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// service package to distinguish between different failure scenarios
// without inspecting driver errors. For example, ErrDuplicate signals a
// unique-key violation while ErrConflict signals that a row cannot be
// removed because other rows still reference it.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key,
// such as a second instrument with the same name or a second payment for
// the same student and month.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting an instrument that is
// still assigned to students.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers mapped to sentinels.
const (
	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451
	mysqlNoReferencedRow  = 1452
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow2 = 1216
)

// translate maps driver errors onto the sentinels above.  Unknown errors are
// returned untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDuplicateEntry:
		return ErrDuplicate
	case mysqlRowIsReferenced, mysqlRowIsReferenced2:
		return ErrConflict
	case mysqlNoReferencedRow, mysqlNoReferencedRow2:
		return ErrNotFound
	}
	return err
}
