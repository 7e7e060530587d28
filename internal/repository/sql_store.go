package repository

import (
	"context"
	"database/sql"
)

// SQLStore is the MySQL implementation of Store.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// DB exposes the underlying handle for health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Repos returns repositories that run each statement on its own connection.
func (s *SQLStore) Repos() Repositories { return reposOn(s.db) }

// txOptions runs every transaction at READ COMMITTED.  Each statement then
// reads the latest committed rows, so a count taken after a FOR UPDATE lock
// sees what the previous lock holder wrote.
var txOptions = sql.TxOptions{Isolation: sql.LevelReadCommitted}

// InTx runs fn inside a transaction.  Guards lock the row they depend on
// (the instrument for capacity, the student for payment_current) before
// counting, so concurrent requests on the same row are serialised.
func (s *SQLStore) InTx(ctx context.Context, fn func(r Repositories) error) error {
	opts := txOptions
	tx, err := s.db.BeginTx(ctx, &opts)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(reposOn(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func reposOn(q DBTX) Repositories {
	return Repositories{
		Instruments: NewInstrumentRepo(q),
		Students:    NewStudentRepo(q),
		Payments:    NewPaymentRepo(q),
		Attendance:  NewAttendanceRepo(q),
	}
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
