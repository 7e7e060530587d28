package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/music-school-admin/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repository code
// runs inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InstrumentRepository persists instruments.  Instruments returned by List
// and GetByID carry their assigned-student count.
type InstrumentRepository interface {
	List(ctx context.Context) ([]model.Instrument, error)
	GetByID(ctx context.Context, id string) (*model.Instrument, error)
	// GetByIDForUpdate loads the instrument and locks its row until the
	// surrounding transaction ends.  Outside a transaction it behaves like
	// GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Instrument, error)
	Create(ctx context.Context, in *model.Instrument) error
	Update(ctx context.Context, in *model.Instrument) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, id string) (int, error)
}

// StudentRepository persists students.  Students are always returned with
// their instrument joined.
type StudentRepository interface {
	List(ctx context.Context) ([]model.Student, error)
	GetByID(ctx context.Context, id string) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id string) error
	// Lock holds the student's row until the surrounding transaction ends.
	// It returns ErrNotFound for an unknown id.
	Lock(ctx context.Context, id string) error
	SetPaymentCurrent(ctx context.Context, id string, current bool) error
}

// PaymentFilter narrows ListPayments.  Empty fields do not filter.
type PaymentFilter struct {
	Month     string
	StudentID string
}

// PaymentRepository persists monthly payments.
type PaymentRepository interface {
	List(ctx context.Context, f PaymentFilter) ([]model.Payment, error)
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	Create(ctx context.Context, p *model.Payment) error
	SetPaid(ctx context.Context, id string, paid bool, paidOn *time.Time) error
	CountUnpaid(ctx context.Context, studentID string) (int, error)
}

// AttendanceFilter narrows ListAttendance.  A nil Date and an empty Month
// (YYYY-MM) do not filter.
type AttendanceFilter struct {
	Date      *model.CivilDate
	Month     string
	StudentID string
}

// AttendanceRepository persists attendance marks.
type AttendanceRepository interface {
	List(ctx context.Context, f AttendanceFilter) ([]model.Attendance, error)
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	// FindByStudentAndDay returns the row of studentID whose date falls in
	// [day, day+1) or ErrNotFound.
	FindByStudentAndDay(ctx context.Context, studentID string, day model.CivilDate) (*model.Attendance, error)
	Create(ctx context.Context, a *model.Attendance) error
	SetPresent(ctx context.Context, id string, present bool) error
}

// Repositories bundles the repositories bound to one connection or
// transaction.
type Repositories struct {
	Instruments InstrumentRepository
	Students    StudentRepository
	Payments    PaymentRepository
	Attendance  AttendanceRepository
}

// Store hands out repositories and runs functions atomically.  When fn
// returns an error every write it made is discarded.
type Store interface {
	Repos() Repositories
	InTx(ctx context.Context, fn func(r Repositories) error) error
}
