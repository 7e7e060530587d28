package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/music-school-admin/internal/model"
)

// AttendanceRepo provides operations on the attendance table.  Dates are
// stored in a DATE column with a unique (student_id, date) key, so the
// store itself refuses a second row for the same student and day.
type AttendanceRepo struct {
	db DBTX
}

// NewAttendanceRepo constructs an AttendanceRepo on the given handle.
func NewAttendanceRepo(db DBTX) *AttendanceRepo { return &AttendanceRepo{db: db} }

const attendanceSelect = `SELECT a.id, a.student_id, a.date, a.present, a.created_at,
	` + studentColumns + `
	FROM attendance a
	JOIN students s ON s.id = a.student_id
	JOIN instruments i ON i.id = s.instrument_id`

func scanAttendance(row scanner) (*model.Attendance, error) {
	a := new(model.Attendance)
	st := new(model.Student)
	in := new(model.Instrument)
	var assigned int
	var day time.Time
	dest := append([]any{&a.ID, &a.StudentID, &day, &a.Present, &a.CreatedAt}, studentDest(st, in, &assigned)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	// DATE columns come back as midnight UTC; keep the calendar fields only.
	a.Date = model.CivilDate{Time: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)}
	finishStudent(st, in, assigned)
	a.Student = st
	return a, nil
}

// List returns attendance rows matching f, newest day first and then by
// student name.
func (r *AttendanceRepo) List(ctx context.Context, f AttendanceFilter) ([]model.Attendance, error) {
	var where []string
	var args []any
	if f.Date != nil {
		where = append(where, "a.date >= ? AND a.date < ?")
		args = append(args, f.Date.String(), f.Date.Next().String())
	}
	if f.Month != "" {
		from, err := time.Parse(model.MonthLayout, f.Month)
		if err != nil {
			return nil, err
		}
		where = append(where, "a.date >= ? AND a.date < ?")
		args = append(args, from.Format(model.DateLayout), from.AddDate(0, 1, 0).Format(model.DateLayout))
	}
	if f.StudentID != "" {
		where = append(where, "a.student_id = ?")
		args = append(args, f.StudentID)
	}
	q := attendanceSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY a.date DESC, s.name ASC, a.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrNotFound when no row has the given id.
func (r *AttendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	a, err := scanAttendance(r.db.QueryRowContext(ctx, attendanceSelect+` WHERE a.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// FindByStudentAndDay locks and returns the student's row for day.  Inside a
// transaction the FOR UPDATE also takes a gap lock, so a concurrent insert
// for the same student and day waits.
func (r *AttendanceRepo) FindByStudentAndDay(ctx context.Context, studentID string, day model.CivilDate) (*model.Attendance, error) {
	const q = `SELECT id FROM attendance WHERE student_id = ? AND date >= ? AND date < ? LIMIT 1 FOR UPDATE`
	var id string
	err := r.db.QueryRowContext(ctx, q, studentID, day.String(), day.Next().String()).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Create inserts a new row.  ErrDuplicate means a row for the same student
// and day already exists; ErrNotFound that the student does not.
func (r *AttendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	const q = `INSERT INTO attendance (id, student_id, date, present) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, a.ID, a.StudentID, a.Date.String(), a.Present); err != nil {
		return translate(err)
	}
	got, err := r.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *got
	return nil
}

// SetPresent updates the present flag in place.
func (r *AttendanceRepo) SetPresent(ctx context.Context, id string, present bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE attendance SET present = ? WHERE id = ?`, present, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
