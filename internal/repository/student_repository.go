package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/music-school-admin/internal/model"
)

// StudentRepo provides CRUD operations for the students table.  Attendance
// and payment rows are removed by ON DELETE CASCADE when a student is
// deleted.
type StudentRepo struct {
	db DBTX
}

// NewStudentRepo constructs a StudentRepo on the given handle.
func NewStudentRepo(db DBTX) *StudentRepo { return &StudentRepo{db: db} }

// studentColumns selects a student joined with its instrument.  It expects
// the aliases s (students) and i (instruments).
const studentColumns = `s.id, s.name, s.age, s.instrument_id, s.payment_current, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM attendance a WHERE a.student_id = s.id AND a.present = 1),
	i.id, i.name, i.quantity, i.created_at, i.updated_at,
	(SELECT COUNT(*) FROM students s2 WHERE s2.instrument_id = i.id)`

const studentSelect = `SELECT ` + studentColumns + `
	FROM students s
	JOIN instruments i ON i.id = s.instrument_id`

// studentDest returns the scan destinations matching studentColumns.  The
// instrument count is applied by finishStudent after the scan.
func studentDest(st *model.Student, in *model.Instrument, assigned *int) []any {
	return []any{
		&st.ID, &st.Name, &st.Age, &st.InstrumentID, &st.PaymentCurrent, &st.CreatedAt, &st.UpdatedAt,
		&st.AttendanceCount,
		&in.ID, &in.Name, &in.Quantity, &in.CreatedAt, &in.UpdatedAt,
		assigned,
	}
}

func finishStudent(st *model.Student, in *model.Instrument, assigned int) {
	in.SetAssigned(assigned)
	st.Instrument = in
}

func scanStudent(row scanner) (*model.Student, error) {
	st := new(model.Student)
	in := new(model.Instrument)
	var assigned int
	if err := row.Scan(studentDest(st, in, &assigned)...); err != nil {
		return nil, err
	}
	finishStudent(st, in, assigned)
	return st, nil
}

// List returns all students ordered by name.
func (r *StudentRepo) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx, studentSelect+` ORDER BY s.name, s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrNotFound when no student has the given id.
func (r *StudentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	st, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+` WHERE s.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

// Create inserts the student and reads it back with its instrument.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const q = `INSERT INTO students (id, name, age, instrument_id, payment_current) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.Name, s.Age, s.InstrumentID, s.PaymentCurrent); err != nil {
		return translate(err)
	}
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// Update writes name, age and instrument.
func (r *StudentRepo) Update(ctx context.Context, s *model.Student) error {
	const q = `UPDATE students SET name = ?, age = ?, instrument_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Age, s.InstrumentID, s.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	got, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// Delete removes the student; dependent rows go with it.
func (r *StudentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Lock takes a row lock on the student.  Outside a transaction the lock is
// released as soon as the statement ends.
func (r *StudentRepo) Lock(ctx context.Context, id string) error {
	var got string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM students WHERE id = ? FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// SetPaymentCurrent stores the cached payment flag.
func (r *StudentRepo) SetPaymentCurrent(ctx context.Context, id string, current bool) error {
	const q = `UPDATE students SET payment_current = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, current, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
