package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/music-school-admin/internal/model"
)

// InstrumentRepo provides CRUD operations for the instruments table.  The
// assigned-student count is computed with a join on every read so it can
// never go stale.
type InstrumentRepo struct {
	db DBTX
}

// NewInstrumentRepo constructs an InstrumentRepo on the given handle.
func NewInstrumentRepo(db DBTX) *InstrumentRepo { return &InstrumentRepo{db: db} }

const instrumentSelect = `SELECT i.id, i.name, i.quantity, i.created_at, i.updated_at,
	       (SELECT COUNT(*) FROM students s WHERE s.instrument_id = i.id)
	FROM instruments i`

func scanInstrument(row scanner) (*model.Instrument, error) {
	var in model.Instrument
	var assigned int
	if err := row.Scan(&in.ID, &in.Name, &in.Quantity, &in.CreatedAt, &in.UpdatedAt, &assigned); err != nil {
		return nil, err
	}
	in.SetAssigned(assigned)
	return &in, nil
}

// List returns every instrument ordered by name.
func (r *InstrumentRepo) List(ctx context.Context) ([]model.Instrument, error) {
	rows, err := r.db.QueryContext(ctx, instrumentSelect+` ORDER BY i.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Instrument{}
	for rows.Next() {
		in, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrNotFound when no instrument has the given id.
func (r *InstrumentRepo) GetByID(ctx context.Context, id string) (*model.Instrument, error) {
	in, err := scanInstrument(r.db.QueryRowContext(ctx, instrumentSelect+` WHERE i.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return in, nil
}

// GetByIDForUpdate locks the instrument row and then counts its students.
// The lock is taken before the count so that a concurrent transaction
// assigning a student to the same instrument waits for this one to finish.
func (r *InstrumentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Instrument, error) {
	const q = `SELECT id, name, quantity, created_at, updated_at FROM instruments WHERE id = ? FOR UPDATE`
	var in model.Instrument
	err := r.db.QueryRowContext(ctx, q, id).Scan(&in.ID, &in.Name, &in.Quantity, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n, err := r.CountStudents(ctx, id)
	if err != nil {
		return nil, err
	}
	in.SetAssigned(n)
	return &in, nil
}

// Create inserts the instrument, assigning a fresh id when none is set, and
// reads the row back so timestamps are populated.
func (r *InstrumentRepo) Create(ctx context.Context, in *model.Instrument) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	const q = `INSERT INTO instruments (id, name, quantity) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, in.ID, in.Name, in.Quantity); err != nil {
		return translate(err)
	}
	got, err := r.GetByID(ctx, in.ID)
	if err != nil {
		return err
	}
	*in = *got
	return nil
}

// Update writes name and quantity.  It returns ErrNotFound when the row does
// not exist and ErrDuplicate when the new name is taken.
func (r *InstrumentRepo) Update(ctx context.Context, in *model.Instrument) error {
	const q = `UPDATE instruments SET name = ?, quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, in.Name, in.Quantity, in.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	got, err := r.GetByID(ctx, in.ID)
	if err != nil {
		return err
	}
	*in = *got
	return nil
}

// Delete removes the instrument.  The foreign key from students makes the
// database reject the delete while students reference it; that case is
// reported as ErrConflict.
func (r *InstrumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM instruments WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountStudents returns how many students are assigned to the instrument.
func (r *InstrumentRepo) CountStudents(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students WHERE instrument_id = ?`, id).Scan(&n)
	return n, err
}
