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

// PaymentRepo provides operations on the payments table.  The pair
// (student_id, month) is unique; a second insert for the same pair fails
// with ErrDuplicate.
type PaymentRepo struct {
	db DBTX
}

// NewPaymentRepo constructs a PaymentRepo on the given handle.
func NewPaymentRepo(db DBTX) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentSelect = `SELECT p.id, p.student_id, p.amount_cents, p.month, p.paid, p.paid_on, p.created_at, p.updated_at,
	` + studentColumns + `
	FROM payments p
	JOIN students s ON s.id = p.student_id
	JOIN instruments i ON i.id = s.instrument_id`

func scanPayment(row scanner) (*model.Payment, error) {
	p := new(model.Payment)
	st := new(model.Student)
	in := new(model.Instrument)
	var assigned int
	var paidOn sql.NullTime
	dest := append([]any{
		&p.ID, &p.StudentID, &p.AmountCents, &p.Month, &p.Paid, &paidOn, &p.CreatedAt, &p.UpdatedAt,
	}, studentDest(st, in, &assigned)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if paidOn.Valid {
		t := paidOn.Time
		p.PaidOn = &t
	}
	finishStudent(st, in, assigned)
	p.Student = st
	return p, nil
}

// List returns payments matching f, newest month first and then by student
// name.
func (r *PaymentRepo) List(ctx context.Context, f PaymentFilter) ([]model.Payment, error) {
	var where []string
	var args []any
	if f.Month != "" {
		where = append(where, "p.month = ?")
		args = append(args, f.Month)
	}
	if f.StudentID != "" {
		where = append(where, "p.student_id = ?")
		args = append(args, f.StudentID)
	}
	q := paymentSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY p.month DESC, s.name ASC, p.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrNotFound when no payment has the given id.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, paymentSelect+` WHERE p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create inserts an unpaid payment.  ErrNotFound means the student does not
// exist, ErrDuplicate that the student already has a payment for the month.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `INSERT INTO payments (id, student_id, amount_cents, month, paid, paid_on) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.StudentID, p.AmountCents, p.Month, p.Paid, p.PaidOn); err != nil {
		return translate(err)
	}
	got, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

// SetPaid stores the paid flag together with its timestamp.
func (r *PaymentRepo) SetPaid(ctx context.Context, id string, paid bool, paidOn *time.Time) error {
	const q = `UPDATE payments SET paid = ?, paid_on = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	var on sql.NullTime
	if paidOn != nil {
		on = sql.NullTime{Time: paidOn.UTC(), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q, paid, on, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnpaid returns the number of unpaid payments of a student.
func (r *PaymentRepo) CountUnpaid(ctx context.Context, studentID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments WHERE student_id = ? AND paid = 0`, studentID).Scan(&n)
	return n, err
}
