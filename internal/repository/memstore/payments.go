package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

type paymentRepo struct {
	v *view
}

func (r *paymentRepo) List(ctx context.Context, f repository.PaymentFilter) ([]model.Payment, error) {
	out := []model.Payment{}
	err := r.v.do(func(t *tables) error {
		for id, p := range t.payments {
			if f.Month != "" && p.Month != f.Month {
				continue
			}
			if f.StudentID != "" && p.StudentID != f.StudentID {
				continue
			}
			joined, _ := t.payment(id)
			out = append(out, joined)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		if an, bn := studentName(a.Student), studentName(b.Student); an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	return out, err
}

func studentName(s *model.Student) string {
	if s == nil {
		return ""
	}
	return s.Name
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var got model.Payment
	err := r.v.do(func(t *tables) error {
		p, ok := t.payment(id)
		if !ok {
			return repository.ErrNotFound
		}
		got = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &got, nil
}

func (r *paymentRepo) Create(ctx context.Context, p *model.Payment) error {
	return r.v.do(func(t *tables) error {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, ok := t.students[p.StudentID]; !ok {
			return repository.ErrNotFound
		}
		for id, existing := range t.payments {
			if id == p.ID || (existing.StudentID == p.StudentID && existing.Month == p.Month) {
				return repository.ErrDuplicate
			}
		}
		now := r.v.now()
		row := model.Payment{
			ID:          p.ID,
			StudentID:   p.StudentID,
			AmountCents: p.AmountCents,
			Month:       p.Month,
			Paid:        p.Paid,
			PaidOn:      p.PaidOn,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		t.payments[p.ID] = row
		*p, _ = t.payment(p.ID)
		return nil
	})
}

func (r *paymentRepo) SetPaid(ctx context.Context, id string, paid bool, paidOn *time.Time) error {
	return r.v.do(func(t *tables) error {
		row, ok := t.payments[id]
		if !ok {
			return repository.ErrNotFound
		}
		row.Paid = paid
		row.PaidOn = nil
		if paidOn != nil {
			on := paidOn.UTC()
			row.PaidOn = &on
		}
		row.UpdatedAt = r.v.now()
		t.payments[id] = row
		return nil
	})
}

func (r *paymentRepo) CountUnpaid(ctx context.Context, studentID string) (int, error) {
	var n int
	err := r.v.do(func(t *tables) error {
		for _, p := range t.payments {
			if p.StudentID == studentID && !p.Paid {
				n++
			}
		}
		return nil
	})
	return n, err
}
