package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

type studentRepo struct {
	v *view
}

func (r *studentRepo) List(ctx context.Context) ([]model.Student, error) {
	out := []model.Student{}
	err := r.v.do(func(t *tables) error {
		for id := range t.students {
			st, _ := t.student(id)
			out = append(out, st)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var got model.Student
	err := r.v.do(func(t *tables) error {
		st, ok := t.student(id)
		if !ok {
			return repository.ErrNotFound
		}
		got = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &got, nil
}

func (r *studentRepo) Create(ctx context.Context, s *model.Student) error {
	return r.v.do(func(t *tables) error {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if _, ok := t.students[s.ID]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := t.instruments[s.InstrumentID]; !ok {
			return repository.ErrNotFound
		}
		now := r.v.now()
		t.students[s.ID] = model.Student{
			ID:             s.ID,
			Name:           s.Name,
			Age:            s.Age,
			InstrumentID:   s.InstrumentID,
			PaymentCurrent: s.PaymentCurrent,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		*s, _ = t.student(s.ID)
		return nil
	})
}

func (r *studentRepo) Update(ctx context.Context, s *model.Student) error {
	return r.v.do(func(t *tables) error {
		row, ok := t.students[s.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if _, ok := t.instruments[s.InstrumentID]; !ok {
			return repository.ErrNotFound
		}
		row.Name = s.Name
		row.Age = s.Age
		row.InstrumentID = s.InstrumentID
		row.UpdatedAt = r.v.now()
		t.students[s.ID] = row
		*s, _ = t.student(s.ID)
		return nil
	})
}

// Delete cascades to the student's attendance and payments.
func (r *studentRepo) Delete(ctx context.Context, id string) error {
	return r.v.do(func(t *tables) error {
		if _, ok := t.students[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.students, id)
		for pid, p := range t.payments {
			if p.StudentID == id {
				delete(t.payments, pid)
			}
		}
		for aid, a := range t.attendance {
			if a.StudentID == id {
				delete(t.attendance, aid)
			}
		}
		return nil
	})
}

// Lock only checks existence; transactions already run one at a time.
func (r *studentRepo) Lock(ctx context.Context, id string) error {
	return r.v.do(func(t *tables) error {
		if _, ok := t.students[id]; !ok {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *studentRepo) SetPaymentCurrent(ctx context.Context, id string, current bool) error {
	return r.v.do(func(t *tables) error {
		row, ok := t.students[id]
		if !ok {
			return repository.ErrNotFound
		}
		row.PaymentCurrent = current
		row.UpdatedAt = r.v.now()
		t.students[id] = row
		return nil
	})
}
