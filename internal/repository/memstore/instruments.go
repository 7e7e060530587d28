package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

type instrumentRepo struct {
	v *view
}

func (r *instrumentRepo) List(ctx context.Context) ([]model.Instrument, error) {
	out := []model.Instrument{}
	err := r.v.do(func(t *tables) error {
		for id := range t.instruments {
			in, _ := t.instrument(id)
			out = append(out, in)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *instrumentRepo) GetByID(ctx context.Context, id string) (*model.Instrument, error) {
	var got model.Instrument
	err := r.v.do(func(t *tables) error {
		in, ok := t.instrument(id)
		if !ok {
			return repository.ErrNotFound
		}
		got = in
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &got, nil
}

// GetByIDForUpdate needs no extra locking: transactions already hold the
// store mutex.
func (r *instrumentRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Instrument, error) {
	return r.GetByID(ctx, id)
}

func nameTaken(t *tables, name, exceptID string) bool {
	for id, in := range t.instruments {
		if id != exceptID && in.Name == name {
			return true
		}
	}
	return false
}

func (r *instrumentRepo) Create(ctx context.Context, in *model.Instrument) error {
	return r.v.do(func(t *tables) error {
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		if _, ok := t.instruments[in.ID]; ok {
			return repository.ErrDuplicate
		}
		if nameTaken(t, in.Name, "") {
			return repository.ErrDuplicate
		}
		now := r.v.now()
		row := model.Instrument{ID: in.ID, Name: in.Name, Quantity: in.Quantity, CreatedAt: now, UpdatedAt: now}
		t.instruments[in.ID] = row
		*in, _ = t.instrument(in.ID)
		return nil
	})
}

func (r *instrumentRepo) Update(ctx context.Context, in *model.Instrument) error {
	return r.v.do(func(t *tables) error {
		row, ok := t.instruments[in.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if nameTaken(t, in.Name, in.ID) {
			return repository.ErrDuplicate
		}
		row.Name = in.Name
		row.Quantity = in.Quantity
		row.UpdatedAt = r.v.now()
		t.instruments[in.ID] = row
		*in, _ = t.instrument(in.ID)
		return nil
	})
}

func (r *instrumentRepo) Delete(ctx context.Context, id string) error {
	return r.v.do(func(t *tables) error {
		if _, ok := t.instruments[id]; !ok {
			return repository.ErrNotFound
		}
		if t.assigned(id) > 0 {
			return repository.ErrConflict
		}
		delete(t.instruments, id)
		return nil
	})
}

func (r *instrumentRepo) CountStudents(ctx context.Context, id string) (int, error) {
	var n int
	err := r.v.do(func(t *tables) error {
		n = t.assigned(id)
		return nil
	})
	return n, err
}
