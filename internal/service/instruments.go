package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/queue"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

// ListInstruments returns all instruments ordered by name with their
// assigned and available counts.
func (s *Service) ListInstruments(ctx context.Context) ([]model.Instrument, error) {
	out, err := s.store.Repos().Instruments.List(ctx)
	if err != nil {
		return nil, internalError("list instruments", err)
	}
	return out, nil
}

// GetInstrument returns one instrument.
func (s *Service) GetInstrument(ctx context.Context, id string) (*model.Instrument, error) {
	in, err := s.store.Repos().Instruments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgInstrumentNotFound)
		}
		return nil, internalError("get instrument", err)
	}
	return in, nil
}

// CreateInstrument adds an instrument.  Names are unique.
func (s *Service) CreateInstrument(ctx context.Context, input InstrumentInput) (*model.Instrument, error) {
	input.normalize()
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(msgInstrumentRequired)
	}
	in := &model.Instrument{Name: input.Name, Quantity: input.Quantity}
	if err := s.store.Repos().Instruments.Create(ctx, in); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError(ErrDuplicate, msgInstrumentDuplicate)
		}
		return nil, internalError("create instrument", err)
	}
	s.emit(ctx, queue.Event{Type: queue.EventInstrumentCreated, InstrumentID: in.ID, Detail: in.Name})
	return in, nil
}

// UpdateInstrument renames an instrument or changes its quantity.  The new
// quantity may not drop below the number of students already assigned.
func (s *Service) UpdateInstrument(ctx context.Context, id string, input InstrumentInput) (*model.Instrument, error) {
	input.normalize()
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(msgInstrumentRequired)
	}
	var out *model.Instrument
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		cur, err := r.Instruments.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgInstrumentNotFound)
			}
			return internalError("load instrument", err)
		}
		if err := checkQuantity(cur, input.Quantity); err != nil {
			return err
		}
		cur.Name = input.Name
		cur.Quantity = input.Quantity
		if err := r.Instruments.Update(ctx, cur); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return conflictError(ErrDuplicate, msgInstrumentDuplicate)
			case errors.Is(err, repository.ErrNotFound):
				return notFoundError(msgInstrumentNotFound)
			}
			return internalError("update instrument", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, passThrough("update instrument", err)
	}
	s.emit(ctx, queue.Event{Type: queue.EventInstrumentUpdated, InstrumentID: out.ID, Detail: out.Name})
	return out, nil
}

// DeleteInstrument removes an instrument no student is assigned to.
func (s *Service) DeleteInstrument(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		cur, err := r.Instruments.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgInstrumentNotFound)
			}
			return internalError("load instrument", err)
		}
		if cur.AssignedCount > 0 {
			return conflictf(ErrInUse,
				"Não é possível excluir. Existem %d alunos usando este instrumento.", cur.AssignedCount)
		}
		if err := r.Instruments.Delete(ctx, id); err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return conflictError(ErrInUse, "Não é possível excluir. Existem alunos usando este instrumento.")
			case errors.Is(err, repository.ErrNotFound):
				return notFoundError(msgInstrumentNotFound)
			}
			return internalError("delete instrument", err)
		}
		return nil
	})
	if err != nil {
		return passThrough("delete instrument", err)
	}
	s.emit(ctx, queue.Event{Type: queue.EventInstrumentRemoved, InstrumentID: id})
	return nil
}
