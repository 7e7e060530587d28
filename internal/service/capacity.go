package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

// claimUnit is the capacity guard for assigning one more student to an
// instrument.  It locks the instrument row and fails with NotFound when the
// instrument does not exist or Conflict when no unit is available.  It must
// run in the same transaction as the write it guards.
func claimUnit(ctx context.Context, r repository.Repositories, instrumentID string) (*model.Instrument, error) {
	in, err := r.Instruments.GetByIDForUpdate(ctx, instrumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgInstrumentNotFound)
		}
		return nil, internalError("load instrument", err)
	}
	if in.Available <= 0 {
		return nil, conflictError(ErrCapacityExceeded, msgInstrumentFull)
	}
	return in, nil
}

// checkQuantity rejects a quantity that would leave assigned students
// without a unit.
func checkQuantity(in *model.Instrument, quantity int) error {
	if quantity < in.AssignedCount {
		return conflictf(ErrCapacityExceeded,
			"Não é possível reduzir a quantidade. Existem %d alunos usando este instrumento.", in.AssignedCount)
	}
	return nil
}
