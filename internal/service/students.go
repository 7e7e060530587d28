package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/queue"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

// ListStudents returns all students ordered by name with their instrument
// and present-day count.
func (s *Service) ListStudents(ctx context.Context) ([]model.Student, error) {
	out, err := s.store.Repos().Students.List(ctx)
	if err != nil {
		return nil, internalError("list students", err)
	}
	return out, nil
}

// GetStudent returns one student with its instrument.
func (s *Service) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	st, err := s.store.Repos().Students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError(msgStudentNotFound)
		}
		return nil, internalError("get student", err)
	}
	return st, nil
}

// CreateStudent enrols a student on an instrument with a free unit and
// bills the current month.  The capacity check, the student row and the
// payment row are written in one transaction.
func (s *Service) CreateStudent(ctx context.Context, input StudentInput) (*model.Student, error) {
	input.normalize()
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(msgStudentRequired)
	}
	month := model.MonthOf(s.now(), s.loc)
	var out *model.Student
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := claimUnit(ctx, r, input.InstrumentID); err != nil {
			return err
		}
		st := &model.Student{Name: input.Name, Age: input.Age, InstrumentID: input.InstrumentID}
		if err := r.Students.Create(ctx, st); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgInstrumentNotFound)
			}
			return internalError("create student", err)
		}
		p := &model.Payment{StudentID: st.ID, AmountCents: s.fee, Month: month}
		if err := r.Payments.Create(ctx, p); err != nil {
			return internalError("create enrolment payment", err)
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, passThrough("create student", err)
	}
	s.emit(ctx, queue.Event{
		Type:         queue.EventStudentEnrolled,
		StudentID:    out.ID,
		InstrumentID: out.InstrumentID,
		Month:        month,
		Detail:       out.Name,
	})
	return out, nil
}

// UpdateStudent changes name, age and instrument.  The capacity guard runs
// only when the instrument changes.
func (s *Service) UpdateStudent(ctx context.Context, id string, input StudentInput) (*model.Student, error) {
	input.normalize()
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(msgStudentRequired)
	}
	var out *model.Student
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		cur, err := r.Students.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgStudentNotFound)
			}
			return internalError("load student", err)
		}
		if cur.InstrumentID != input.InstrumentID {
			if _, err := claimUnit(ctx, r, input.InstrumentID); err != nil {
				return err
			}
		}
		cur.Name = input.Name
		cur.Age = input.Age
		cur.InstrumentID = input.InstrumentID
		if err := r.Students.Update(ctx, cur); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgStudentNotFound)
			}
			return internalError("update student", err)
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, passThrough("update student", err)
	}
	s.emit(ctx, queue.Event{Type: queue.EventStudentUpdated, StudentID: out.ID, InstrumentID: out.InstrumentID, Detail: out.Name})
	return out, nil
}

// DeleteStudent removes a student; the store deletes its attendance and
// payments.  Deleting an unknown id is NotFound.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.store.Repos().Students.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError(msgStudentNotFound)
		}
		return internalError("delete student", err)
	}
	s.emit(ctx, queue.Event{Type: queue.EventStudentRemoved, StudentID: id})
	return nil
}
