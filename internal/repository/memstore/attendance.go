package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

type attendanceRepo struct {
	v *view
}

func (r *attendanceRepo) List(ctx context.Context, f repository.AttendanceFilter) ([]model.Attendance, error) {
	out := []model.Attendance{}
	err := r.v.do(func(t *tables) error {
		for id, a := range t.attendance {
			if f.Date != nil && !a.Date.Equal(*f.Date) {
				continue
			}
			if f.Month != "" && a.Date.Format(model.MonthLayout) != f.Month {
				continue
			}
			if f.StudentID != "" && a.StudentID != f.StudentID {
				continue
			}
			joined, _ := t.attendanceRow(id)
			out = append(out, joined)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if as, bs := a.Date.String(), b.Date.String(); as != bs {
			return as > bs
		}
		if an, bn := studentName(a.Student), studentName(b.Student); an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	return out, err
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var got model.Attendance
	err := r.v.do(func(t *tables) error {
		a, ok := t.attendanceRow(id)
		if !ok {
			return repository.ErrNotFound
		}
		got = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &got, nil
}

func (r *attendanceRepo) FindByStudentAndDay(ctx context.Context, studentID string, day model.CivilDate) (*model.Attendance, error) {
	var got model.Attendance
	err := r.v.do(func(t *tables) error {
		for id, a := range t.attendance {
			if a.StudentID == studentID && a.Date.Equal(day) {
				got, _ = t.attendanceRow(id)
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &got, nil
}

func (r *attendanceRepo) Create(ctx context.Context, a *model.Attendance) error {
	return r.v.do(func(t *tables) error {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if _, ok := t.students[a.StudentID]; !ok {
			return repository.ErrNotFound
		}
		for id, existing := range t.attendance {
			if id == a.ID || (existing.StudentID == a.StudentID && existing.Date.Equal(a.Date)) {
				return repository.ErrDuplicate
			}
		}
		t.attendance[a.ID] = model.Attendance{
			ID:        a.ID,
			StudentID: a.StudentID,
			Date:      a.Date,
			Present:   a.Present,
			CreatedAt: r.v.now(),
		}
		*a, _ = t.attendanceRow(a.ID)
		return nil
	})
}

func (r *attendanceRepo) SetPresent(ctx context.Context, id string, present bool) error {
	return r.v.do(func(t *tables) error {
		row, ok := t.attendance[id]
		if !ok {
			return repository.ErrNotFound
		}
		row.Present = present
		t.attendance[id] = row
		return nil
	})
}
