package service

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/queue"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

// AttendanceFilter narrows attendance listings.
type AttendanceFilter = repository.AttendanceFilter

// Today returns the current calendar day in the school time zone.
func (s *Service) Today() model.CivilDate { return model.DayOf(s.now(), s.loc) }

// ParseDate parses a YYYY-MM-DD day in the school time zone.
func (s *Service) ParseDate(raw string) (model.CivilDate, error) {
	d, err := model.ParseDate(strings.TrimSpace(raw), s.loc)
	if err != nil {
		return model.CivilDate{}, validationError(msgAttendanceDate)
	}
	return d, nil
}

// ListAttendance returns attendance rows matching f, newest day first.
// Month, when set, must be YYYY-MM.
func (s *Service) ListAttendance(ctx context.Context, f AttendanceFilter) ([]model.Attendance, error) {
	f.StudentID = strings.TrimSpace(f.StudentID)
	f.Month = strings.TrimSpace(f.Month)
	if f.Month != "" && !model.ValidMonth(f.Month) {
		return nil, validationError(msgAttendanceMonth)
	}
	out, err := s.store.Repos().Attendance.List(ctx, f)
	if err != nil {
		return nil, internalError("list attendance", err)
	}
	return out, nil
}

// AttendanceReport counts classes, presences and absences of the rows
// matching f, overall and per student.
func (s *Service) AttendanceReport(ctx context.Context, f AttendanceFilter) (*model.AttendanceReport, error) {
	rows, err := s.ListAttendance(ctx, f)
	if err != nil {
		return nil, err
	}
	return tally(rows), nil
}

func tally(rows []model.Attendance) *model.AttendanceReport {
	rep := &model.AttendanceReport{Students: []model.StudentAttendance{}}
	byStudent := map[string]*model.StudentAttendance{}
	for _, a := range rows {
		st, ok := byStudent[a.StudentID]
		if !ok {
			st = &model.StudentAttendance{StudentID: a.StudentID}
			if a.Student != nil {
				st.StudentName = a.Student.Name
			}
			byStudent[a.StudentID] = st
		}
		rep.Classes++
		st.Classes++
		if a.Present {
			rep.Present++
			st.Present++
		}
	}
	rep.Absent = rep.Classes - rep.Present
	rep.Rate = percent(rep.Present, rep.Classes)
	for _, st := range byStudent {
		st.Absent = st.Classes - st.Present
		st.Rate = percent(st.Present, st.Classes)
		rep.Students = append(rep.Students, *st)
	}
	sort.Slice(rep.Students, func(i, j int) bool {
		a, b := rep.Students[i], rep.Students[j]
		if a.StudentName != b.StudentName {
			return a.StudentName < b.StudentName
		}
		return a.StudentID < b.StudentID
	})
	return rep
}

// MarkAttendance records whether a student was present on a day.  A
// student has at most one row per day: an existing row is updated in place
// and created reports false; otherwise a row is inserted and created
// reports true.
func (s *Service) MarkAttendance(ctx context.Context, input AttendanceInput) (att *model.Attendance, created bool, err error) {
	input.StudentID = strings.TrimSpace(input.StudentID)
	if err := s.validate.Struct(input); err != nil {
		return nil, false, validationError(msgAttendanceRequired)
	}
	if input.Date.IsZero() {
		return nil, false, validationError(msgAttendanceDate)
	}
	day := model.DayOf(input.Date.Time, input.Date.Location())
	present := *input.Present

	err = s.store.InTx(ctx, func(r repository.Repositories) error {
		if _, err := r.Students.GetByID(ctx, input.StudentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgStudentNotFound)
			}
			return internalError("load student", err)
		}
		existing, err := r.Attendance.FindByStudentAndDay(ctx, input.StudentID, day)
		switch {
		case err == nil:
			att, err = overwriteAttendance(ctx, r, existing.ID, present)
			return err
		case !errors.Is(err, repository.ErrNotFound):
			return internalError("find attendance", err)
		}
		a := &model.Attendance{StudentID: input.StudentID, Date: day, Present: present}
		if err := r.Attendance.Create(ctx, a); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return internalError("create attendance", err)
			}
			// Lost a race with another insert for the same day.
			existing, err := r.Attendance.FindByStudentAndDay(ctx, input.StudentID, day)
			if err != nil {
				return internalError("find attendance", err)
			}
			att, err = overwriteAttendance(ctx, r, existing.ID, present)
			return err
		}
		att, created = a, true
		return nil
	})
	if err != nil {
		return nil, false, passThrough("mark attendance", err)
	}
	s.emit(ctx, queue.Event{
		Type:         queue.EventAttendanceMarked,
		AttendanceID: att.ID,
		StudentID:    att.StudentID,
		Date:         att.Date.String(),
		Present:      &present,
	})
	return att, created, nil
}

func overwriteAttendance(ctx context.Context, r repository.Repositories, id string, present bool) (*model.Attendance, error) {
	if err := r.Attendance.SetPresent(ctx, id, present); err != nil {
		return nil, internalError("update attendance", err)
	}
	a, err := r.Attendance.GetByID(ctx, id)
	if err != nil {
		return nil, internalError("reload attendance", err)
	}
	return a, nil
}
