// Package memstore is an in-memory repository.Store.  It mirrors the
// constraints of the MySQL schema (unique keys, foreign keys, cascades) so
// the service layer behaves the same against either store.  Transactions
// are serialised by a single mutex and applied copy-on-write.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

type tables struct {
	instruments map[string]model.Instrument
	students    map[string]model.Student
	payments    map[string]model.Payment
	attendance  map[string]model.Attendance
}

func newTables() *tables {
	return &tables{
		instruments: map[string]model.Instrument{},
		students:    map[string]model.Student{},
		payments:    map[string]model.Payment{},
		attendance:  map[string]model.Attendance{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.instruments {
		c.instruments[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.attendance {
		c.attendance[k] = v
	}
	return c
}

// Store keeps all rows in maps guarded by mu.
type Store struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: newTables(), now: func() time.Time { return time.Now().UTC() }}
}

// Repos returns repositories that apply each call atomically on the shared
// tables.
func (s *Store) Repos() repository.Repositories { return s.reposOn(&view{s: s}) }

// InTx runs fn against a private copy of the tables and publishes the copy
// only when fn succeeds.  Concurrent transactions run one at a time.
func (s *Store) InTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(s.reposOn(&view{s: s, t: work})); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (s *Store) reposOn(v *view) repository.Repositories {
	return repository.Repositories{
		Instruments: &instrumentRepo{v: v},
		Students:    &studentRepo{v: v},
		Payments:    &paymentRepo{v: v},
		Attendance:  &attendanceRepo{v: v},
	}
}

// view routes a call either to a transaction's tables or to the shared
// tables under the store lock.
type view struct {
	s *Store
	t *tables
}

func (v *view) do(fn func(t *tables) error) error {
	if v.t != nil {
		return fn(v.t)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.data)
}

func (v *view) now() time.Time { return v.s.now() }

// Joins.

func (t *tables) assigned(instrumentID string) int {
	n := 0
	for _, st := range t.students {
		if st.InstrumentID == instrumentID {
			n++
		}
	}
	return n
}

func (t *tables) instrument(id string) (model.Instrument, bool) {
	in, ok := t.instruments[id]
	if !ok {
		return model.Instrument{}, false
	}
	in.SetAssigned(t.assigned(id))
	return in, true
}

func (t *tables) student(id string) (model.Student, bool) {
	st, ok := t.students[id]
	if !ok {
		return model.Student{}, false
	}
	st.AttendanceCount = 0
	for _, a := range t.attendance {
		if a.StudentID == id && a.Present {
			st.AttendanceCount++
		}
	}
	if in, ok := t.instrument(st.InstrumentID); ok {
		st.Instrument = &in
	}
	return st, true
}

func (t *tables) payment(id string) (model.Payment, bool) {
	p, ok := t.payments[id]
	if !ok {
		return model.Payment{}, false
	}
	if st, ok := t.student(p.StudentID); ok {
		p.Student = &st
	}
	return p, true
}

func (t *tables) attendanceRow(id string) (model.Attendance, bool) {
	a, ok := t.attendance[id]
	if !ok {
		return model.Attendance{}, false
	}
	if st, ok := t.student(a.StudentID); ok {
		a.Student = &st
	}
	return a, true
}
