// Package service holds the business rules of the school: instrument
// capacity, the student lifecycle, payment status aggregation and the
// attendance upsert.  Every guarded mutation runs its check and its write
// inside one store transaction.
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/music-school-admin/internal/queue"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

// DefaultMonthlyFeeCents is billed on enrolment when Options leaves the fee
// unset.
const DefaultMonthlyFeeCents int64 = 10000

// Publisher delivers domain events.  Failures never fail the operation
// that produced the event.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.Event) error { return nil }

// Options configures a Service.  Zero values select defaults.
type Options struct {
	Location        *time.Location   // school time zone; UTC when nil
	MonthlyFeeCents int64            // amount of the enrolment payment
	Now             func() time.Time // clock; time.Now when nil
	Publisher       Publisher        // event sink; events are dropped when nil
}

// Service implements the school operations on top of a repository.Store.
type Service struct {
	store    repository.Store
	validate *validator.Validate
	loc      *time.Location
	fee      int64
	now      func() time.Time
	pub      Publisher
}

// New constructs a Service and panics if store is nil.
func New(store repository.Store, opts Options) *Service {
	if store == nil {
		panic("nil store passed to service.New")
	}
	s := &Service{
		store:    store,
		validate: newValidator(),
		loc:      opts.Location,
		fee:      opts.MonthlyFeeCents,
		now:      opts.Now,
		pub:      opts.Publisher,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.fee <= 0 {
		s.fee = DefaultMonthlyFeeCents
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.pub == nil {
		s.pub = nopPublisher{}
	}
	return s
}

// Location returns the school time zone used for days and months.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the current time according to the service clock.
func (s *Service) Now() time.Time { return s.now() }

// emit publishes ev after a committed write.  Errors are logged only.
func (s *Service) emit(ctx context.Context, ev queue.Event) {
	if ev.OccurredAt == "" {
		ev.OccurredAt = s.now().UTC().Format(time.RFC3339)
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		log.Warnf("event %s not published: %v", ev.Type, err)
	}
}
