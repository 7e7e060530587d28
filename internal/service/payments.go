package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/queue"
	"github.com/iliyamo/music-school-admin/internal/repository"
)

// PaymentFilter narrows payment listings and reports.
type PaymentFilter = repository.PaymentFilter

func (s *Service) checkPaymentFilter(f *PaymentFilter) error {
	f.Month = strings.TrimSpace(f.Month)
	f.StudentID = strings.TrimSpace(f.StudentID)
	if f.Month != "" && !model.ValidMonth(f.Month) {
		return validationError(msgPaymentMonth)
	}
	return nil
}

// ListPayments returns payments matching f, newest month first.
func (s *Service) ListPayments(ctx context.Context, f PaymentFilter) ([]model.Payment, error) {
	if err := s.checkPaymentFilter(&f); err != nil {
		return nil, err
	}
	out, err := s.store.Repos().Payments.List(ctx, f)
	if err != nil {
		return nil, internalError("list payments", err)
	}
	return out, nil
}

// CreatePayment bills a student for a month.  A student has at most one
// payment per month.  The student's payment_current flag is left alone;
// it changes only when a payment is marked paid or unpaid.
func (s *Service) CreatePayment(ctx context.Context, input PaymentInput) (*model.Payment, error) {
	input.normalize()
	if err := s.validate.Struct(input); err != nil {
		if failedTag(err) == yearMonthTag {
			return nil, validationError(msgPaymentMonth)
		}
		return nil, validationError(msgPaymentRequired)
	}
	p := &model.Payment{StudentID: input.StudentID, AmountCents: input.AmountCents, Month: input.Month}
	if err := s.store.Repos().Payments.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, conflictError(ErrDuplicate, msgPaymentDuplicate)
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFoundError(msgStudentNotFound)
		}
		return nil, internalError("create payment", err)
	}
	s.emit(ctx, queue.Event{Type: queue.EventPaymentCreated, PaymentID: p.ID, StudentID: p.StudentID, Month: p.Month})
	return p, nil
}

// SetPaymentPaid marks a payment paid (stamping paid_on) or unpaid
// (clearing it) and recomputes the owner's payment_current flag in the
// same transaction.
func (s *Service) SetPaymentPaid(ctx context.Context, id string, paid *bool) (*model.Payment, error) {
	if paid == nil {
		return nil, validationError(msgPaymentStatus)
	}
	var out *model.Payment
	err := s.store.InTx(ctx, func(r repository.Repositories) error {
		cur, err := r.Payments.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFoundError(msgPaymentNotFound)
			}
			return internalError("load payment", err)
		}
		// Serialise with other status changes of the same student so the
		// unpaid count below sees their writes.
		if err := r.Students.Lock(ctx, cur.StudentID); err != nil {
			return internalError("lock student", err)
		}
		var paidOn *time.Time
		if *paid {
			t := s.now().UTC()
			paidOn = &t
		}
		if err := r.Payments.SetPaid(ctx, id, *paid, paidOn); err != nil {
			return internalError("set payment paid", err)
		}
		if err := refreshPaymentCurrent(ctx, r, cur.StudentID); err != nil {
			return err
		}
		if out, err = r.Payments.GetByID(ctx, id); err != nil {
			return internalError("reload payment", err)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough("set payment paid", err)
	}
	s.emit(ctx, queue.Event{
		Type:      queue.EventPaymentStatusChanged,
		PaymentID: out.ID,
		StudentID: out.StudentID,
		Month:     out.Month,
		Paid:      paid,
	})
	return out, nil
}

// refreshPaymentCurrent stores payment_current = (no unpaid payments).
func refreshPaymentCurrent(ctx context.Context, r repository.Repositories, studentID string) error {
	unpaid, err := r.Payments.CountUnpaid(ctx, studentID)
	if err != nil {
		return internalError("count unpaid payments", err)
	}
	if err := r.Students.SetPaymentCurrent(ctx, studentID, unpaid == 0); err != nil {
		return internalError("set payment current", err)
	}
	return nil
}

// PaymentReport aggregates the payments matching f for display.
func (s *Service) PaymentReport(ctx context.Context, f PaymentFilter) (*model.PaymentReport, error) {
	payments, err := s.ListPayments(ctx, f)
	if err != nil {
		return nil, err
	}
	return summarize(payments), nil
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func summarize(payments []model.Payment) *model.PaymentReport {
	rep := &model.PaymentReport{Months: []model.MonthSummary{}}
	byMonth := map[string]*model.MonthSummary{}
	for _, p := range payments {
		rep.Total++
		rep.BilledCents += p.AmountCents
		m, ok := byMonth[p.Month]
		if !ok {
			m = &model.MonthSummary{Month: p.Month}
			byMonth[p.Month] = m
		}
		m.Total++
		if p.Paid {
			rep.Paid++
			rep.ReceivedCents += p.AmountCents
			m.Paid++
			m.ReceivedCents += p.AmountCents
		}
	}
	rep.Pending = rep.Total - rep.Paid
	rep.PendingCents = rep.BilledCents - rep.ReceivedCents
	rep.ReceiptRate = percent(rep.Paid, rep.Total)
	for _, m := range byMonth {
		m.ReceiptRate = percent(m.Paid, m.Total)
		rep.Months = append(rep.Months, *m)
	}
	sort.Slice(rep.Months, func(i, j int) bool { return rep.Months[i].Month < rep.Months[j].Month })
	return rep
}
