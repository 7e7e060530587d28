package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/music-school-admin/internal/repository"
	"github.com/iliyamo/music-school-admin/internal/repository/memstore"
	"github.com/iliyamo/music-school-admin/internal/service"
)

func TestCreatePayment(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	in := createInstrument(t, svc, "Piano", 1)
	st := createStudent(t, svc, "Ana", in.ID)

	p, err := svc.CreatePayment(ctx, service.PaymentInput{StudentID: st.ID, AmountCents: 12500, Month: "2025-07"})
	require.NoError(t, err)
	assert.Equal(t, "2025-07", p.Month)
	assert.Equal(t, int64(12500), p.AmountCents)
	require.NotNil(t, p.Student)
	assert.Equal(t, "Ana", p.Student.Name)

	_, err = svc.CreatePayment(ctx, service.PaymentInput{StudentID: st.ID, AmountCents: 100, Month: "2025-07"})
	assertKind(t, err, service.KindConflict)
	assert.True(t, errors.Is(err, service.ErrDuplicate))

	// the enrolment payment already covers June
	_, err = svc.CreatePayment(ctx, service.PaymentInput{StudentID: st.ID, AmountCents: 100, Month: "2025-06"})
	assertKind(t, err, service.KindConflict)
}

func TestCreatePayment_Validation(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	in := createInstrument(t, svc, "Piano", 1)
	st := createStudent(t, svc, "Ana", in.ID)

	for _, month := range []string{"2025-13", "2025-7", "25-07", "julho"} {
		_, err := svc.CreatePayment(ctx, service.PaymentInput{StudentID: st.ID, AmountCents: 100, Month: month})
		assertKind(t, err, service.KindValidation)
		assert.Equal(t, "Mês deve estar no formato AAAA-MM", service.MessageOf(err), month)
	}

	_, err := svc.CreatePayment(ctx, service.PaymentInput{StudentID: st.ID, AmountCents: 0, Month: "2025-08"})
	assertKind(t, err, service.KindValidation)
	_, err = svc.CreatePayment(ctx, service.PaymentInput{AmountCents: 100, Month: "2025-08"})
	assertKind(t, err, service.KindValidation)

	_, err = svc.CreatePayment(ctx, service.PaymentInput{StudentID: "missing", AmountCents: 100, Month: "2025-08"})
	assertKind(t, err, service.KindNotFound)
}

func TestSetPaymentPaid(t *testing.T) {
	svc, clk, _ := setup(t)
	ctx := context.Background()
	in := createInstrument(t, svc, "Piano", 1)
	st := createStudent(t, svc, "Ana", in.ID)
	payments, err := svc.ListPayments(ctx, service.PaymentFilter{StudentID: st.ID})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	id := payments[0].ID

	clk.t = clk.t.Add(time.Hour)
	p, err := svc.SetPaymentPaid(ctx, id, boolPtr(true))
	require.NoError(t, err)
	assert.True(t, p.Paid)
	require.NotNil(t, p.PaidOn)
	assert.True(t, p.PaidOn.Equal(clk.t))
	require.NotNil(t, p.Student)
	assert.True(t, p.Student.PaymentCurrent)

	p, err = svc.SetPaymentPaid(ctx, id, boolPtr(false))
	require.NoError(t, err)
	assert.False(t, p.Paid)
	assert.Nil(t, p.PaidOn)

	cur, err := svc.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, cur.PaymentCurrent)
}

func TestSetPaymentPaid_Errors(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.SetPaymentPaid(ctx, "missing", boolPtr(true))
	assertKind(t, err, service.KindNotFound)

	_, err = svc.SetPaymentPaid(ctx, "missing", nil)
	assertKind(t, err, service.KindValidation)
}

// payment_current moves only when a payment's paid flag is updated.
func TestScenario_PaymentCurrentOnUpdateOnly(t *testing.T) {
	svc, _, rec := setup(t)
	ctx := context.Background()
	in := createInstrument(t, svc, "Canto", 10)
	st := createStudent(t, svc, "Ana", in.ID)

	payments, err := svc.ListPayments(ctx, service.PaymentFilter{StudentID: st.ID})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "2025-06", payments[0].Month)
	assert.Equal(t, int64(10000), payments[0].AmountCents)

	_, err = svc.SetPaymentPaid(ctx, payments[0].ID, boolPtr(true))
	require.NoError(t, err)
	cur, err := svc.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, cur.PaymentCurrent)

	july, err := svc.CreatePayment(ctx, service.PaymentInput{StudentID: st.ID, AmountCents: 10000, Month: "2025-07"})
	require.NoError(t, err)
	cur, err = svc.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, cur.PaymentCurrent, "creating a payment must not recompute the flag")

	_, err = svc.SetPaymentPaid(ctx, july.ID, boolPtr(false))
	require.NoError(t, err)
	cur, err = svc.GetStudent(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, cur.PaymentCurrent)

	assert.Contains(t, rec.types(), "payment.status_changed")
	assert.Contains(t, rec.types(), "payment.created")
}

func TestListPayments_FilterAndOrder(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	in := createInstrument(t, svc, "Piano", 5)
	zeca := createStudent(t, svc, "Zeca", in.ID)
	ana := createStudent(t, svc, "Ana", in.ID)
	_, err := svc.CreatePayment(ctx, service.PaymentInput{StudentID: zeca.ID, AmountCents: 100, Month: "2025-07"})
	require.NoError(t, err)

	all, err := svc.ListPayments(ctx, service.PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-07", all[0].Month)
	assert.Equal(t, ana.ID, all[1].StudentID)
	assert.Equal(t, zeca.ID, all[2].StudentID)

	june, err := svc.ListPayments(ctx, service.PaymentFilter{Month: "2025-06"})
	require.NoError(t, err)
	assert.Len(t, june, 2)

	mine, err := svc.ListPayments(ctx, service.PaymentFilter{Month: "2025-06", StudentID: zeca.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, zeca.ID, mine[0].StudentID)

	_, err = svc.ListPayments(ctx, service.PaymentFilter{Month: "junho"})
	assertKind(t, err, service.KindValidation)
}

func TestPaymentReport(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	in := createInstrument(t, svc, "Piano", 5)
	a := createStudent(t, svc, "Ana", in.ID)
	b := createStudent(t, svc, "Bia", in.ID)
	createStudent(t, svc, "Caio", in.ID)
	july, err := svc.CreatePayment(ctx, service.PaymentInput{StudentID: a.ID, AmountCents: 5000, Month: "2025-07"})
	require.NoError(t, err)

	june, err := svc.ListPayments(ctx, service.PaymentFilter{Month: "2025-06", StudentID: b.ID})
	require.NoError(t, err)
	require.Len(t, june, 1)
	_, err = svc.SetPaymentPaid(ctx, june[0].ID, boolPtr(true))
	require.NoError(t, err)
	_, err = svc.SetPaymentPaid(ctx, july.ID, boolPtr(true))
	require.NoError(t, err)

	rep, err := svc.PaymentReport(ctx, service.PaymentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 2, rep.Paid)
	assert.Equal(t, 2, rep.Pending)
	assert.Equal(t, int64(35000), rep.BilledCents)
	assert.Equal(t, int64(15000), rep.ReceivedCents)
	assert.Equal(t, int64(20000), rep.PendingCents)
	assert.Equal(t, 50, rep.ReceiptRate)
	require.Len(t, rep.Months, 2)
	assert.Equal(t, "2025-06", rep.Months[0].Month)
	assert.Equal(t, 3, rep.Months[0].Total)
	assert.Equal(t, 1, rep.Months[0].Paid)
	assert.Equal(t, 33, rep.Months[0].ReceiptRate)
	assert.Equal(t, "2025-07", rep.Months[1].Month)
	assert.Equal(t, 100, rep.Months[1].ReceiptRate)

	empty, err := svc.PaymentReport(ctx, service.PaymentFilter{Month: "2024-01"})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.ReceiptRate)
	assert.Empty(t, empty.Months)
}

// callLog wraps a store and records student locks and unpaid counts in the
// order the service issues them.
type callLog struct {
	repository.Store
	calls []string
}

type loggedStudents struct {
	repository.StudentRepository
	log *callLog
}

func (s loggedStudents) Lock(ctx context.Context, id string) error {
	s.log.calls = append(s.log.calls, "lock "+id)
	return s.StudentRepository.Lock(ctx, id)
}

type loggedPayments struct {
	repository.PaymentRepository
	log *callLog
}

func (p loggedPayments) CountUnpaid(ctx context.Context, studentID string) (int, error) {
	p.log.calls = append(p.log.calls, "count "+studentID)
	return p.PaymentRepository.CountUnpaid(ctx, studentID)
}

func (l *callLog) wrap(r repository.Repositories) repository.Repositories {
	r.Students = loggedStudents{r.Students, l}
	r.Payments = loggedPayments{r.Payments, l}
	return r
}

func (l *callLog) Repos() repository.Repositories { return l.wrap(l.Store.Repos()) }

func (l *callLog) InTx(ctx context.Context, fn func(r repository.Repositories) error) error {
	return l.Store.InTx(ctx, func(r repository.Repositories) error { return fn(l.wrap(r)) })
}

func TestSetPaymentPaid_LocksStudentBeforeCounting(t *testing.T) {
	store := &callLog{Store: memstore.New()}
	svc := service.New(store, service.Options{Location: brt})
	ctx := context.Background()
	in := createInstrument(t, svc, "Piano", 1)
	st := createStudent(t, svc, "Ana", in.ID)
	p, err := svc.CreatePayment(ctx, service.PaymentInput{StudentID: st.ID, AmountCents: 100, Month: "2030-01"})
	require.NoError(t, err)

	store.calls = nil
	_, err = svc.SetPaymentPaid(ctx, p.ID, boolPtr(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"lock " + st.ID, "count " + st.ID}, store.calls)
}
