package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/music-school-admin/internal/handler"
	"github.com/iliyamo/music-school-admin/internal/model"
	"github.com/iliyamo/music-school-admin/internal/repository/memstore"
	"github.com/iliyamo/music-school-admin/internal/router"
	"github.com/iliyamo/music-school-admin/internal/service"
)

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) *echo.Echo {
	t.Helper()
	svc := service.New(memstore.New(), service.Options{
		Location: time.FixedZone("BRT", -3*60*60),
		Now:      func() time.Time { return now },
	})
	e := echo.New()
	router.RegisterRoutes(e, nil)
	router.RegisterSchool(e, handler.NewSchoolHandler(svc))
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	buf.WriteString(body)
	req := httptest.NewRequest(method, path, &buf)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, rec, &body)
	return body["error"]
}

func mustCreate(t *testing.T, e *echo.Echo, path, body string, v any) {
	t.Helper()
	rec := do(e, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	decode(t, rec, v)
}

func TestHealth(t *testing.T) {
	e := setup(t)
	rec := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(e, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingDB struct{}

func (failingDB) PingContext(context.Context) error { return errDown }

func TestReady_DatabaseDown(t *testing.T) {
	e := echo.New()
	e.GET("/readyz", handler.Ready(failingDB{}))
	rec := do(e, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInstrumentRoutes(t *testing.T) {
	e := setup(t)

	var piano model.Instrument
	mustCreate(t, e, "/v1/instruments", `{"name":"Piano","quantity":1}`, &piano)
	assert.Equal(t, 1, piano.Available)

	rec := do(e, http.MethodPost, "/v1/instruments", `{"name":"Piano","quantity":2}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Já existe um instrumento com este nome", errorOf(t, rec))

	rec = do(e, http.MethodPost, "/v1/instruments", `{"name":"","quantity":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/instruments", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Corpo da requisição inválido", errorOf(t, rec))

	// updates replace the whole resource; partial PATCH is not routed
	rec = do(e, http.MethodPatch, "/v1/instruments/"+piano.ID, `{"quantity":3}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(e, http.MethodPut, "/v1/instruments/"+piano.ID, `{"name":"Piano de cauda","quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Instrument
	decode(t, rec, &updated)
	assert.Equal(t, 3, updated.Available)

	rec = do(e, http.MethodGet, "/v1/instruments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Instrument
	decode(t, rec, &list)
	require.Len(t, list, 1)

	rec = do(e, http.MethodGet, "/v1/instruments/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/v1/instruments/"+piano.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodDelete, "/v1/instruments/"+piano.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentRoutes_Capacity(t *testing.T) {
	e := setup(t)
	var violao model.Instrument
	mustCreate(t, e, "/v1/instruments", `{"name":"Violão","quantity":1}`, &violao)

	var a model.Student
	mustCreate(t, e, "/v1/students", `{"name":"Aluno A","age":12,"instrument_id":"`+violao.ID+`"}`, &a)
	require.NotNil(t, a.Instrument)
	assert.Equal(t, 0, a.Instrument.Available)

	rec := do(e, http.MethodPost, "/v1/students", `{"name":"Aluno B","age":11,"instrument_id":"`+violao.ID+`"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Este instrumento não está mais disponível", errorOf(t, rec))

	rec = do(e, http.MethodPut, "/v1/instruments/"+violao.ID, `{"name":"Violão","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodDelete, "/v1/instruments/"+violao.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodDelete, "/v1/students/"+a.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var msg map[string]string
	decode(t, rec, &msg)
	assert.Equal(t, "Aluno excluído com sucesso", msg["message"])

	var b model.Student
	mustCreate(t, e, "/v1/students", `{"name":"Aluno B","age":11,"instrument_id":"`+violao.ID+`"}`, &b)

	rec = do(e, http.MethodGet, "/v1/students/"+b.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(e, http.MethodPut, "/v1/students/missing", `{"name":"X","age":1,"instrument_id":"`+violao.ID+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(e, http.MethodPost, "/v1/students", `{"name":"C","age":1,"instrument_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentRoutes(t *testing.T) {
	e := setup(t)
	var in model.Instrument
	mustCreate(t, e, "/v1/instruments", `{"name":"Piano","quantity":3}`, &in)
	var st model.Student
	mustCreate(t, e, "/v1/students", `{"name":"Ana","age":12,"instrument_id":"`+in.ID+`"}`, &st)

	rec := do(e, http.MethodGet, "/v1/payments?student_id="+st.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payments []model.Payment
	decode(t, rec, &payments)
	require.Len(t, payments, 1)
	assert.Equal(t, "2025-06", payments[0].Month)

	rec = do(e, http.MethodPut, "/v1/payments/"+payments[0].ID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPut, "/v1/payments/"+payments[0].ID, `{"paid":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var paid model.Payment
	decode(t, rec, &paid)
	assert.True(t, paid.Paid)
	assert.NotNil(t, paid.PaidOn)
	require.NotNil(t, paid.Student)
	assert.True(t, paid.Student.PaymentCurrent)

	rec = do(e, http.MethodPut, "/v1/payments/missing", `{"paid":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/v1/payments", `{"student_id":"`+st.ID+`","amount_cents":10000,"month":"2025-06"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/v1/payments", `{"student_id":"`+st.ID+`","amount_cents":10000,"month":"2025/07"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Mês deve estar no formato AAAA-MM", errorOf(t, rec))

	var july model.Payment
	mustCreate(t, e, "/v1/payments", `{"student_id":"`+st.ID+`","amount_cents":10000,"month":"2025-07"}`, &july)

	rec = do(e, http.MethodGet, "/v1/payments?month=julho", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/v1/payments/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep model.PaymentReport
	decode(t, rec, &rep)
	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 1, rep.Paid)
	assert.Equal(t, 50, rep.ReceiptRate)
}

func TestAttendanceRoutes(t *testing.T) {
	e := setup(t)
	var in model.Instrument
	mustCreate(t, e, "/v1/instruments", `{"name":"Piano","quantity":3}`, &in)
	var st model.Student
	mustCreate(t, e, "/v1/students", `{"name":"Ana","age":12,"instrument_id":"`+in.ID+`"}`, &st)

	// no date: today in the school zone
	var first model.Attendance
	mustCreate(t, e, "/v1/attendance", `{"student_id":"`+st.ID+`","present":true}`, &first)
	assert.Equal(t, "2025-06-15", first.Date.String())

	rec := do(e, http.MethodPost, "/v1/attendance", `{"student_id":"`+st.ID+`","present":false,"date":"2025-06-15"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second model.Attendance
	decode(t, rec, &second)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Present)

	rec = do(e, http.MethodPost, "/v1/attendance", `{"student_id":"`+st.ID+`","present":true,"date":"15/06/2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPost, "/v1/attendance", `{"student_id":"`+st.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPost, "/v1/attendance", `{"student_id":"missing","present":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/v1/attendance?date=2025-06-15&student_id="+st.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []model.Attendance
	decode(t, rec, &rows)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Student)
	assert.Equal(t, "Ana", rows[0].Student.Name)

	rec = do(e, http.MethodGet, "/v1/attendance?date=ontem", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceReportRoute(t *testing.T) {
	e := setup(t)
	var in model.Instrument
	mustCreate(t, e, "/v1/instruments", `{"name":"Piano","quantity":3}`, &in)
	var ana, bia model.Student
	mustCreate(t, e, "/v1/students", `{"name":"Ana","age":12,"instrument_id":"`+in.ID+`"}`, &ana)
	mustCreate(t, e, "/v1/students", `{"name":"Bia","age":10,"instrument_id":"`+in.ID+`"}`, &bia)

	for _, body := range []string{
		`{"student_id":"` + ana.ID + `","present":true,"date":"2025-06-02"}`,
		`{"student_id":"` + ana.ID + `","present":true,"date":"2025-06-09"}`,
		`{"student_id":"` + ana.ID + `","present":false,"date":"2025-06-16"}`,
		`{"student_id":"` + bia.ID + `","present":false,"date":"2025-06-02"}`,
		`{"student_id":"` + ana.ID + `","present":true,"date":"2025-07-07"}`,
	} {
		rec := do(e, http.MethodPost, "/v1/attendance", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(e, http.MethodGet, "/v1/attendance/report?month=2025-06", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep model.AttendanceReport
	decode(t, rec, &rep)
	assert.Equal(t, 4, rep.Classes)
	assert.Equal(t, 2, rep.Present)
	assert.Equal(t, 2, rep.Absent)
	assert.Equal(t, 50, rep.Rate)
	require.Len(t, rep.Students, 2)
	assert.Equal(t, "Ana", rep.Students[0].StudentName)
	assert.Equal(t, 67, rep.Students[0].Rate)
	assert.Equal(t, "Bia", rep.Students[1].StudentName)
	assert.Equal(t, 0, rep.Students[1].Rate)

	rec = do(e, http.MethodGet, "/v1/attendance?month=2025-07", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var july []model.Attendance
	decode(t, rec, &july)
	require.Len(t, july, 1)
	assert.Equal(t, "2025-07-07", july[0].Date.String())

	rec = do(e, http.MethodGet, "/v1/attendance/report?month=2025-08&student_id="+bia.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var empty model.AttendanceReport
	decode(t, rec, &empty)
	assert.Equal(t, 0, empty.Classes)
	assert.Equal(t, 0, empty.Rate)
	assert.Empty(t, empty.Students)

	rec = do(e, http.MethodGet, "/v1/attendance/report?month=junho", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Mês deve estar no formato AAAA-MM", errorOf(t, rec))
}

func TestNewSchoolHandler_PanicsWithoutService(t *testing.T) {
	assert.Panics(t, func() { handler.NewSchoolHandler(nil) })
}

var errDown = errors.New("connection refused")
