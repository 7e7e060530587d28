package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	paid := true
	line := formatLine(Event{
		Type:       EventPaymentStatusChanged,
		OccurredAt: "2025-06-15T12:00:00Z",
		StudentID:  "s1",
		PaymentID:  "p1",
		Month:      "2025-06",
		Paid:       &paid,
	})
	assert.Equal(t, "[2025-06-15T12:00:00Z] payment.status_changed | student_id=s1 | payment_id=p1 | month=2025-06 | paid=true\n", line)

	line = formatLine(Event{Type: EventStudentEnrolled, OccurredAt: "t", StudentID: "s1", Detail: "Ana Maria"})
	assert.Equal(t, "[t] student.enrolled | student_id=s1 | detail=\"Ana Maria\"\n", line)
}

func TestHandleMessage_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	present := false
	for _, ev := range []Event{
		{Type: EventAttendanceMarked, OccurredAt: "t1", AttendanceID: "a1", Date: "2025-06-15", Present: &present},
		{Type: EventInstrumentRemoved, OccurredAt: "t2", InstrumentID: "i1"},
	} {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, handleMessage(dir, body))
	}

	bs, err := os.ReadFile(filepath.Join(dir, EventLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(bs), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[t1] attendance.marked | attendance_id=a1 | date=2025-06-15 | present=false", lines[0])
	assert.Equal(t, "[t2] instrument.removed | instrument_id=i1", lines[1])
}

func TestHandleMessage_Rejects(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, handleMessage(dir, []byte("not json")))
	assert.Error(t, handleMessage(dir, []byte(`{"student_id":"s1"}`)))
	_, err := os.Stat(filepath.Join(dir, EventLogFile))
	assert.True(t, os.IsNotExist(err))
}
