// Package queue defines the domain events published to the message broker
// and the consumer that records them.
package queue

// Event types.
const (
	EventInstrumentCreated    = "instrument.created"
	EventInstrumentUpdated    = "instrument.updated"
	EventInstrumentRemoved    = "instrument.removed"
	EventStudentEnrolled      = "student.enrolled"
	EventStudentUpdated       = "student.updated"
	EventStudentRemoved       = "student.removed"
	EventPaymentCreated       = "payment.created"
	EventPaymentStatusChanged = "payment.status_changed"
	EventAttendanceMarked     = "attendance.marked"
)

// Event is published after a write commits.  It carries identifiers only,
// plus a short human-readable Detail, so consumers never need the primary
// database to log or notify.
type Event struct {
	Type         string `json:"type"`
	OccurredAt   string `json:"occurred_at"`
	InstrumentID string `json:"instrument_id,omitempty"`
	StudentID    string `json:"student_id,omitempty"`
	PaymentID    string `json:"payment_id,omitempty"`
	AttendanceID string `json:"attendance_id,omitempty"`
	Month        string `json:"month,omitempty"`
	Date         string `json:"date,omitempty"`
	Paid         *bool  `json:"paid,omitempty"`
	Present      *bool  `json:"present,omitempty"`
	Detail       string `json:"detail,omitempty"`
}
