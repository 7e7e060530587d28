package model

import "time"

// Student is a learner enrolled against exactly one instrument.
//
// PaymentCurrent is a cached flag: it is true when the student had no unpaid
// payment the last time a payment's paid status changed.  It is not the
// source of truth for outstanding balances.
type Student struct {
    ID              string      `json:"id"`                    // students.id
    Name            string      `json:"name"`                  // students.name
    Age             int         `json:"age"`                   // students.age
    InstrumentID    string      `json:"instrument_id"`         // students.instrument_id
    PaymentCurrent  bool        `json:"payment_current"`       // students.payment_current
    AttendanceCount int         `json:"attendance_count"`      // COUNT(attendance WHERE present)
    CreatedAt       time.Time   `json:"created_at"`            // students.created_at
    UpdatedAt       time.Time   `json:"updated_at"`            // students.updated_at
    Instrument      *Instrument `json:"instrument,omitempty"`  // joined instrument
}
