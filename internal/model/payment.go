package model

import (
    "regexp"
    "time"
)

// MonthLayout is the layout of year-month tokens such as "2025-06".
const MonthLayout = "2006-01"

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidMonth reports whether s is a well-formed YYYY-MM token.
func ValidMonth(s string) bool { return monthRe.MatchString(s) }

// MonthOf returns the year-month token of t in loc.
func MonthOf(t time.Time, loc *time.Location) string {
    if loc == nil {
        loc = time.UTC
    }
    return t.In(loc).Format(MonthLayout)
}

// Payment is the monthly billing record of a student.  There is at most
// one payment per (StudentID, Month).
//
// Fields:
//  AmountCents – billed amount in cents.
//  Month       – YYYY-MM token of the billed month.
//  PaidOn      – set when Paid becomes true, cleared when it becomes false.
type Payment struct {
    ID          string     `json:"id"`                // payments.id
    StudentID   string     `json:"student_id"`        // payments.student_id
    AmountCents int64      `json:"amount_cents"`      // payments.amount_cents
    Month       string     `json:"month"`             // payments.month
    Paid        bool       `json:"paid"`              // payments.paid
    PaidOn      *time.Time `json:"paid_on"`           // payments.paid_on (nullable)
    CreatedAt   time.Time  `json:"created_at"`        // payments.created_at
    UpdatedAt   time.Time  `json:"updated_at"`        // payments.updated_at
    Student     *Student   `json:"student,omitempty"` // joined student with instrument
}
