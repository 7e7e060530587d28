package model

// PaymentReport summarises a set of payments for display.
type PaymentReport struct {
    Total         int            `json:"total"`
    Paid          int            `json:"paid"`
    Pending       int            `json:"pending"`
    BilledCents   int64          `json:"billed_cents"`
    ReceivedCents int64          `json:"received_cents"`
    PendingCents  int64          `json:"pending_cents"`
    ReceiptRate   int            `json:"receipt_rate"` // percent of payments paid, rounded
    Months        []MonthSummary `json:"months"`
}

// MonthSummary is the per-month slice of a PaymentReport.  Months are
// ordered ascending.
type MonthSummary struct {
    Month         string `json:"month"`
    Total         int    `json:"total"`
    Paid          int    `json:"paid"`
    ReceivedCents int64  `json:"received_cents"`
    ReceiptRate   int    `json:"receipt_rate"`
}

// AttendanceReport summarises a set of attendance marks.  Rates are percent
// of classes attended, rounded, and 0 when there are no classes.
type AttendanceReport struct {
    Classes  int                 `json:"classes"`
    Present  int                 `json:"present"`
    Absent   int                 `json:"absent"`
    Rate     int                 `json:"attendance_rate"`
    Students []StudentAttendance `json:"students"`
}

// StudentAttendance is one student's slice of an AttendanceReport.
// Students are ordered by name.
type StudentAttendance struct {
    StudentID   string `json:"student_id"`
    StudentName string `json:"student_name"`
    Classes     int    `json:"classes"`
    Present     int    `json:"present"`
    Absent      int    `json:"absent"`
    Rate        int    `json:"attendance_rate"`
}
