package model

import (
    "strconv"
    "time"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

// CivilDate is a calendar day.  Its time of day is always midnight in the
// location the day was built in and carries no meaning.
type CivilDate struct {
    time.Time
}

// DayOf truncates t to the start of its calendar day in loc.
func DayOf(t time.Time, loc *time.Location) CivilDate {
    if loc == nil {
        loc = time.UTC
    }
    t = t.In(loc)
    return CivilDate{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)}
}

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (CivilDate, error) {
    if loc == nil {
        loc = time.UTC
    }
    t, err := time.ParseInLocation(DateLayout, s, loc)
    if err != nil {
        return CivilDate{}, err
    }
    return CivilDate{t}, nil
}

// Next returns the following calendar day.
func (d CivilDate) Next() CivilDate { return CivilDate{d.AddDate(0, 0, 1)} }

// Equal reports whether both values denote the same calendar day.
func (d CivilDate) Equal(o CivilDate) bool {
    y1, m1, d1 := d.Date()
    y2, m2, d2 := o.Date()
    return y1 == y2 && m1 == m2 && d1 == d2
}

func (d CivilDate) String() string { return d.Format(DateLayout) }

func (d CivilDate) MarshalJSON() ([]byte, error) {
    return []byte(strconv.Quote(d.String())), nil
}

func (d *CivilDate) UnmarshalJSON(b []byte) error {
    s, err := strconv.Unquote(string(b))
    if err != nil {
        return err
    }
    parsed, err := ParseDate(s, time.UTC)
    if err != nil {
        return err
    }
    *d = parsed
    return nil
}

// Attendance marks whether a student was present on a calendar day.  There
// is at most one row per (StudentID, Date).
type Attendance struct {
    ID        string    `json:"id"`                // attendance.id
    StudentID string    `json:"student_id"`        // attendance.student_id
    Date      CivilDate `json:"date"`              // attendance.date
    Present   bool      `json:"present"`           // attendance.present
    CreatedAt time.Time `json:"created_at"`        // attendance.created_at
    Student   *Student  `json:"student,omitempty"` // joined student with instrument
}
