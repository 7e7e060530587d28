package model

import "time"

// Instrument is a teaching resource with a finite number of units that can
// be assigned to students.  AssignedCount and Available are derived from the
// students table on every read and are never stored.
//
// Fields:
//  ID            – opaque identifier (UUID string).
//  Name          – unique instrument name.
//  Quantity      – total number of units the school owns.
//  AssignedCount – number of students currently assigned.
//  Available     – Quantity minus AssignedCount.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Instrument struct {
    ID            string    `json:"id"`             // instruments.id
    Name          string    `json:"name"`           // instruments.name
    Quantity      int       `json:"quantity"`       // instruments.quantity
    AssignedCount int       `json:"assigned_count"` // COUNT(students)
    Available     int       `json:"available"`      // quantity - assigned_count
    CreatedAt     time.Time `json:"created_at"`     // instruments.created_at
    UpdatedAt     time.Time `json:"updated_at"`     // instruments.updated_at
}

// SetAssigned records the number of assigned students and recomputes
// Available from it.
func (i *Instrument) SetAssigned(n int) {
    i.AssignedCount = n
    i.Available = i.Quantity - n
}
