package models

import "time"

// SessionStatus is the lifecycle state of an academic session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusUpcoming  SessionStatus = "upcoming"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session is an intake period. Admissions are priced per session.
type Session struct {
	ID        string        `db:"id" json:"_id"`
	Name      string        `db:"name" json:"name"`
	Status    SessionStatus `db:"status" json:"status"`
	StartDate *time.Time    `db:"start_date" json:"startDate,omitempty"`
	EndDate   *time.Time    `db:"end_date" json:"endDate,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	Status SessionStatus
}
