package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassStatus marks whether a class accepts admissions.
type ClassStatus string

const (
	ClassStatusActive   ClassStatus = "active"
	ClassStatusInactive ClassStatus = "inactive"
)

// Class is a course offered by the academy. Fee logic only reads it.
type Class struct {
	ID         string              `db:"id" json:"_id"`
	Title      string              `db:"title" json:"title"`
	Subjects   StringList          `db:"subjects" json:"subjects"`
	SubjectFee decimal.NullDecimal `db:"subject_fee" json:"subjectFee"`
	Status     ClassStatus         `db:"status" json:"status"`
	CreatedAt  time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updatedAt"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Status ClassStatus
	Search string
}
