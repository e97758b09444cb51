package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StudentStatus is the enrolment state of an admitted student.
type StudentStatus string

const (
	StudentStatusActive StudentStatus = "active"
)

// FeeStatus summarises collection progress on a student's total fee.
type FeeStatus string

const (
	FeeStatusPaid    FeeStatus = "paid"
	FeeStatusPartial FeeStatus = "partial"
	FeeStatusUnpaid  FeeStatus = "unpaid"
)

// Subject is one enrolled subject. Pricing is session level so Fee is stored as zero.
type Subject struct {
	Name string          `json:"name"`
	Fee  decimal.Decimal `json:"fee"`
}

// SubjectList is persisted as a JSONB array of subjects.
type SubjectList []Subject

// Value marshals the subjects to JSON for persistence.
func (l SubjectList) Value() (driver.Value, error) {
	if l == nil {
		l = SubjectList{}
	}
	data, err := json.Marshal([]Subject(l))
	if err != nil {
		return nil, fmt.Errorf("marshal subjects: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON array of subjects.
func (l *SubjectList) Scan(value interface{}) error {
	data, err := jsonBytes(value, "SubjectList")
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*l = SubjectList{}
		return nil
	}
	var out []Subject
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal subjects: %w", err)
	}
	*l = out
	return nil
}

// SubjectsFromNames builds the stored subject list with a zero fee per subject.
func SubjectsFromNames(names []string) SubjectList {
	out := make(SubjectList, 0, len(names))
	for _, name := range names {
		out = append(out, Subject{Name: name, Fee: decimal.Zero})
	}
	return out
}

// Student is an admitted, active learner.
type Student struct {
	ID             string              `db:"id" json:"_id"`
	StudentName    string              `db:"student_name" json:"studentName"`
	FatherName     string              `db:"father_name" json:"fatherName"`
	Gender         string              `db:"gender" json:"gender"`
	ClassID        string              `db:"class_id" json:"classId"`
	SessionID      *string             `db:"session_id" json:"sessionId,omitempty"`
	Group          string              `db:"group_name" json:"group"`
	Subjects       SubjectList         `db:"subjects" json:"subjects"`
	StudentPhone   string              `db:"student_phone" json:"studentPhone"`
	ParentPhone    string              `db:"parent_phone" json:"parentPhone"`
	Address        string              `db:"address" json:"address"`
	Photo          string              `db:"photo" json:"photo,omitempty"`
	AdmissionDate  time.Time           `db:"admission_date" json:"admissionDate"`
	TotalFee       decimal.Decimal     `db:"total_fee" json:"totalFee"`
	PaidAmount     decimal.Decimal     `db:"paid_amount" json:"paidAmount"`
	DiscountAmount decimal.Decimal     `db:"discount_amount" json:"discountAmount"`
	SessionRate    decimal.NullDecimal `db:"session_rate" json:"sessionRate"`
	FeeStatus      FeeStatus           `db:"fee_status" json:"feeStatus"`
	Status         StudentStatus       `db:"status" json:"status"`
	UserID         *string             `db:"user_id" json:"userId,omitempty"`
	CreatedAt      time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `db:"updated_at" json:"updatedAt"`
}

// Balance returns the outstanding fee, never negative.
func (s Student) Balance() decimal.Decimal {
	b := s.TotalFee.Sub(s.PaidAmount)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassID   string
	SessionID string
	FeeStatus FeeStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentDetail contains a student with class and session names resolved.
type StudentDetail struct {
	Student
	ClassTitle  *string `db:"class_title" json:"classTitle,omitempty"`
	SessionName *string `db:"session_name" json:"sessionName,omitempty"`
}
