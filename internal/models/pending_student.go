package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingStudent is a registration submitted through the public portal and awaiting staff review.
type PendingStudent struct {
	ID           string              `db:"id" json:"_id"`
	StudentName  string              `db:"student_name" json:"studentName"`
	FatherName   string              `db:"father_name" json:"fatherName"`
	Gender       string              `db:"gender" json:"gender"`
	ClassID      *string             `db:"class_id" json:"classId,omitempty"`
	SessionID    *string             `db:"session_id" json:"sessionId,omitempty"`
	Group        string              `db:"group_name" json:"group"`
	Subjects     StringList          `db:"subjects" json:"subjects"`
	StudentPhone string              `db:"student_phone" json:"studentPhone"`
	ParentPhone  string              `db:"parent_phone" json:"parentPhone"`
	Address      string              `db:"address" json:"address"`
	Photo        string              `db:"photo" json:"photo,omitempty"`
	ProposedFee  decimal.NullDecimal `db:"proposed_fee" json:"proposedFee"`
	CreatedAt    time.Time           `db:"created_at" json:"createdAt"`
}
