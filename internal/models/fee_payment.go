package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeePayment is one installment collected against a student's fee.
type FeePayment struct {
	ID          string          `db:"id" json:"_id"`
	StudentID   string          `db:"student_id" json:"studentId"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	CollectedBy *string         `db:"collected_by" json:"collectedBy,omitempty"`
	Note        string          `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
