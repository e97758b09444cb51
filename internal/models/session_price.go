package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionPrice is the fixed admission fee configured by the owner for one session.
type SessionPrice struct {
	SessionID   string          `db:"session_id" json:"sessionId"`
	SessionName string          `db:"session_name" json:"sessionName,omitempty"`
	Price       decimal.Decimal `db:"price" json:"price"`
	UpdatedBy   *string         `db:"updated_by" json:"updatedBy,omitempty"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}
