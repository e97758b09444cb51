package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

// SessionRequest creates or updates a session.
type SessionRequest struct {
	Name      string               `json:"name" validate:"required,max=120"`
	Status    models.SessionStatus `json:"status" validate:"required,oneof=active upcoming completed"`
	StartDate *time.Time           `json:"startDate,omitempty"`
	EndDate   *time.Time           `json:"endDate,omitempty"`
}

// ClassRequest creates or updates a class.
type ClassRequest struct {
	Title      string              `json:"title" validate:"required,max=120"`
	Subjects   []string            `json:"subjects" validate:"dive,required"`
	SubjectFee decimal.NullDecimal `json:"subjectFee"`
	Status     models.ClassStatus  `json:"status" validate:"omitempty,oneof=active inactive"`
}
