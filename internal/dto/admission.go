package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

// CreateAdmissionRequest is the normalized admission payload posted to POST /students.
type CreateAdmissionRequest struct {
	StudentName           string              `json:"studentName" validate:"required"`
	FatherName            string              `json:"fatherName" validate:"required"`
	Gender                string              `json:"gender"`
	ClassID               string              `json:"classId" validate:"required"`
	SessionID             string              `json:"sessionId,omitempty"`
	Group                 string              `json:"group" validate:"required"`
	Subjects              []models.Subject    `json:"subjects"`
	StudentPhone          string              `json:"studentPhone"`
	ParentPhone           string              `json:"parentPhone" validate:"required"`
	Address               string              `json:"address"`
	AdmissionDate         string              `json:"admissionDate,omitempty"`
	TotalFee              decimal.Decimal     `json:"totalFee"`
	PaidAmount            decimal.Decimal     `json:"paidAmount"`
	DiscountAmount        decimal.Decimal     `json:"discountAmount"`
	SessionRate           decimal.NullDecimal `json:"sessionRate"`
	IsCustomFeeMode       bool                `json:"isCustomFeeMode"`
	Photo                 string              `json:"photo,omitempty"`
	PendingRegistrationID string              `json:"pendingRegistrationId,omitempty"`
}

// CollectPaymentRequest records a post-admission installment.
type CollectPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" validate:"max=255"`
}

// CollectPaymentResponse returns the payment with the updated student.
type CollectPaymentResponse struct {
	Payment models.FeePayment `json:"payment"`
	Student models.Student    `json:"student"`
}
