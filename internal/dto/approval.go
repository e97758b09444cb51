package dto

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

// RegisterRequest is the public portal self-registration payload.
type RegisterRequest struct {
	StudentName  string              `json:"studentName" validate:"required,max=120"`
	FatherName   string              `json:"fatherName" validate:"required,max=120"`
	Gender       string              `json:"gender" validate:"omitempty,oneof=male female other"`
	ClassID      *string             `json:"classId,omitempty"`
	SessionID    *string             `json:"sessionId,omitempty"`
	Group        string              `json:"group" validate:"max=60"`
	Subjects     []string            `json:"subjects" validate:"dive,required"`
	StudentPhone string              `json:"studentPhone" validate:"max=30"`
	ParentPhone  string              `json:"parentPhone" validate:"required,max=30"`
	Address      string              `json:"address" validate:"max=255"`
	Photo        string              `json:"photo,omitempty"`
	ProposedFee  decimal.NullDecimal `json:"proposedFee"`
}

// ApproveRequest is the verification hub approval body.
type ApproveRequest struct {
	ClassID     string              `json:"classId" validate:"required"`
	CollectFee  bool                `json:"collectFee"`
	PaidAmount  decimal.Decimal     `json:"paidAmount"`
	CustomFee   bool                `json:"customFee"`
	CustomTotal decimal.NullDecimal `json:"customTotal"`
}

// Credentials are the login details minted for an approved student. The password is only ever
// returned once.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ApproveResponse returns the admitted student and their credentials.
type ApproveResponse struct {
	Student     models.Student `json:"student"`
	Credentials Credentials    `json:"credentials"`
}

// RejectRequest carries the optional rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
