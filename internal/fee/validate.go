package fee

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError is a submission failure scoped to one form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FieldName implements the field-scoped error contract of pkg/errors.
func (e *ValidationError) FieldName() string {
	return e.Field
}

func fieldError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AdmissionCheck carries the inputs checked before a new admission is submitted.
type AdmissionCheck struct {
	StudentName string
	FatherName  string
	ClassID     string
	Group       string
	ParentPhone string
	TotalFee    decimal.NullDecimal
	PaidAmount  decimal.Decimal
}

// ValidateAdmission applies the submission rules for a new active admission and returns the
// first failing field.
//
// A zero initial payment is rejected. The message points at an inactive admission status that
// this system does not offer yet.
func ValidateAdmission(in AdmissionCheck) error {
	required := []struct {
		field, label, value string
	}{
		{"studentName", "Student name", in.StudentName},
		{"fatherName", "Father's name", in.FatherName},
		{"classId", "Class", in.ClassID},
		{"group", "Group", in.Group},
		{"parentPhone", "Parent phone", in.ParentPhone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fieldError(r.field, "%s is required", r.label)
		}
	}
	if !in.TotalFee.Valid || !in.TotalFee.Decimal.IsPositive() {
		return fieldError("totalFee", "Total fee must be greater than 0")
	}
	if in.PaidAmount.IsNegative() {
		return fieldError("paidAmount", "Paid amount cannot be negative")
	}
	if in.PaidAmount.GreaterThan(in.TotalFee.Decimal) {
		return fieldError("paidAmount", "Paid amount (%s) cannot exceed total fee (%s)", in.PaidAmount.String(), in.TotalFee.Decimal.String())
	}
	if in.PaidAmount.IsZero() {
		return fieldError("paidAmount", "An initial payment is required for an active admission. Use an inactive status to admit without payment.")
	}
	return nil
}

// Approval is the fee outcome of approving a pending registration.
type Approval struct {
	TotalFee   decimal.Decimal `json:"totalFee"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Balance    decimal.Decimal `json:"balance"`
	FullyPaid  bool            `json:"fullyPaid"`
}

// ApprovalAmounts resolves the paid amount and balance at approval time. When collection is
// declined the paid amount is zero whatever was typed.
func ApprovalAmounts(total decimal.Decimal, collect bool, paid decimal.Decimal) Approval {
	if !collect {
		paid = decimal.Zero
	}
	balance := Balance(total, paid)
	return Approval{
		TotalFee:   total,
		PaidAmount: paid,
		Balance:    balance,
		FullyPaid:  balance.IsZero(),
	}
}

// ValidateApproval checks the amounts of an approval before it is persisted.
func ValidateApproval(a Approval) error {
	if !a.TotalFee.IsPositive() {
		return fieldError("customTotal", "Total fee must be greater than 0")
	}
	if a.PaidAmount.IsNegative() {
		return fieldError("paidAmount", "Paid amount cannot be negative")
	}
	if a.PaidAmount.GreaterThan(a.TotalFee) {
		return fieldError("paidAmount", "Paid amount (%s) cannot exceed total fee (%s)", a.PaidAmount.String(), a.TotalFee.String())
	}
	return nil
}

// ValidateCollection checks a post-admission payment against the outstanding balance.
func ValidateCollection(balance, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fieldError("amount", "Payment amount must be greater than 0")
	}
	if !balance.IsPositive() {
		return fieldError("amount", "Fee is already fully paid")
	}
	if amount.GreaterThan(balance) {
		return fieldError("amount", "Payment (%s) exceeds outstanding balance (%s)", amount.String(), balance.String())
	}
	return nil
}
