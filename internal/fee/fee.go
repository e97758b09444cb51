// Package fee holds the admission fee rules shared by the API and the front-desk client.
// Nothing in here performs I/O.
package fee

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode identifies which fee-entry regime a form is in.
type Mode string

const (
	// ModeManual applies when no session price is configured; the fee is typed by hand.
	ModeManual Mode = "manual"
	// ModeLocked forces the total fee to the configured session price.
	ModeLocked Mode = "locked"
	// ModeCustom lets staff override the session price, turning the gap into a discount.
	ModeCustom Mode = "custom"
)

// PaymentStatus summarises how much of a total fee has been collected.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusUnpaid  PaymentStatus = "unpaid"
)

// ErrNegativeAmount is returned when a money input is below zero.
var ErrNegativeAmount = errors.New("amount cannot be negative")

// State is the derived fee view of a form. It is never persisted.
type State struct {
	SessionPrice       decimal.NullDecimal `json:"sessionPrice"`
	IsSessionPriceMode bool                `json:"isSessionPriceMode"`
	IsCustomFeeMode    bool                `json:"isCustomFeeMode"`
	TotalFee           decimal.Decimal     `json:"totalFee"`
	PaidAmount         decimal.Decimal     `json:"paidAmount"`
	DiscountAmount     decimal.Decimal     `json:"discountAmount"`
	Balance            decimal.Decimal     `json:"balance"`
	Mode               Mode                `json:"mode"`
}

// HasSessionPrice reports whether price carries a usable configured price.
func HasSessionPrice(price decimal.NullDecimal) bool {
	return price.Valid && price.Decimal.IsPositive()
}

// Derive computes the fee state from the session price, the custom toggle and the typed amounts.
// Custom mode is ignored without a session price.
func Derive(sessionPrice decimal.NullDecimal, customMode bool, manualTotal, paid decimal.Decimal) State {
	state := State{
		SessionPrice: sessionPrice,
		PaidAmount:   paid,
	}
	switch {
	case !HasSessionPrice(sessionPrice):
		state.Mode = ModeManual
		state.TotalFee = manualTotal
	case customMode:
		state.Mode = ModeCustom
		state.IsSessionPriceMode = true
		state.IsCustomFeeMode = true
		state.TotalFee = manualTotal
	default:
		state.Mode = ModeLocked
		state.IsSessionPriceMode = true
		state.TotalFee = sessionPrice.Decimal
	}
	state.DiscountAmount = Discount(sessionPrice, state.TotalFee, state.IsCustomFeeMode)
	state.Balance = Balance(state.TotalFee, paid)
	return state
}

// Balance returns max(0, total - paid).
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	return nonNegative(total.Sub(paid))
}

// Discount returns max(0, sessionPrice - total) in custom mode with a session price, zero otherwise.
func Discount(sessionPrice decimal.NullDecimal, total decimal.Decimal, customMode bool) decimal.Decimal {
	if !customMode || !HasSessionPrice(sessionPrice) {
		return decimal.Zero
	}
	return nonNegative(sessionPrice.Decimal.Sub(total))
}

// StatusOf classifies a total/paid pair.
func StatusOf(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case total.IsPositive() && paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusUnpaid
	}
}

// ParseAmount parses a form money field. An empty field yields (0, false, nil).
func ParseAmount(raw string) (decimal.Decimal, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	if amount.IsNegative() {
		return decimal.Zero, false, ErrNegativeAmount
	}
	return amount, true, nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
