package fee

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrFeeLocked is returned when the total fee is edited while it follows the session price.
	ErrFeeLocked = errors.New("total fee follows the session price; enable custom fee to override it")
	// ErrNoSessionPrice is returned when custom mode is requested without a configured session price.
	ErrNoSessionPrice = errors.New("custom fee is only available for sessions with a configured price")
)

// Calculator is the fee-mode state machine behind every admission and approval form.
// Amounts are kept as the raw strings typed by the user so drafts round-trip exactly.
type Calculator struct {
	sessionPrice decimal.NullDecimal
	custom       bool
	totalFee     string
	paidAmount   string
	// restored keeps a restored custom fee through the first session resolution.
	restored bool
}

// NewCalculator returns a calculator in manual mode with empty amounts.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Restore loads previously saved form values. The session price is not part of a draft and
// must be re-resolved through SelectSession.
func (c *Calculator) Restore(totalFee, paidAmount string, custom bool) {
	c.totalFee = totalFee
	c.paidAmount = paidAmount
	c.custom = custom
	c.restored = custom
}

// ClearSession resets the form to the no-session state and clears the total fee.
func (c *Calculator) ClearSession() {
	c.sessionPrice = decimal.NullDecimal{}
	c.custom = false
	c.restored = false
	c.totalFee = ""
}

// SelectSession applies the price resolved for a newly chosen session. A missing or
// non-positive price leaves the form in manual mode with the typed fee untouched.
// Any discount from the previous session is dropped.
func (c *Calculator) SelectSession(price decimal.NullDecimal) {
	restored := c.restored
	c.restored = false
	if !HasSessionPrice(price) {
		c.sessionPrice = decimal.NullDecimal{}
		c.custom = false
		return
	}
	c.sessionPrice = price
	if restored && c.custom {
		return
	}
	c.totalFee = price.Decimal.String()
}

// SetCustom toggles the custom-fee override. Switching it off snaps the fee back to the session price.
func (c *Calculator) SetCustom(on bool) error {
	if !HasSessionPrice(c.sessionPrice) {
		if on {
			return ErrNoSessionPrice
		}
		c.custom = false
		return nil
	}
	c.custom = on
	if !on {
		c.totalFee = c.sessionPrice.Decimal.String()
	}
	return nil
}

// SetTotalFee records a typed total fee. It is rejected while the fee is locked to the session price.
func (c *Calculator) SetTotalFee(raw string) error {
	if c.Mode() == ModeLocked {
		return ErrFeeLocked
	}
	if _, _, err := ParseAmount(raw); err != nil {
		return err
	}
	c.totalFee = raw
	return nil
}

// SetPaidAmount records a typed paid amount.
func (c *Calculator) SetPaidAmount(raw string) error {
	if _, _, err := ParseAmount(raw); err != nil {
		return err
	}
	c.paidAmount = raw
	return nil
}

// Mode returns the current fee mode.
func (c *Calculator) Mode() Mode {
	switch {
	case !HasSessionPrice(c.sessionPrice):
		return ModeManual
	case c.custom:
		return ModeCustom
	default:
		return ModeLocked
	}
}

// Editable reports whether the total fee input accepts edits.
func (c *Calculator) Editable() bool {
	return c.Mode() != ModeLocked
}

// CustomOffered reports whether the custom-fee toggle should be shown.
func (c *Calculator) CustomOffered() bool {
	return HasSessionPrice(c.sessionPrice)
}

// SessionPrice returns the price of the selected session, if any.
func (c *Calculator) SessionPrice() decimal.NullDecimal {
	return c.sessionPrice
}

// Custom reports the raw custom toggle value.
func (c *Calculator) Custom() bool {
	return c.custom
}

// TotalFeeInput returns the total fee exactly as shown in the form.
func (c *Calculator) TotalFeeInput() string {
	return c.totalFee
}

// PaidAmountInput returns the paid amount exactly as shown in the form.
func (c *Calculator) PaidAmountInput() string {
	return c.paidAmount
}

// TotalFeeSet reports whether a total fee has been entered or derived.
func (c *Calculator) TotalFeeSet() bool {
	_, ok, err := ParseAmount(c.totalFee)
	return ok && err == nil
}

// State derives the current fee state. Unparseable inputs count as zero.
func (c *Calculator) State() State {
	total, _, _ := ParseAmount(c.totalFee)
	paid, _, _ := ParseAmount(c.paidAmount)
	return Derive(c.sessionPrice, c.custom, total, paid)
}
