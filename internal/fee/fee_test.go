package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestDeriveLockedFollowsSessionPrice(t *testing.T) {
	for _, p := range []int64{1, 250, 5000, 123456} {
		state := Derive(price(p), false, amount(99), amount(0))
		assert.Equal(t, ModeLocked, state.Mode)
		assert.True(t, state.TotalFee.Equal(amount(p)))
		assert.True(t, state.IsSessionPriceMode)
		assert.False(t, state.IsCustomFeeMode)
		assert.True(t, state.DiscountAmount.IsZero())
	}
}

func TestDeriveCustomComputesDiscount(t *testing.T) {
	cases := []struct {
		price, total, discount int64
	}{
		{5000, 4000, 1000},
		{5000, 5000, 0},
		{5000, 6000, 0},
		{3000, 0, 3000},
	}
	for _, tc := range cases {
		state := Derive(price(tc.price), true, amount(tc.total), amount(0))
		assert.Equal(t, ModeCustom, state.Mode)
		assert.Equal(t, amount(tc.discount).String(), state.DiscountAmount.String())
	}
}

func TestDeriveManualIgnoresCustomFlag(t *testing.T) {
	state := Derive(decimal.NullDecimal{}, true, amount(2500), amount(500))
	assert.Equal(t, ModeManual, state.Mode)
	assert.False(t, state.IsCustomFeeMode)
	assert.Equal(t, "2500", state.TotalFee.String())
	assert.True(t, state.DiscountAmount.IsZero())
	assert.Equal(t, "2000", state.Balance.String())

	state = Derive(price(0), false, amount(700), amount(0))
	assert.Equal(t, ModeManual, state.Mode)
}

func TestBalanceNeverNegative(t *testing.T) {
	for total := int64(0); total <= 50; total += 10 {
		for paid := int64(0); paid <= 60; paid += 15 {
			b := Balance(amount(total), amount(paid))
			assert.False(t, b.IsNegative())
			if total > paid {
				assert.Equal(t, amount(total-paid).String(), b.String())
			} else {
				assert.True(t, b.IsZero())
			}
		}
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusPaid, StatusOf(amount(100), amount(100)))
	assert.Equal(t, StatusPartial, StatusOf(amount(100), amount(40)))
	assert.Equal(t, StatusUnpaid, StatusOf(amount(100), amount(0)))
	assert.Equal(t, StatusUnpaid, StatusOf(amount(0), amount(0)))
}

func TestParseAmount(t *testing.T) {
	v, ok, err := ParseAmount(" 4000 ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4000", v.String())

	_, ok, err = ParseAmount("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = ParseAmount("abc")
	require.Error(t, err)

	_, _, err = ParseAmount("-1")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestValidateAdmission(t *testing.T) {
	valid := AdmissionCheck{
		StudentName: "Ayesha Khan",
		FatherName:  "Imran Khan",
		ClassID:     "class-1",
		Group:       "Science",
		ParentPhone: "03001234567",
		TotalFee:    price(3000),
		PaidAmount:  amount(1000),
	}
	require.NoError(t, ValidateAdmission(valid))

	missing := valid
	missing.Group = "  "
	err := ValidateAdmission(missing)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "group", vErr.Field)

	noFee := valid
	noFee.TotalFee = decimal.NullDecimal{}
	require.ErrorAs(t, ValidateAdmission(noFee), &vErr)
	assert.Equal(t, "totalFee", vErr.Field)

	over := valid
	over.PaidAmount = amount(3500)
	require.ErrorAs(t, ValidateAdmission(over), &vErr)
	assert.Equal(t, "paidAmount", vErr.Field)
	assert.Contains(t, vErr.Message, "3500")
	assert.Contains(t, vErr.Message, "3000")

	zero := valid
	zero.PaidAmount = decimal.Zero
	require.ErrorAs(t, ValidateAdmission(zero), &vErr)
	assert.Equal(t, "paidAmount", vErr.Field)
	assert.Contains(t, vErr.Message, "inactive")
}

func TestApprovalAmountsDeclinedCollection(t *testing.T) {
	a := ApprovalAmounts(amount(5000), false, amount(2000))
	assert.True(t, a.PaidAmount.IsZero())
	assert.Equal(t, "5000", a.Balance.String())
	assert.False(t, a.FullyPaid)

	a = ApprovalAmounts(amount(5000), true, amount(5000))
	assert.Equal(t, "5000", a.PaidAmount.String())
	assert.True(t, a.FullyPaid)
}

func TestValidateApproval(t *testing.T) {
	require.NoError(t, ValidateApproval(ApprovalAmounts(amount(100), true, amount(100))))
	require.Error(t, ValidateApproval(ApprovalAmounts(amount(0), false, amount(0))))
	require.Error(t, ValidateApproval(ApprovalAmounts(amount(100), true, amount(150))))
}

func TestValidateCollection(t *testing.T) {
	require.NoError(t, ValidateCollection(amount(500), amount(500)))
	require.Error(t, ValidateCollection(amount(500), amount(0)))
	require.Error(t, ValidateCollection(amount(0), amount(10)))
	err := ValidateCollection(amount(500), amount(600))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "600")
}
