package intake

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-desk-api/internal/fee"
	"github.com/noah-isme/academy-desk-api/internal/models"
)

func strPtr(s string) *string { return &s }

func pendingFixture() models.PendingStudent {
	return models.PendingStudent{
		ID:          "p1",
		StudentName: "Ayesha Khan",
		ClassID:     strPtr("class-1"),
		SessionID:   strPtr("session-2025"),
		ProposedFee: decimal.NewNullDecimal(decimal.NewFromInt(4500)),
	}
}

func TestApprovalWithoutCollectionSendsZero(t *testing.T) {
	api := newFakeAPI()
	desk := NewApprovalDesk(api.client(t), nil)
	ctx := context.Background()

	desk.Open(ctx, pendingFixture())
	assert.Equal(t, fee.ModeLocked, desk.State().Mode)
	require.NoError(t, desk.SetPaidAmount("2000"))
	desk.SetCollect(false)

	assert.Equal(t, "5000", desk.Balance().String())
	assert.False(t, desk.FullyPaid())

	res, err := desk.Approve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "student-p1", res.Student.ID)
	assert.Equal(t, "ayesha.khan1234", res.Credentials.Username)

	sent := api.approvals["p1"]
	assert.Equal(t, "class-1", sent.ClassID)
	assert.False(t, sent.CollectFee)
	assert.True(t, sent.PaidAmount.IsZero())
	assert.False(t, sent.CustomFee)
	assert.False(t, sent.CustomTotal.Valid)
}

func TestApprovalCollectingFullAmount(t *testing.T) {
	api := newFakeAPI()
	desk := NewApprovalDesk(api.client(t), nil)
	ctx := context.Background()

	desk.Open(ctx, pendingFixture())
	desk.SetCollect(true)
	require.NoError(t, desk.SetPaidAmount("5000"))

	assert.True(t, desk.Balance().IsZero())
	assert.True(t, desk.FullyPaid())

	_, err := desk.Approve(ctx)
	require.NoError(t, err)
	sent := api.approvals["p1"]
	assert.True(t, sent.CollectFee)
	assert.Equal(t, "5000", sent.PaidAmount.String())
}

func TestApprovalCustomTotal(t *testing.T) {
	api := newFakeAPI()
	desk := NewApprovalDesk(api.client(t), nil)
	ctx := context.Background()

	desk.Open(ctx, pendingFixture())
	require.NoError(t, desk.SetCustomFee(true))
	require.NoError(t, desk.SetTotalFee("4000"))
	desk.SetCollect(true)
	require.NoError(t, desk.SetPaidAmount("1000"))

	assert.Equal(t, "1000", desk.State().DiscountAmount.String())
	assert.Equal(t, "3000", desk.Balance().String())

	_, err := desk.Approve(ctx)
	require.NoError(t, err)
	sent := api.approvals["p1"]
	assert.True(t, sent.CustomFee)
	require.True(t, sent.CustomTotal.Valid)
	assert.Equal(t, "4000", sent.CustomTotal.Decimal.String())
}

func TestApprovalManualFeeTravelsAsCustomTotal(t *testing.T) {
	api := newFakeAPI()
	desk := NewApprovalDesk(api.client(t), nil)
	ctx := context.Background()

	p := pendingFixture()
	p.SessionID = nil
	desk.Open(ctx, p)
	assert.Equal(t, fee.ModeManual, desk.State().Mode)
	assert.Equal(t, "4500", desk.Balance().String())
	require.NoError(t, desk.SetTotalFee("4200"))

	req := desk.Request()
	assert.True(t, req.CustomFee)
	assert.Equal(t, "4200", req.CustomTotal.Decimal.String())
	assert.Equal(t, 0, api.priceCallCount(""))
}

func TestApprovalValidatesLocally(t *testing.T) {
	api := newFakeAPI()
	desk := NewApprovalDesk(api.client(t), nil)
	ctx := context.Background()

	p := pendingFixture()
	p.ClassID = nil
	desk.Open(ctx, p)

	_, err := desk.Approve(ctx)
	var verr *fee.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "classId", verr.Field)

	desk.SetClass("class-1")
	desk.SetCollect(true)
	require.NoError(t, desk.SetPaidAmount("6000"))
	_, err = desk.Approve(ctx)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "paidAmount", verr.Field)
	assert.Contains(t, verr.Message, "6000")
	assert.Empty(t, api.approvals)
}

func TestRejectSendsReason(t *testing.T) {
	api := newFakeAPI()
	desk := NewApprovalDesk(api.client(t), nil)
	ctx := context.Background()

	desk.Open(ctx, pendingFixture())
	require.NoError(t, desk.Reject(ctx, "  duplicate registration "))
	assert.Equal(t, "duplicate registration", api.rejections["p1"])
}
