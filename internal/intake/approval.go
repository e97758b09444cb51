package intake

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/fee"
	"github.com/noah-isme/academy-desk-api/internal/models"
)

type approvalClient interface {
	priceFetcher
	Approve(ctx context.Context, pendingID string, req dto.ApproveRequest) (*dto.ApproveResponse, error)
	Reject(ctx context.Context, pendingID, reason string) error
}

// ApprovalDesk is the verification hub form for one pending registration. Collecting payment
// is toggled independently of the fee mode.
type ApprovalDesk struct {
	mu      sync.Mutex
	client  approvalClient
	prices  *SessionPriceResolver
	logger  *zap.Logger
	calc    *fee.Calculator
	pending models.PendingStudent
	classID string
	collect bool
}

// NewApprovalDesk builds an approval form with nothing loaded.
func NewApprovalDesk(client approvalClient, logger *zap.Logger) *ApprovalDesk {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalDesk{
		client: client,
		prices: NewSessionPriceResolver(client, logger),
		logger: logger,
		calc:   fee.NewCalculator(),
	}
}

// Open loads a pending registration. The proposed fee seeds the total until a session price
// takes over.
func (d *ApprovalDesk) Open(ctx context.Context, p models.PendingStudent) {
	d.mu.Lock()
	d.pending = p
	d.classID = ""
	if p.ClassID != nil {
		d.classID = *p.ClassID
	}
	d.collect = false
	d.calc = fee.NewCalculator()
	if p.ProposedFee.Valid {
		_ = d.calc.SetTotalFee(p.ProposedFee.Decimal.String())
	}
	sessionID := ""
	if p.SessionID != nil {
		sessionID = *p.SessionID
	}
	token := d.prices.Begin()
	d.mu.Unlock()

	res, ok := d.prices.Fetch(ctx, token, sessionID)
	if !ok || sessionID == "" {
		return
	}
	d.mu.Lock()
	if d.prices.Current(res.Token) && d.pending.ID == p.ID {
		d.calc.SelectSession(res.Price)
	}
	d.mu.Unlock()
}

// Pending returns the loaded registration.
func (d *ApprovalDesk) Pending() models.PendingStudent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// SetClass chooses the class the student is admitted into.
func (d *ApprovalDesk) SetClass(classID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classID = strings.TrimSpace(classID)
}

// SetCollect toggles collecting a payment at approval time.
func (d *ApprovalDesk) SetCollect(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collect = on
}

// SetCustomFee toggles the custom fee override.
func (d *ApprovalDesk) SetCustomFee(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calc.SetCustom(on)
}

// SetTotalFee records a typed total fee.
func (d *ApprovalDesk) SetTotalFee(raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calc.SetTotalFee(raw)
}

// SetPaidAmount records a typed collected amount. It is ignored unless collecting.
func (d *ApprovalDesk) SetPaidAmount(raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calc.SetPaidAmount(raw)
}

// State returns the derived fee state of the form.
func (d *ApprovalDesk) State() fee.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calc.State()
}

// Amounts returns the totals that would be sent on approval.
func (d *ApprovalDesk) Amounts() fee.Approval {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.amountsLocked()
}

// Balance is the outstanding amount after approval.
func (d *ApprovalDesk) Balance() decimal.Decimal {
	return d.Amounts().Balance
}

// FullyPaid reports whether the approval settles the whole fee.
func (d *ApprovalDesk) FullyPaid() bool {
	return d.Amounts().FullyPaid
}

func (d *ApprovalDesk) amountsLocked() fee.Approval {
	state := d.calc.State()
	return fee.ApprovalAmounts(state.TotalFee, d.collect, state.PaidAmount)
}

// Request builds the approval body. A hand-typed total without a session price travels as a
// custom total so the API does not fall back to the proposed fee.
func (d *ApprovalDesk) Request() dto.ApproveRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requestLocked()
}

func (d *ApprovalDesk) requestLocked() dto.ApproveRequest {
	state := d.calc.State()
	amounts := d.amountsLocked()
	req := dto.ApproveRequest{
		ClassID:    d.classID,
		CollectFee: d.collect,
		PaidAmount: amounts.PaidAmount,
		CustomFee:  state.IsCustomFeeMode,
	}
	if state.Mode == fee.ModeManual && d.calc.TotalFeeSet() {
		req.CustomFee = true
	}
	if req.CustomFee {
		req.CustomTotal = decimal.NewNullDecimal(state.TotalFee)
	}
	return req
}

// Approve validates the form and approves the registration. Validation failures return a
// *fee.ValidationError without contacting the API.
func (d *ApprovalDesk) Approve(ctx context.Context) (*dto.ApproveResponse, error) {
	d.mu.Lock()
	pendingID := d.pending.ID
	if d.classID == "" {
		d.mu.Unlock()
		return nil, &fee.ValidationError{Field: "classId", Message: "Class is required"}
	}
	if err := fee.ValidateApproval(d.amountsLocked()); err != nil {
		d.mu.Unlock()
		return nil, err
	}
	req := d.requestLocked()
	d.mu.Unlock()

	res, err := d.client.Approve(ctx, pendingID, req)
	if err != nil {
		return nil, err
	}
	d.logger.Info("pending registration approved", zap.String("pending_id", pendingID), zap.String("student_id", res.Student.ID))
	return res, nil
}

// Reject discards the loaded registration.
func (d *ApprovalDesk) Reject(ctx context.Context, reason string) error {
	pendingID := d.Pending().ID
	if err := d.client.Reject(ctx, pendingID, strings.TrimSpace(reason)); err != nil {
		return err
	}
	d.logger.Info("pending registration rejected", zap.String("pending_id", pendingID))
	return nil
}
