package intake

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/fee"
	"github.com/noah-isme/academy-desk-api/internal/models"
)

// ErrSubmitInProgress is returned when Submit is called while another submission is running.
var ErrSubmitInProgress = errors.New("admission is already being submitted")

type admissionClient interface {
	priceFetcher
	CreateAdmission(ctx context.Context, req dto.CreateAdmissionRequest) (*models.Student, error)
}

// AdmissionDesk is the new-student intake form. Every change is written to the draft store.
type AdmissionDesk struct {
	mu         sync.Mutex
	client     admissionClient
	drafts     DraftStore
	prices     *SessionPriceResolver
	logger     *zap.Logger
	calc       *fee.Calculator
	draft      models.AdmissionDraft
	submitting bool
}

// NewAdmissionDesk builds an empty form.
func NewAdmissionDesk(client admissionClient, drafts DraftStore, logger *zap.Logger) *AdmissionDesk {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdmissionDesk{
		client: client,
		drafts: drafts,
		prices: NewSessionPriceResolver(client, logger),
		logger: logger,
		calc:   fee.NewCalculator(),
	}
}

// Start restores a saved draft, if any, and re-resolves its session price. A restored custom
// fee survives the price lookup.
func (d *AdmissionDesk) Start(ctx context.Context) (bool, error) {
	draft, found, err := d.drafts.Load(ctx)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	d.mu.Lock()
	d.draft = draft
	d.calc = fee.NewCalculator()
	d.calc.Restore(draft.TotalFee, draft.PaidAmount, draft.IsCustomFeeMode)
	d.mu.Unlock()

	if draft.SessionID != "" {
		d.SelectSession(ctx, draft.SessionID)
	}
	return true, nil
}

// Draft returns a copy of the current form values.
func (d *AdmissionDesk) Draft() models.AdmissionDraft {
	d.mu.Lock()
	defer d.mu.Unlock()
	draft := d.draft
	draft.Subjects = append([]string(nil), d.draft.Subjects...)
	return draft
}

// State returns the derived fee state.
func (d *AdmissionDesk) State() fee.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calc.State()
}

// Editable reports whether the total fee input accepts typing.
func (d *AdmissionDesk) Editable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calc.Editable()
}

// Update edits the identity and contact fields. Changes fn makes to the session, fee or pending
// linkage fields are discarded.
func (d *AdmissionDesk) Update(ctx context.Context, fn func(*models.AdmissionDraft)) {
	d.mu.Lock()
	sessionID, pendingID := d.draft.SessionID, d.draft.PendingRegistrationID
	fn(&d.draft)
	d.draft.SessionID, d.draft.PendingRegistrationID = sessionID, pendingID
	d.syncLocked()
	d.mu.Unlock()
	d.persist(ctx)
}

// Prefill loads a pending registration into the form and links it, so a successful submit
// consumes the pending record.
func (d *AdmissionDesk) Prefill(ctx context.Context, p models.PendingStudent) {
	d.mu.Lock()
	d.draft.StudentName = p.StudentName
	d.draft.FatherName = p.FatherName
	d.draft.Gender = p.Gender
	d.draft.Group = p.Group
	d.draft.Subjects = append([]string(nil), p.Subjects...)
	d.draft.StudentPhone = p.StudentPhone
	d.draft.ParentPhone = p.ParentPhone
	d.draft.Address = p.Address
	d.draft.Photo = p.Photo
	if p.ClassID != nil {
		d.draft.ClassID = *p.ClassID
	}
	d.draft.PendingRegistrationID = p.ID
	if p.ProposedFee.Valid && d.calc.Editable() {
		_ = d.calc.SetTotalFee(p.ProposedFee.Decimal.String())
	}
	d.syncLocked()
	d.mu.Unlock()

	if p.SessionID != nil {
		d.SelectSession(ctx, *p.SessionID)
		return
	}
	d.persist(ctx)
}

// SelectSession switches the session and applies its price. It reports false when a later
// selection superseded this one before the price arrived.
func (d *AdmissionDesk) SelectSession(ctx context.Context, sessionID string) bool {
	sessionID = strings.TrimSpace(sessionID)
	d.mu.Lock()
	d.draft.SessionID = sessionID
	token := d.prices.Begin()
	d.mu.Unlock()

	res, ok := d.prices.Fetch(ctx, token, sessionID)
	if !ok {
		return false
	}

	d.mu.Lock()
	if !d.prices.Current(res.Token) || d.draft.SessionID != sessionID {
		d.mu.Unlock()
		return false
	}
	if sessionID == "" {
		d.calc.ClearSession()
	} else {
		d.calc.SelectSession(res.Price)
	}
	d.syncLocked()
	d.mu.Unlock()
	d.persist(ctx)
	return true
}

// SetCustomFee toggles the custom fee override.
func (d *AdmissionDesk) SetCustomFee(ctx context.Context, on bool) error {
	return d.edit(ctx, func(c *fee.Calculator) error { return c.SetCustom(on) })
}

// SetTotalFee records a typed total fee.
func (d *AdmissionDesk) SetTotalFee(ctx context.Context, raw string) error {
	return d.edit(ctx, func(c *fee.Calculator) error { return c.SetTotalFee(raw) })
}

// SetPaidAmount records a typed paid amount.
func (d *AdmissionDesk) SetPaidAmount(ctx context.Context, raw string) error {
	return d.edit(ctx, func(c *fee.Calculator) error { return c.SetPaidAmount(raw) })
}

func (d *AdmissionDesk) edit(ctx context.Context, fn func(*fee.Calculator) error) error {
	d.mu.Lock()
	if err := fn(d.calc); err != nil {
		d.mu.Unlock()
		return err
	}
	d.syncLocked()
	d.mu.Unlock()
	d.persist(ctx)
	return nil
}

// Submit validates the form and creates the admission. Validation failures return a
// *fee.ValidationError without contacting the API. The draft is cleared only after the API
// accepts the admission.
func (d *AdmissionDesk) Submit(ctx context.Context) (*models.Student, error) {
	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	req, err := d.buildRequestLocked()
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	d.submitting = true
	d.mu.Unlock()

	student, err := d.client.CreateAdmission(ctx, req)

	d.mu.Lock()
	d.submitting = false
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	d.resetLocked()
	d.mu.Unlock()

	if err := d.drafts.Clear(ctx); err != nil {
		d.logger.Warn("failed to clear admission draft", zap.Error(err))
	}
	return student, nil
}

// Cancel abandons the form and removes the saved draft.
func (d *AdmissionDesk) Cancel(ctx context.Context) error {
	d.mu.Lock()
	d.resetLocked()
	d.prices.Begin()
	d.mu.Unlock()
	return d.drafts.Clear(ctx)
}

func (d *AdmissionDesk) buildRequestLocked() (dto.CreateAdmissionRequest, error) {
	state := d.calc.State()
	total := state.TotalFee
	check := fee.AdmissionCheck{
		StudentName: d.draft.StudentName,
		FatherName:  d.draft.FatherName,
		ClassID:     d.draft.ClassID,
		Group:       d.draft.Group,
		ParentPhone: d.draft.ParentPhone,
		PaidAmount:  state.PaidAmount,
	}
	if d.calc.TotalFeeSet() || state.Mode == fee.ModeLocked {
		check.TotalFee.Valid = true
		check.TotalFee.Decimal = total
	}
	if err := fee.ValidateAdmission(check); err != nil {
		return dto.CreateAdmissionRequest{}, err
	}

	req := dto.CreateAdmissionRequest{
		StudentName:           strings.TrimSpace(d.draft.StudentName),
		FatherName:            strings.TrimSpace(d.draft.FatherName),
		Gender:                d.draft.Gender,
		ClassID:               d.draft.ClassID,
		SessionID:             d.draft.SessionID,
		Group:                 strings.TrimSpace(d.draft.Group),
		Subjects:              []models.Subject(models.SubjectsFromNames(d.draft.Subjects)),
		StudentPhone:          strings.TrimSpace(d.draft.StudentPhone),
		ParentPhone:           strings.TrimSpace(d.draft.ParentPhone),
		Address:               strings.TrimSpace(d.draft.Address),
		AdmissionDate:         d.draft.AdmissionDate,
		TotalFee:              total,
		PaidAmount:            state.PaidAmount,
		DiscountAmount:        state.DiscountAmount,
		IsCustomFeeMode:       state.IsCustomFeeMode,
		Photo:                 d.draft.Photo,
		PendingRegistrationID: d.draft.PendingRegistrationID,
	}
	if state.IsSessionPriceMode {
		req.SessionRate = state.SessionPrice
	}
	return req, nil
}

// syncLocked copies the calculator inputs into the draft.
func (d *AdmissionDesk) syncLocked() {
	d.draft.TotalFee = d.calc.TotalFeeInput()
	d.draft.PaidAmount = d.calc.PaidAmountInput()
	d.draft.IsCustomFeeMode = d.calc.Custom()
}

func (d *AdmissionDesk) resetLocked() {
	d.draft = models.AdmissionDraft{}
	d.calc = fee.NewCalculator()
}

func (d *AdmissionDesk) persist(ctx context.Context) {
	draft := d.Draft()
	if err := d.drafts.Save(ctx, draft); err != nil {
		d.logger.Warn("failed to save admission draft", zap.Error(err))
	}
}
