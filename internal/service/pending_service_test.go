package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

type pendingRepoStub struct {
	pending map[string]models.PendingStudent
	created []*models.PendingStudent
	deleted []string
}

func (r *pendingRepoStub) Create(ctx context.Context, pending *models.PendingStudent) error {
	pending.ID = "pending-new"
	r.created = append(r.created, pending)
	return nil
}

func (r *pendingRepoStub) List(ctx context.Context) ([]models.PendingStudent, error) {
	out := make([]models.PendingStudent, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p)
	}
	return out, nil
}

func (r *pendingRepoStub) FindByID(ctx context.Context, id string) (*models.PendingStudent, error) {
	p, ok := r.pending[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *pendingRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.pending[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.pending, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// approverStub consumes the pending row like the DELETE ... RETURNING transaction does.
type approverStub struct {
	repo     *pendingRepoStub
	students []*models.Student
	users    []*models.User
}

func (a *approverStub) Approve(ctx context.Context, pendingID string, student *models.Student, user *models.User) error {
	if err := a.repo.Delete(ctx, pendingID); err != nil {
		return err
	}
	student.ID = "student-" + pendingID
	student.UserID = &user.ID
	a.students = append(a.students, student)
	a.users = append(a.users, user)
	return nil
}

type pendingFixture struct {
	svc      *PendingService
	repo     *pendingRepoStub
	approver *approverStub
	audit    *auditStub
}

func newPendingFixture(cfg PendingConfig) pendingFixture {
	session := "session-2025"
	repo := &pendingRepoStub{pending: map[string]models.PendingStudent{
		"p1": {ID: "p1", StudentName: "Ayesha Khan", FatherName: "Imran Khan", SessionID: &session, Subjects: models.StringList{"Tajweed"}},
		"p2": {ID: "p2", StudentName: "Bilal Ahmed", FatherName: "Ahmed", ProposedFee: decimal.NewNullDecimal(amount("2500"))},
	}}
	approver := &approverStub{repo: repo}
	audit := &auditStub{}
	classes := &classStub{classes: map[string]models.Class{"class-1": {ID: "class-1"}}}
	prices := &priceStub{prices: map[string]decimal.Decimal{"session-2025": amount("5000")}}
	svc := NewPendingService(repo, approver, classes, prices, &usernamesStub{}, audit, NewMetricsService(), nil, nil, cfg)
	return pendingFixture{svc: svc, repo: repo, approver: approver, audit: audit}
}

func TestApproveWithoutCollectingSendsZeroPaid(t *testing.T) {
	f := newPendingFixture(PendingConfig{})

	resp, err := f.svc.Approve(context.Background(), "p1", dto.ApproveRequest{
		ClassID:    "class-1",
		CollectFee: false,
		PaidAmount: amount("1500"),
	}, Actor{UserID: "staff-1"})
	require.NoError(t, err)

	assert.True(t, resp.Student.TotalFee.Equal(amount("5000")))
	assert.True(t, resp.Student.PaidAmount.IsZero())
	assert.Equal(t, models.FeeStatusUnpaid, resp.Student.FeeStatus)
	assert.True(t, resp.Student.SessionRate.Valid)
	assert.Equal(t, "Tajweed", resp.Student.Subjects[0].Name)
	assert.Regexp(t, `^ayesha\.khan\d{4}$`, resp.Credentials.Username)
	assert.Len(t, resp.Credentials.Password, 10)

	require.Len(t, f.approver.users, 1)
	user := f.approver.users[0]
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(resp.Credentials.Password)))
	assert.NotContains(t, string(f.audit.logs[0].NewValues), resp.Credentials.Password)
}

func TestApproveCollectingFullFee(t *testing.T) {
	f := newPendingFixture(PendingConfig{})

	resp, err := f.svc.Approve(context.Background(), "p1", dto.ApproveRequest{
		ClassID:    "class-1",
		CollectFee: true,
		PaidAmount: amount("5000"),
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPaid, resp.Student.FeeStatus)
	assert.True(t, resp.Student.Balance().IsZero())
}

func TestApproveCustomTotalRecordsDiscount(t *testing.T) {
	f := newPendingFixture(PendingConfig{})

	resp, err := f.svc.Approve(context.Background(), "p1", dto.ApproveRequest{
		ClassID:     "class-1",
		CustomFee:   true,
		CustomTotal: decimal.NewNullDecimal(amount("4000")),
		CollectFee:  true,
		PaidAmount:  amount("1000"),
	}, Actor{})
	require.NoError(t, err)
	assert.True(t, resp.Student.TotalFee.Equal(amount("4000")))
	assert.True(t, resp.Student.DiscountAmount.Equal(amount("1000")))
	assert.True(t, resp.Student.Balance().Equal(amount("3000")))
}

func TestApproveFallsBackToProposedFee(t *testing.T) {
	f := newPendingFixture(PendingConfig{})

	resp, err := f.svc.Approve(context.Background(), "p2", dto.ApproveRequest{ClassID: "class-1"}, Actor{})
	require.NoError(t, err)
	assert.True(t, resp.Student.TotalFee.Equal(amount("2500")))
	assert.False(t, resp.Student.SessionRate.Valid)
}

func TestApproveValidation(t *testing.T) {
	f := newPendingFixture(PendingConfig{})
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, "p1", dto.ApproveRequest{}, Actor{})
	assert.Equal(t, "classId", appErrors.FieldOf(err))

	_, err = f.svc.Approve(ctx, "p1", dto.ApproveRequest{ClassID: "class-1", CustomFee: true}, Actor{})
	assert.Equal(t, "customTotal", appErrors.FieldOf(err))

	_, err = f.svc.Approve(ctx, "p1", dto.ApproveRequest{ClassID: "class-1", CollectFee: true, PaidAmount: amount("6000")}, Actor{})
	assert.Equal(t, "paidAmount", appErrors.FieldOf(err))

	_, err = f.svc.Approve(ctx, "p1", dto.ApproveRequest{ClassID: "ghost"}, Actor{})
	assert.Equal(t, "classId", appErrors.FieldOf(err))

	assert.Empty(t, f.approver.students)
	assert.Contains(t, f.repo.pending, "p1")
}

func TestApproveTwiceOnlyFirstSucceeds(t *testing.T) {
	f := newPendingFixture(PendingConfig{})
	req := dto.ApproveRequest{ClassID: "class-1"}

	_, err := f.svc.Approve(context.Background(), "p1", req, Actor{})
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), "p1", req, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Len(t, f.approver.students, 1)
}

func TestRejectKeepsReasonInAudit(t *testing.T) {
	f := newPendingFixture(PendingConfig{})

	require.NoError(t, f.svc.Reject(context.Background(), "p2", dto.RejectRequest{Reason: " duplicate form "}, Actor{UserID: "staff-1"}))
	assert.Equal(t, []string{"p2"}, f.repo.deleted)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionPendingReject, f.audit.logs[0].Action)
	assert.JSONEq(t, `{"reason":"duplicate form"}`, string(f.audit.logs[0].NewValues))

	err := f.svc.Reject(context.Background(), "p2", dto.RejectRequest{}, Actor{})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRegister(t *testing.T) {
	closed := newPendingFixture(PendingConfig{})
	_, err := closed.svc.Register(context.Background(), dto.RegisterRequest{StudentName: "A", FatherName: "B", ParentPhone: "1"})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	open := newPendingFixture(PendingConfig{PublicRegistration: true})
	empty := ""
	pending, err := open.svc.Register(context.Background(), dto.RegisterRequest{
		StudentName: " Sara Ali ",
		FatherName:  "Ali",
		ParentPhone: "0300",
		ClassID:     &empty,
		Subjects:    []string{" Nazra "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sara Ali", pending.StudentName)
	assert.Nil(t, pending.ClassID)
	assert.Equal(t, models.StringList{"Nazra"}, pending.Subjects)

	_, err = open.svc.Register(context.Background(), dto.RegisterRequest{
		StudentName: "Sara", FatherName: "Ali", ParentPhone: "0300",
		ProposedFee: decimal.NewNullDecimal(amount("-5")),
	})
	assert.Equal(t, "proposedFee", appErrors.FieldOf(err))
}
