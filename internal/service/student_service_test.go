package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

type auditStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if a.err != nil {
		return a.err
	}
	a.logs = append(a.logs, log)
	return nil
}

type classStub struct {
	classes map[string]models.Class
}

func (c *classStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	class, ok := c.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &class, nil
}

type priceStub struct {
	prices map[string]decimal.Decimal
	err    error
	calls  int
}

func (p *priceStub) Resolve(ctx context.Context, sessionID string) (decimal.NullDecimal, error) {
	p.calls++
	if p.err != nil {
		return decimal.NullDecimal{}, p.err
	}
	price, ok := p.prices[sessionID]
	if !ok {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(price), nil
}

type studentRepoStub struct {
	students       map[string]models.Student
	created        []*models.Student
	consumed       []string
	pendingMissing bool
	payments       []models.FeePayment
	listFilter     models.StudentFilter
}

func newStudentRepoStub() *studentRepoStub {
	return &studentRepoStub{students: map[string]models.Student{}}
}

func (r *studentRepoStub) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	r.listFilter = filter
	out := make([]models.StudentDetail, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, models.StudentDetail{Student: s})
	}
	return out, len(out), nil
}

func (r *studentRepoStub) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: s}, nil
}

func (r *studentRepoStub) CreateAdmission(ctx context.Context, student *models.Student, pendingID string) error {
	if pendingID != "" {
		if r.pendingMissing {
			return sql.ErrNoRows
		}
		r.consumed = append(r.consumed, pendingID)
	}
	if student.ID == "" {
		student.ID = "student-" + student.StudentName
	}
	r.created = append(r.created, student)
	r.students[student.ID] = *student
	return nil
}

func (r *studentRepoStub) RecordPayment(ctx context.Context, payment *models.FeePayment, apply func(*models.Student) error) (*models.Student, error) {
	s, ok := r.students[payment.StudentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if err := apply(&s); err != nil {
		return nil, err
	}
	payment.ID = "payment-1"
	r.students[s.ID] = s
	r.payments = append(r.payments, *payment)
	return &s, nil
}

func (r *studentRepoStub) ListPayments(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	return r.payments, nil
}

func amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newStudentServiceForTest() (*StudentService, *studentRepoStub, *auditStub) {
	repo := newStudentRepoStub()
	audit := &auditStub{}
	classes := &classStub{classes: map[string]models.Class{"class-1": {ID: "class-1", Title: "Hifz"}}}
	prices := &priceStub{prices: map[string]decimal.Decimal{"session-2025": amount("5000")}}
	svc := NewStudentService(repo, classes, prices, audit, NewMetricsService(), nil, zap.NewNop())
	return svc, repo, audit
}

func admissionRequest() dto.CreateAdmissionRequest {
	return dto.CreateAdmissionRequest{
		StudentName: "Ayesha Khan",
		FatherName:  "Imran Khan",
		ClassID:     "class-1",
		SessionID:   "session-2025",
		Group:       "A",
		Subjects:    []models.Subject{{Name: "Tajweed"}, {Name: " "}, {Name: "Arabic"}},
		ParentPhone: "03001234567",
		PaidAmount:  amount("2000"),
	}
}

func TestAdmitLockedToSessionPrice(t *testing.T) {
	svc, repo, audit := newStudentServiceForTest()
	req := admissionRequest()

	student, err := svc.Admit(context.Background(), req, Actor{UserID: "staff-1", Role: models.RoleStaff})
	require.NoError(t, err)

	assert.True(t, student.TotalFee.Equal(amount("5000")))
	assert.True(t, student.DiscountAmount.IsZero())
	assert.True(t, student.SessionRate.Valid)
	assert.True(t, student.SessionRate.Decimal.Equal(amount("5000")))
	assert.Equal(t, models.FeeStatusPartial, student.FeeStatus)
	require.Len(t, student.Subjects, 2)
	assert.Equal(t, "Tajweed", student.Subjects[0].Name)
	assert.True(t, student.Subjects[0].Fee.IsZero())
	assert.True(t, student.Balance().Equal(amount("3000")))
	require.Len(t, repo.created, 1)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionAdmissionCreate, audit.logs[0].Action)
}

func TestAdmitCustomFeeRecordsDiscount(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	req := admissionRequest()
	req.IsCustomFeeMode = true
	req.TotalFee = amount("4000")

	student, err := svc.Admit(context.Background(), req, Actor{})
	require.NoError(t, err)
	assert.True(t, student.TotalFee.Equal(amount("4000")))
	assert.True(t, student.DiscountAmount.Equal(amount("1000")))
	assert.True(t, student.SessionRate.Decimal.Equal(amount("5000")))
}

func TestAdmitRejectsOverpayment(t *testing.T) {
	svc, repo, _ := newStudentServiceForTest()
	req := admissionRequest()
	req.SessionID = ""
	req.TotalFee = amount("3000")
	req.PaidAmount = amount("3500")

	_, err := svc.Admit(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, "paidAmount", appErrors.FieldOf(err))
	appErr := appErrors.FromError(err)
	assert.Contains(t, appErr.Message, "3500")
	assert.Contains(t, appErr.Message, "3000")
	assert.Empty(t, repo.created)
}

func TestAdmitRejectsZeroPayment(t *testing.T) {
	svc, repo, _ := newStudentServiceForTest()
	req := admissionRequest()
	req.PaidAmount = decimal.Zero

	_, err := svc.Admit(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, "paidAmount", appErrors.FieldOf(err))
	assert.Empty(t, repo.created)
}

func TestAdmitRejectsTotalThatDisagreesWithLockedPrice(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	req := admissionRequest()
	req.TotalFee = amount("4500")

	_, err := svc.Admit(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, "totalFee", appErrors.FieldOf(err))
}

func TestAdmitRequiresFields(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	req := admissionRequest()
	req.Group = ""

	_, err := svc.Admit(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, "group", appErrors.FieldOf(err))
}

func TestAdmitUnknownClass(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	req := admissionRequest()
	req.ClassID = "missing"

	_, err := svc.Admit(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, "classId", appErrors.FieldOf(err))
}

func TestAdmitConsumesPendingRegistration(t *testing.T) {
	svc, repo, _ := newStudentServiceForTest()
	req := admissionRequest()
	req.PendingRegistrationID = "pending-1"

	_, err := svc.Admit(context.Background(), req, Actor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pending-1"}, repo.consumed)
}

func TestAdmitStalePendingRegistrationConflicts(t *testing.T) {
	svc, repo, _ := newStudentServiceForTest()
	repo.pendingMissing = true
	req := admissionRequest()
	req.PendingRegistrationID = "pending-1"

	_, err := svc.Admit(context.Background(), req, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAdmitPriceLookupFailure(t *testing.T) {
	repo := newStudentRepoStub()
	prices := &priceStub{err: appErrors.Clone(appErrors.ErrInternal, "failed to load session price")}
	svc := NewStudentService(repo, &classStub{}, prices, nil, nil, nil, nil)

	_, err := svc.Admit(context.Background(), admissionRequest(), Actor{})
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestCollectPayment(t *testing.T) {
	svc, repo, audit := newStudentServiceForTest()
	repo.students["s1"] = models.Student{ID: "s1", TotalFee: amount("5000"), PaidAmount: amount("2000"), FeeStatus: models.FeeStatusPartial}

	resp, err := svc.CollectPayment(context.Background(), "s1", dto.CollectPaymentRequest{Amount: amount("3000")}, Actor{UserID: "staff-1"})
	require.NoError(t, err)
	assert.True(t, resp.Student.PaidAmount.Equal(amount("5000")))
	assert.Equal(t, models.FeeStatusPaid, resp.Student.FeeStatus)
	require.NotNil(t, resp.Payment.CollectedBy)
	assert.Equal(t, "staff-1", *resp.Payment.CollectedBy)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionFeeCollect, audit.logs[0].Action)
}

func TestCollectPaymentExceedingBalance(t *testing.T) {
	svc, repo, _ := newStudentServiceForTest()
	repo.students["s1"] = models.Student{ID: "s1", TotalFee: amount("5000"), PaidAmount: amount("4000")}

	_, err := svc.CollectPayment(context.Background(), "s1", dto.CollectPaymentRequest{Amount: amount("1500")}, Actor{})
	require.Error(t, err)
	assert.Equal(t, "amount", appErrors.FieldOf(err))
	assert.Empty(t, repo.payments)
}

func TestCollectPaymentUnknownStudent(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	_, err := svc.CollectPayment(context.Background(), "nope", dto.CollectPaymentRequest{Amount: amount("10")}, Actor{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListStudentsDefaultsPaging(t *testing.T) {
	svc, repo, _ := newStudentServiceForTest()
	_, pagination, err := svc.List(context.Background(), models.StudentFilter{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 20, repo.listFilter.PageSize)

	_, _, err = svc.List(context.Background(), models.StudentFilter{FeeStatus: "owed"})
	require.Error(t, err)
}
