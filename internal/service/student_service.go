package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/fee"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	CreateAdmission(ctx context.Context, student *models.Student, pendingID string) error
	RecordPayment(ctx context.Context, payment *models.FeePayment, apply func(*models.Student) error) (*models.Student, error)
	ListPayments(ctx context.Context, studentID string) ([]models.FeePayment, error)
}

type classLookup interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type priceResolver interface {
	Resolve(ctx context.Context, sessionID string) (decimal.NullDecimal, error)
}

// StudentService admits students and collects their fees. Fee figures sent by clients are
// re-derived here so a stale or tampered form cannot persist an inconsistent student.
type StudentService struct {
	repo      studentRepository
	classes   classLookup
	prices    priceResolver
	audit     auditRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, classes classLookup, prices priceResolver, audit auditRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, prices: prices, audit: audit, metrics: metrics, validator: validate, logger: logger}
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	switch filter.FeeStatus {
	case "", models.FeeStatusPaid, models.FeeStatusPartial, models.FeeStatusUnpaid:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid fee status filter")
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Admit creates an active student from the admission form. A pending registration referenced by
// the form is consumed in the same transaction.
func (s *StudentService) Admit(ctx context.Context, req dto.CreateAdmissionRequest, actor Actor) (*models.Student, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	price := decimal.NullDecimal{}
	if sessionID != "" {
		var err error
		if price, err = s.prices.Resolve(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	state := fee.Derive(price, req.IsCustomFeeMode, req.TotalFee, req.PaidAmount)
	total := decimal.NullDecimal{}
	if !state.TotalFee.IsZero() {
		total = decimal.NewNullDecimal(state.TotalFee)
	}
	if err := fee.ValidateAdmission(fee.AdmissionCheck{
		StudentName: req.StudentName,
		FatherName:  req.FatherName,
		ClassID:     req.ClassID,
		Group:       req.Group,
		ParentPhone: req.ParentPhone,
		TotalFee:    total,
		PaidAmount:  state.PaidAmount,
	}); err != nil {
		return nil, appErrors.Validation(err)
	}
	if state.Mode == fee.ModeLocked && !req.TotalFee.IsZero() && !req.TotalFee.Equal(state.TotalFee) {
		return nil, appErrors.Validation(&fee.ValidationError{
			Field:   "totalFee",
			Message: "Total fee must match the session price (" + state.TotalFee.String() + ")",
		})
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admission payload")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation(&fee.ValidationError{Field: "classId", Message: "Selected class does not exist"})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	admittedOn, err := parseAdmissionDate(req.AdmissionDate)
	if err != nil {
		return nil, appErrors.Validation(&fee.ValidationError{Field: "admissionDate", Message: "Admission date must be YYYY-MM-DD"})
	}

	names := make([]string, 0, len(req.Subjects))
	for _, subj := range req.Subjects {
		if name := strings.TrimSpace(subj.Name); name != "" {
			names = append(names, name)
		}
	}

	student := &models.Student{
		StudentName:    strings.TrimSpace(req.StudentName),
		FatherName:     strings.TrimSpace(req.FatherName),
		Gender:         req.Gender,
		ClassID:        req.ClassID,
		Group:          req.Group,
		Subjects:       models.SubjectsFromNames(names),
		StudentPhone:   strings.TrimSpace(req.StudentPhone),
		ParentPhone:    strings.TrimSpace(req.ParentPhone),
		Address:        strings.TrimSpace(req.Address),
		Photo:          req.Photo,
		AdmissionDate:  admittedOn,
		TotalFee:       state.TotalFee,
		PaidAmount:     state.PaidAmount,
		DiscountAmount: state.DiscountAmount,
		FeeStatus:      models.FeeStatus(fee.StatusOf(state.TotalFee, state.PaidAmount)),
		Status:         models.StudentStatusActive,
	}
	if sessionID != "" {
		student.SessionID = &sessionID
	}
	if state.IsSessionPriceMode {
		student.SessionRate = price
	}

	if err := s.repo.CreateAdmission(ctx, student, strings.TrimSpace(req.PendingRegistrationID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "pending registration was already processed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionAdmissionCreate, "student", student.ID, nil, map[string]interface{}{
		"mode":       state.Mode,
		"totalFee":   state.TotalFee.String(),
		"paidAmount": state.PaidAmount.String(),
		"discount":   state.DiscountAmount.String(),
		"pendingId":  req.PendingRegistrationID,
	})
	s.metrics.RecordAdmission(string(state.Mode), state.PaidAmount)
	s.logger.Info("student admitted",
		zap.String("student_id", student.ID),
		zap.String("fee_mode", string(state.Mode)),
		zap.String("balance", state.Balance.String()),
	)
	return student, nil
}

// CollectPayment records an installment against a student's outstanding balance.
func (s *StudentService) CollectPayment(ctx context.Context, studentID string, req dto.CollectPaymentRequest, actor Actor) (*dto.CollectPaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	payment := &models.FeePayment{
		StudentID: studentID,
		Amount:    req.Amount,
		Note:      strings.TrimSpace(req.Note),
	}
	if actor.UserID != "" {
		uid := actor.UserID
		payment.CollectedBy = &uid
	}

	var before decimal.Decimal
	student, err := s.repo.RecordPayment(ctx, payment, func(st *models.Student) error {
		if err := fee.ValidateCollection(st.Balance(), req.Amount); err != nil {
			return err
		}
		before = st.PaidAmount
		st.PaidAmount = st.PaidAmount.Add(req.Amount)
		st.FeeStatus = models.FeeStatus(fee.StatusOf(st.TotalFee, st.PaidAmount))
		return nil
	})
	if err != nil {
		var fieldErr *fee.ValidationError
		switch {
		case errors.As(err, &fieldErr):
			return nil, appErrors.Validation(err)
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
		}
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionFeeCollect, "student", studentID,
		map[string]string{"paidAmount": before.String()},
		map[string]string{"paidAmount": student.PaidAmount.String(), "amount": req.Amount.String()})
	s.metrics.RecordCollection(req.Amount)
	return &dto.CollectPaymentResponse{Payment: *payment, Student: *student}, nil
}

// Payments lists a student's payment history.
func (s *StudentService) Payments(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	if _, err := s.Get(ctx, studentID); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}

func parseAdmissionDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
