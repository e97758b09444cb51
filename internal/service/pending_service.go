package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/fee"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

type pendingRepository interface {
	Create(ctx context.Context, pending *models.PendingStudent) error
	List(ctx context.Context) ([]models.PendingStudent, error)
	FindByID(ctx context.Context, id string) (*models.PendingStudent, error)
	Delete(ctx context.Context, id string) error
}

type studentApprover interface {
	Approve(ctx context.Context, pendingID string, student *models.Student, user *models.User) error
}

// PendingConfig tunes self registration and approval.
type PendingConfig struct {
	PublicRegistration bool
	PasswordLength     int
}

// PendingService runs the verification hub: self registration, approval and rejection.
type PendingService struct {
	repo      pendingRepository
	students  studentApprover
	classes   classLookup
	prices    priceResolver
	minter    *credentialMinter
	audit     auditRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       PendingConfig
}

// NewPendingService constructs PendingService.
func NewPendingService(repo pendingRepository, students studentApprover, classes classLookup, prices priceResolver, users usernameChecker, audit auditRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg PendingConfig) *PendingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PendingService{
		repo:      repo,
		students:  students,
		classes:   classes,
		prices:    prices,
		minter:    newCredentialMinter(users, cfg.PasswordLength),
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Register stores a self registration from the student portal.
func (s *PendingService) Register(ctx context.Context, req dto.RegisterRequest) (*models.PendingStudent, error) {
	if !s.cfg.PublicRegistration {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "public registration is closed")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if req.ProposedFee.Valid && req.ProposedFee.Decimal.IsNegative() {
		return nil, appErrors.Validation(&fee.ValidationError{Field: "proposedFee", Message: "Proposed fee cannot be negative"})
	}
	pending := &models.PendingStudent{
		StudentName:  strings.TrimSpace(req.StudentName),
		FatherName:   strings.TrimSpace(req.FatherName),
		Gender:       req.Gender,
		ClassID:      nonEmpty(req.ClassID),
		SessionID:    nonEmpty(req.SessionID),
		Group:        strings.TrimSpace(req.Group),
		Subjects:     models.StringList(trimAll(req.Subjects)),
		StudentPhone: strings.TrimSpace(req.StudentPhone),
		ParentPhone:  strings.TrimSpace(req.ParentPhone),
		Address:      strings.TrimSpace(req.Address),
		Photo:        req.Photo,
		ProposedFee:  req.ProposedFee,
	}
	if err := s.repo.Create(ctx, pending); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration")
	}
	s.logger.Info("registration received", zap.String("pending_id", pending.ID))
	return pending, nil
}

// List returns registrations awaiting review.
func (s *PendingService) List(ctx context.Context) ([]models.PendingStudent, error) {
	pending, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending registrations")
	}
	return pending, nil
}

// Approve admits a pending registration and mints the student's login. When several staff approve
// the same registration at once only the first succeeds; the rest get NOT_FOUND.
func (s *PendingService) Approve(ctx context.Context, pendingID string, req dto.ApproveRequest, actor Actor) (*dto.ApproveResponse, error) {
	if strings.TrimSpace(req.ClassID) == "" {
		return nil, appErrors.Validation(&fee.ValidationError{Field: "classId", Message: "Class is required"})
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}

	pending, err := s.repo.FindByID(ctx, pendingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pending registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending registration")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation(&fee.ValidationError{Field: "classId", Message: "Selected class does not exist"})
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	price := decimal.NullDecimal{}
	if pending.SessionID != nil && *pending.SessionID != "" {
		if price, err = s.prices.Resolve(ctx, *pending.SessionID); err != nil {
			return nil, err
		}
	}
	total := approvalTotal(req, price, pending.ProposedFee)
	amounts := fee.ApprovalAmounts(total, req.CollectFee, req.PaidAmount)
	if err := fee.ValidateApproval(amounts); err != nil {
		return nil, appErrors.Validation(err)
	}

	username, err := s.minter.Username(ctx, pending.StudentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "could not allocate a username")
	}
	password, err := s.minter.Password()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     pending.StudentName,
		Role:         models.RoleStudent,
		Active:       true,
	}

	custom := req.CustomFee && fee.HasSessionPrice(price)
	student := &models.Student{
		StudentName:    pending.StudentName,
		FatherName:     pending.FatherName,
		Gender:         pending.Gender,
		ClassID:        req.ClassID,
		SessionID:      pending.SessionID,
		Group:          pending.Group,
		Subjects:       models.SubjectsFromNames(pending.Subjects),
		StudentPhone:   pending.StudentPhone,
		ParentPhone:    pending.ParentPhone,
		Address:        pending.Address,
		Photo:          pending.Photo,
		TotalFee:       amounts.TotalFee,
		PaidAmount:     amounts.PaidAmount,
		DiscountAmount: fee.Discount(price, amounts.TotalFee, custom),
		FeeStatus:      models.FeeStatus(fee.StatusOf(amounts.TotalFee, amounts.PaidAmount)),
		Status:         models.StudentStatusActive,
	}
	if fee.HasSessionPrice(price) {
		student.SessionRate = price
	}

	if err := s.students.Approve(ctx, pendingID, student, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pending registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve registration")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionPendingApprove, "pending_student", pendingID, nil, map[string]interface{}{
		"studentId":  student.ID,
		"username":   username,
		"totalFee":   amounts.TotalFee.String(),
		"paidAmount": amounts.PaidAmount.String(),
		"collectFee": req.CollectFee,
		"customFee":  req.CustomFee,
	})
	s.metrics.RecordApproval(req.CollectFee, amounts.PaidAmount)
	s.logger.Info("registration approved",
		zap.String("pending_id", pendingID),
		zap.String("student_id", student.ID),
		zap.Bool("fully_paid", amounts.FullyPaid),
	)
	return &dto.ApproveResponse{
		Student:     *student,
		Credentials: dto.Credentials{Username: username, Password: password},
	}, nil
}

// Reject discards a pending registration. The reason survives in the audit log.
func (s *PendingService) Reject(ctx context.Context, pendingID string, req dto.RejectRequest, actor Actor) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rejection payload")
	}
	pending, err := s.repo.FindByID(ctx, pendingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pending registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending registration")
	}
	if err := s.repo.Delete(ctx, pendingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "pending registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject registration")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionPendingReject, "pending_student", pendingID,
		pending, map[string]string{"reason": strings.TrimSpace(req.Reason)})
	s.metrics.RecordRejection()
	return nil
}

// approvalTotal picks the fee: an explicit custom total, then the session price, then the fee
// proposed at registration.
func approvalTotal(req dto.ApproveRequest, sessionPrice, proposed decimal.NullDecimal) decimal.Decimal {
	switch {
	case req.CustomFee:
		if req.CustomTotal.Valid {
			return req.CustomTotal.Decimal
		}
		return decimal.Zero
	case fee.HasSessionPrice(sessionPrice):
		return sessionPrice.Decimal
	case proposed.Valid:
		return proposed.Decimal
	default:
		return decimal.Zero
	}
}
