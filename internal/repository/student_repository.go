package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

const studentColumns = `s.id, s.student_name, s.father_name, s.gender, s.class_id, s.session_id, s.group_name, s.subjects,
        s.student_phone, s.parent_phone, s.address, s.photo, s.admission_date, s.total_fee, s.paid_amount, s.discount_amount,
        s.session_rate, s.fee_status, s.status, s.user_id, s.created_at, s.updated_at`

const studentDetailFrom = `FROM students s LEFT JOIN classes c ON c.id = s.class_id LEFT JOIN sessions ss ON ss.id = s.session_id`

const insertStudentQuery = `INSERT INTO students (id, student_name, father_name, gender, class_id, session_id, group_name, subjects,
        student_phone, parent_phone, address, photo, admission_date, total_fee, paid_amount, discount_amount, session_rate,
        fee_status, status, user_id, created_at, updated_at)
        VALUES (:id, :student_name, :father_name, :gender, :class_id, :session_id, :group_name, :subjects,
        :student_phone, :parent_phone, :address, :photo, :admission_date, :total_fee, :paid_amount, :discount_amount, :session_rate,
        :fee_status, :status, :user_id, :created_at, :updated_at)`

// StudentRepository manages persistence for admitted students and their fee payments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	conditions, args := studentConditions(filter)
	base := fmt.Sprintf("%s WHERE %s", studentDetailFrom, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"student_name":   "s.student_name",
		"admission_date": "s.admission_date",
		"total_fee":      "s.total_fee",
		"created_at":     "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, c.title AS class_title, ss.name AS session_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, studentColumns, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

func studentConditions(filter models.StudentFilter) ([]string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("s.session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}
	if filter.FeeStatus != "" {
		conditions = append(conditions, fmt.Sprintf("s.fee_status = $%d", len(args)+1))
		args = append(args, filter.FeeStatus)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.student_name) LIKE $%d OR LOWER(s.father_name) LIKE $%d OR s.parent_phone LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	return conditions, args
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.title AS class_title, ss.name AS session_name %s WHERE s.id = $1`, studentColumns, studentDetailFrom)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListDues returns students for a dues export. onlyPending keeps students with an outstanding balance.
func (r *StudentRepository) ListDues(ctx context.Context, params models.ExportJobParams) ([]models.StudentDetail, error) {
	filter := models.StudentFilter{}
	if params.ClassID != nil {
		filter.ClassID = *params.ClassID
	}
	if params.SessionID != nil {
		filter.SessionID = *params.SessionID
	}
	conditions, args := studentConditions(filter)
	if params.OnlyPending {
		conditions = append(conditions, "s.total_fee > s.paid_amount")
	}
	query := fmt.Sprintf(`SELECT %s, c.title AS class_title, ss.name AS session_name %s WHERE %s ORDER BY c.title ASC, s.student_name ASC`,
		studentColumns, studentDetailFrom, strings.Join(conditions, " AND "))
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list dues: %w", err)
	}
	return students, nil
}

// CreateAdmission inserts a student. When pendingID is set the pending registration is consumed in
// the same transaction; sql.ErrNoRows is returned if it no longer exists.
func (r *StudentRepository) CreateAdmission(ctx context.Context, student *models.Student, pendingID string) error {
	prepareStudent(student)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin admission tx: %w", err)
	}
	if pendingID != "" {
		var deleted string
		if err := tx.GetContext(ctx, &deleted, `DELETE FROM pending_students WHERE id = $1 RETURNING id`, pendingID); err != nil {
			_ = tx.Rollback()
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("consume pending registration: %w", err)
		}
	}
	if _, err := tx.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create student: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit admission tx: %w", err)
	}
	return nil
}

// Approve turns a pending registration into a student with a login account. The pending row is
// deleted first so that only one of several concurrent approvals succeeds; the others get
// sql.ErrNoRows.
func (r *StudentRepository) Approve(ctx context.Context, pendingID string, student *models.Student, user *models.User) error {
	prepareStudent(student)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval tx: %w", err)
	}
	var deleted string
	if err := tx.GetContext(ctx, &deleted, `DELETE FROM pending_students WHERE id = $1 RETURNING id`, pendingID); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("consume pending registration: %w", err)
	}
	if err := insertUser(ctx, tx, user); err != nil {
		_ = tx.Rollback()
		return err
	}
	student.UserID = &user.ID
	if _, err := tx.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create approved student: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval tx: %w", err)
	}
	return nil
}

func prepareStudent(student *models.Student) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	if student.Subjects == nil {
		student.Subjects = models.SubjectList{}
	}
	now := time.Now().UTC()
	if student.AdmissionDate.IsZero() {
		student.AdmissionDate = now
	}
	student.CreatedAt = now
	student.UpdatedAt = now
}

// RecordPayment locks the student row, lets apply validate and update the fee fields, then stores
// the payment and the new totals atomically.
func (r *StudentRepository) RecordPayment(ctx context.Context, payment *models.FeePayment, apply func(*models.Student) error) (*models.Student, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment tx: %w", err)
	}
	var student models.Student
	query := fmt.Sprintf(`SELECT %s FROM students s WHERE s.id = $1 FOR UPDATE`, studentColumns)
	if err := tx.GetContext(ctx, &student, query, payment.StudentID); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock student: %w", err)
	}
	if err := apply(&student); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	student.UpdatedAt = now
	const insertPayment = `INSERT INTO fee_payments (id, student_id, amount, collected_by, note, created_at)
        VALUES (:id, :student_id, :amount, :collected_by, :note, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertPayment, payment); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("create fee payment: %w", err)
	}
	const updateStudent = `UPDATE students SET paid_amount = :paid_amount, fee_status = :fee_status, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateStudent, &student); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("update student fee: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment tx: %w", err)
	}
	return &student, nil
}

// ListPayments returns the payments of a student, newest first.
func (r *StudentRepository) ListPayments(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	const query = `SELECT id, student_id, amount, collected_by, note, created_at FROM fee_payments WHERE student_id = $1 ORDER BY created_at DESC`
	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list fee payments: %w", err)
	}
	return payments, nil
}
