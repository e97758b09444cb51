package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

const pendingColumns = `id, student_name, father_name, gender, class_id, session_id, group_name, subjects,
        student_phone, parent_phone, address, photo, proposed_fee, created_at`

// PendingStudentRepository stores public portal registrations awaiting review.
type PendingStudentRepository struct {
	db *sqlx.DB
}

// NewPendingStudentRepository constructs the repository.
func NewPendingStudentRepository(db *sqlx.DB) *PendingStudentRepository {
	return &PendingStudentRepository{db: db}
}

// Create inserts a pending registration.
func (r *PendingStudentRepository) Create(ctx context.Context, pending *models.PendingStudent) error {
	if pending.ID == "" {
		pending.ID = uuid.NewString()
	}
	if pending.Subjects == nil {
		pending.Subjects = models.StringList{}
	}
	pending.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO pending_students (id, student_name, father_name, gender, class_id, session_id, group_name, subjects,
        student_phone, parent_phone, address, photo, proposed_fee, created_at)
        VALUES (:id, :student_name, :father_name, :gender, :class_id, :session_id, :group_name, :subjects,
        :student_phone, :parent_phone, :address, :photo, :proposed_fee, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pending); err != nil {
		return fmt.Errorf("create pending student: %w", err)
	}
	return nil
}

// List returns pending registrations, oldest first.
func (r *PendingStudentRepository) List(ctx context.Context) ([]models.PendingStudent, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_students ORDER BY created_at ASC`
	var pending []models.PendingStudent
	if err := r.db.SelectContext(ctx, &pending, query); err != nil {
		return nil, fmt.Errorf("list pending students: %w", err)
	}
	return pending, nil
}

// FindByID fetches a pending registration.
func (r *PendingStudentRepository) FindByID(ctx context.Context, id string) (*models.PendingStudent, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_students WHERE id = $1`
	var pending models.PendingStudent
	if err := r.db.GetContext(ctx, &pending, query, id); err != nil {
		return nil, err
	}
	return &pending, nil
}

// Delete removes a pending registration. sql.ErrNoRows is returned when it does not exist.
func (r *PendingStudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pending student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pending student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
