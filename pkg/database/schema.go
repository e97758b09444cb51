package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema creates every table the API reads or writes. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(120) UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT UNIQUE NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		revoked_at TIMESTAMPTZ,
		ip_address VARCHAR(64) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_id UUID,
		action VARCHAR(60) NOT NULL,
		resource VARCHAR(60) NOT NULL,
		resource_id TEXT,
		old_values JSONB,
		new_values JSONB,
		ip_address VARCHAR(64) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		status VARCHAR(20) NOT NULL,
		start_date DATE,
		end_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS session_prices (
		session_id UUID PRIMARY KEY REFERENCES sessions(id) ON DELETE CASCADE,
		price NUMERIC(12,2) NOT NULL CHECK (price > 0),
		updated_by UUID,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS classes (
		id UUID PRIMARY KEY,
		title VARCHAR(120) NOT NULL,
		subjects JSONB NOT NULL DEFAULT '[]',
		subject_fee NUMERIC(12,2),
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS pending_students (
		id UUID PRIMARY KEY,
		student_name VARCHAR(120) NOT NULL,
		father_name VARCHAR(120) NOT NULL,
		gender VARCHAR(20) NOT NULL DEFAULT '',
		class_id UUID REFERENCES classes(id) ON DELETE SET NULL,
		session_id UUID REFERENCES sessions(id) ON DELETE SET NULL,
		group_name VARCHAR(60) NOT NULL DEFAULT '',
		subjects JSONB NOT NULL DEFAULT '[]',
		student_phone VARCHAR(30) NOT NULL DEFAULT '',
		parent_phone VARCHAR(30) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		photo TEXT NOT NULL DEFAULT '',
		proposed_fee NUMERIC(12,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		student_name VARCHAR(120) NOT NULL,
		father_name VARCHAR(120) NOT NULL,
		gender VARCHAR(20) NOT NULL DEFAULT '',
		class_id UUID NOT NULL REFERENCES classes(id),
		session_id UUID REFERENCES sessions(id),
		group_name VARCHAR(60) NOT NULL,
		subjects JSONB NOT NULL DEFAULT '[]',
		student_phone VARCHAR(30) NOT NULL DEFAULT '',
		parent_phone VARCHAR(30) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		photo TEXT NOT NULL DEFAULT '',
		admission_date TIMESTAMPTZ NOT NULL,
		total_fee NUMERIC(12,2) NOT NULL CHECK (total_fee > 0),
		paid_amount NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (paid_amount >= 0 AND paid_amount <= total_fee),
		discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (discount_amount >= 0),
		session_rate NUMERIC(12,2),
		fee_status VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		user_id UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS fee_payments (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
		amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
		collected_by UUID,
		note VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS export_jobs (
		id UUID PRIMARY KEY,
		params JSONB NOT NULL,
		status VARCHAR(20) NOT NULL,
		progress INT NOT NULL DEFAULT 0,
		result_url TEXT,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at TIMESTAMPTZ,
		error_message TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_class_session ON students (class_id, session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fee_payments_student ON fee_payments (student_id, created_at DESC)`,
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
