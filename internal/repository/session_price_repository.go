package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

// SessionPriceRepository persists the owner-configured price of each session.
type SessionPriceRepository struct {
	db *sqlx.DB
}

// NewSessionPriceRepository constructs the repository.
func NewSessionPriceRepository(db *sqlx.DB) *SessionPriceRepository {
	return &SessionPriceRepository{db: db}
}

// Get fetches the price configured for a session. sql.ErrNoRows means none is configured.
func (r *SessionPriceRepository) Get(ctx context.Context, sessionID string) (*models.SessionPrice, error) {
	const query = `SELECT sp.session_id, s.name AS session_name, sp.price, sp.updated_by, sp.updated_at
FROM session_prices sp JOIN sessions s ON s.id = sp.session_id WHERE sp.session_id = $1`
	var price models.SessionPrice
	if err := r.db.GetContext(ctx, &price, query, sessionID); err != nil {
		return nil, err
	}
	return &price, nil
}

// List returns every configured price.
func (r *SessionPriceRepository) List(ctx context.Context) ([]models.SessionPrice, error) {
	const query = `SELECT sp.session_id, s.name AS session_name, sp.price, sp.updated_by, sp.updated_at
FROM session_prices sp JOIN sessions s ON s.id = sp.session_id ORDER BY s.name ASC`
	var prices []models.SessionPrice
	if err := r.db.SelectContext(ctx, &prices, query); err != nil {
		return nil, fmt.Errorf("list session prices: %w", err)
	}
	return prices, nil
}

// Upsert inserts or replaces the price of a session.
func (r *SessionPriceRepository) Upsert(ctx context.Context, price *models.SessionPrice) error {
	const query = `INSERT INTO session_prices (session_id, price, updated_by, updated_at)
VALUES (:session_id, :price, :updated_by, :updated_at)
ON CONFLICT (session_id)
DO UPDATE SET price = EXCLUDED.price, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	price.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, price); err != nil {
		return fmt.Errorf("upsert session price: %w", err)
	}
	return nil
}

// Delete removes the price of a session. sql.ErrNoRows is returned when none was configured.
func (r *SessionPriceRepository) Delete(ctx context.Context, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_prices WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session price: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session price rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
