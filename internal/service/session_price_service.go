package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/fee"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

const sessionPriceCachePrefix = "session_price:"

type sessionPriceRepository interface {
	Get(ctx context.Context, sessionID string) (*models.SessionPrice, error)
	List(ctx context.Context) ([]models.SessionPrice, error)
	Upsert(ctx context.Context, price *models.SessionPrice) error
	Delete(ctx context.Context, sessionID string) error
}

type sessionLookup interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

// SessionPriceService answers and maintains the fixed price configured per session.
type SessionPriceService struct {
	repo     sessionPriceRepository
	sessions sessionLookup
	audit    auditRepository
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSessionPriceService constructs the service. cache and metrics may be nil.
func NewSessionPriceService(repo sessionPriceRepository, sessions sessionLookup, audit auditRepository, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *SessionPriceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionPriceService{repo: repo, sessions: sessions, audit: audit, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

func sessionPriceKey(sessionID string) string {
	return sessionPriceCachePrefix + sessionID
}

// Lookup reports whether the session has a price. Sessions without one answer found=false.
func (s *SessionPriceService) Lookup(ctx context.Context, sessionID string) (*dto.SessionPriceLookup, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}

	var cached dto.SessionPriceLookup
	if s.cache.Get(ctx, sessionPriceKey(sessionID), &cached) {
		s.metrics.RecordPriceLookup(cached.Found)
		return &cached, nil
	}

	price, err := s.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lookup := &dto.SessionPriceLookup{Found: price.Valid}
	if price.Valid {
		lookup.Price = price.Decimal
	}
	s.cache.Set(ctx, sessionPriceKey(sessionID), lookup, s.cacheTTL)
	s.metrics.RecordPriceLookup(lookup.Found)
	return lookup, nil
}

// Resolve returns the exact configured price, or an invalid NullDecimal when none is set.
func (s *SessionPriceService) Resolve(ctx context.Context, sessionID string) (decimal.NullDecimal, error) {
	price, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NullDecimal{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session price")
	}
	if !price.Price.IsPositive() {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(price.Price), nil
}

// List returns every configured session price.
func (s *SessionPriceService) List(ctx context.Context) ([]models.SessionPrice, error) {
	prices, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list session prices")
	}
	return prices, nil
}

// Set configures the price of a session. Only owners may change prices.
func (s *SessionPriceService) Set(ctx context.Context, sessionID string, req dto.SetSessionPriceRequest, actor Actor) (*models.SessionPrice, error) {
	if actor.Role != models.RoleOwner {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the owner can configure session prices")
	}
	if !req.Price.IsPositive() {
		return nil, appErrors.Validation(&fee.ValidationError{Field: "price", Message: "Session price must be greater than 0"})
	}
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	previous, _ := s.Resolve(ctx, sessionID)
	price := &models.SessionPrice{SessionID: session.ID, SessionName: session.Name, Price: req.Price}
	if actor.UserID != "" {
		uid := actor.UserID
		price.UpdatedBy = &uid
	}
	if err := s.repo.Upsert(ctx, price); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session price")
	}
	s.cache.Invalidate(ctx, sessionPriceKey(sessionID))

	var old interface{}
	if previous.Valid {
		old = map[string]string{"price": previous.Decimal.String()}
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionSessionPriceSet, "session_price", sessionID, old, map[string]string{"price": req.Price.String()})
	s.logger.Info("session price set", zap.String("session_id", sessionID), zap.String("price", req.Price.String()))
	return price, nil
}

// Delete removes a session's price so admissions fall back to manual fee entry.
func (s *SessionPriceService) Delete(ctx context.Context, sessionID string, actor Actor) error {
	if actor.Role != models.RoleOwner {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owner can configure session prices")
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no price configured for this session")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session price")
	}
	s.cache.Invalidate(ctx, sessionPriceKey(sessionID))
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionSessionPriceClear, "session_price", sessionID, nil, nil)
	return nil
}
