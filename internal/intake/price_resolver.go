package intake

import (
	"context"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
)

type priceFetcher interface {
	SessionPrice(ctx context.Context, sessionID string) (*dto.SessionPriceLookup, error)
}

// PriceResult is the outcome of one session price lookup.
type PriceResult struct {
	Token     uint64
	SessionID string
	// Price is null when the session has no usable price or the lookup failed.
	Price decimal.NullDecimal
}

// SessionPriceResolver looks up session prices and tells callers when a newer selection has
// superseded their lookup.
type SessionPriceResolver struct {
	client priceFetcher
	latest atomic.Uint64
	logger *zap.Logger
}

// NewSessionPriceResolver builds a resolver over client.
func NewSessionPriceResolver(client priceFetcher, logger *zap.Logger) *SessionPriceResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionPriceResolver{client: client, logger: logger}
}

// Resolve fetches the price for sessionID. The boolean is false when another Resolve started
// after this one; the caller must then drop the result. An empty id resolves immediately to no
// price. Lookup failures resolve to no price and are never retried.
func (r *SessionPriceResolver) Resolve(ctx context.Context, sessionID string) (PriceResult, bool) {
	return r.Fetch(ctx, r.Begin(), sessionID)
}

// Begin claims the token for a new selection and supersedes every earlier one. Callers that
// record the selection elsewhere should call Begin under the same lock.
func (r *SessionPriceResolver) Begin() uint64 {
	return r.latest.Add(1)
}

// Fetch looks up sessionID for a token obtained from Begin.
func (r *SessionPriceResolver) Fetch(ctx context.Context, token uint64, sessionID string) (PriceResult, bool) {
	result := PriceResult{Token: token, SessionID: sessionID}
	if sessionID == "" {
		return result, r.Current(token)
	}

	lookup, err := r.client.SessionPrice(ctx, sessionID)
	switch {
	case err != nil:
		r.logger.Debug("session price lookup failed, using manual fee", zap.String("session_id", sessionID), zap.Error(err))
	case lookup != nil && lookup.Found && lookup.Price.IsPositive():
		result.Price = decimal.NewNullDecimal(lookup.Price)
	}

	if !r.Current(token) {
		r.logger.Debug("discarding stale session price", zap.String("session_id", sessionID), zap.Uint64("token", token))
		return result, false
	}
	return result, true
}

// Current reports whether token belongs to the most recent Resolve call.
func (r *SessionPriceResolver) Current(token uint64) bool {
	return r.latest.Load() == token
}
