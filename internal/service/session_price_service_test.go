package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

type sessionPriceRepoStub struct {
	prices map[string]models.SessionPrice
	gets   int
}

func (r *sessionPriceRepoStub) Get(ctx context.Context, sessionID string) (*models.SessionPrice, error) {
	r.gets++
	p, ok := r.prices[sessionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *sessionPriceRepoStub) List(ctx context.Context) ([]models.SessionPrice, error) {
	out := make([]models.SessionPrice, 0, len(r.prices))
	for _, p := range r.prices {
		out = append(out, p)
	}
	return out, nil
}

func (r *sessionPriceRepoStub) Upsert(ctx context.Context, price *models.SessionPrice) error {
	r.prices[price.SessionID] = *price
	return nil
}

func (r *sessionPriceRepoStub) Delete(ctx context.Context, sessionID string) error {
	if _, ok := r.prices[sessionID]; !ok {
		return sql.ErrNoRows
	}
	delete(r.prices, sessionID)
	return nil
}

type sessionsStub struct{}

func (sessionsStub) FindByID(ctx context.Context, id string) (*models.Session, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Session{ID: id, Name: "Session " + id}, nil
}

type memoryCache struct {
	items map[string][]byte
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func newSessionPriceServiceForTest() (*SessionPriceService, *sessionPriceRepoStub, *auditStub) {
	repo := &sessionPriceRepoStub{prices: map[string]models.SessionPrice{
		"s1": {SessionID: "s1", Price: amount("5000")},
		"s0": {SessionID: "s0", Price: decimal.Zero},
	}}
	audit := &auditStub{}
	metrics := NewMetricsService()
	cache := NewCacheService(&memoryCache{items: map[string][]byte{}}, metrics, time.Minute, nil, true)
	return NewSessionPriceService(repo, sessionsStub{}, audit, cache, metrics, time.Minute, nil), repo, audit
}

func TestLookupFoundAndCached(t *testing.T) {
	svc, repo, _ := newSessionPriceServiceForTest()
	ctx := context.Background()

	first, err := svc.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, first.Found)
	assert.True(t, first.Price.Equal(decimal.NewFromInt(5000)))

	second, err := svc.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, repo.gets)
}

func TestLookupWithoutPrice(t *testing.T) {
	svc, _, _ := newSessionPriceServiceForTest()

	missing, err := svc.Lookup(context.Background(), "s9")
	require.NoError(t, err)
	assert.False(t, missing.Found)

	zero, err := svc.Lookup(context.Background(), "s0")
	require.NoError(t, err)
	assert.False(t, zero.Found)

	_, err = svc.Lookup(context.Background(), " ")
	require.Error(t, err)
}

func TestSetSessionPriceOwnerOnly(t *testing.T) {
	svc, _, audit := newSessionPriceServiceForTest()
	ctx := context.Background()
	req := dto.SetSessionPriceRequest{Price: amount("6000")}

	_, err := svc.Set(ctx, "s1", req, Actor{Role: models.RoleAdmin})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Set(ctx, "s1", dto.SetSessionPriceRequest{Price: decimal.Zero}, Actor{Role: models.RoleOwner})
	assert.Equal(t, "price", appErrors.FieldOf(err))

	_, err = svc.Set(ctx, "missing", req, Actor{Role: models.RoleOwner})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, audit.logs)
}

func TestSetSessionPriceInvalidatesCache(t *testing.T) {
	svc, _, audit := newSessionPriceServiceForTest()
	ctx := context.Background()

	_, err := svc.Lookup(ctx, "s1")
	require.NoError(t, err)

	saved, err := svc.Set(ctx, "s1", dto.SetSessionPriceRequest{Price: amount("6000")}, Actor{UserID: "owner-1", Role: models.RoleOwner})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", *saved.UpdatedBy)

	lookup, err := svc.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "6000", lookup.Price.String())

	require.Len(t, audit.logs, 1)
	assert.JSONEq(t, `{"price":"5000"}`, string(audit.logs[0].OldValues))
	assert.JSONEq(t, `{"price":"6000"}`, string(audit.logs[0].NewValues))
}

func TestDeleteSessionPrice(t *testing.T) {
	svc, _, _ := newSessionPriceServiceForTest()
	ctx := context.Background()
	owner := Actor{Role: models.RoleOwner}

	require.NoError(t, svc.Delete(ctx, "s1", owner))
	lookup, err := svc.Lookup(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, lookup.Found)

	err = svc.Delete(ctx, "s1", owner)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
