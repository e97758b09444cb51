package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academy-desk-api/internal/dto"
)

type priceStub struct {
	lookup *dto.SessionPriceLookup
	err    error
	calls  int
}

func (s *priceStub) SessionPrice(ctx context.Context, sessionID string) (*dto.SessionPriceLookup, error) {
	s.calls++
	return s.lookup, s.err
}

func TestResolverFoundPrice(t *testing.T) {
	stub := &priceStub{lookup: &dto.SessionPriceLookup{Found: true, Price: decimal.NewFromInt(5000)}}
	r := NewSessionPriceResolver(stub, nil)

	res, ok := r.Resolve(context.Background(), "s1")
	assert.True(t, ok)
	assert.True(t, res.Price.Valid)
	assert.Equal(t, "5000", res.Price.Decimal.String())
	assert.Equal(t, "s1", res.SessionID)
}

func TestResolverNoPrice(t *testing.T) {
	cases := []struct {
		name string
		stub *priceStub
	}{
		{"not found", &priceStub{lookup: &dto.SessionPriceLookup{Found: false}}},
		{"zero price", &priceStub{lookup: &dto.SessionPriceLookup{Found: true, Price: decimal.Zero}}},
		{"error", &priceStub{err: errors.New("timeout")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewSessionPriceResolver(tc.stub, nil)
			res, ok := r.Resolve(context.Background(), "s1")
			assert.True(t, ok)
			assert.False(t, res.Price.Valid)
			assert.Equal(t, 1, tc.stub.calls)
		})
	}
}

func TestResolverEmptyIDSkipsLookup(t *testing.T) {
	stub := &priceStub{}
	r := NewSessionPriceResolver(stub, nil)

	res, ok := r.Resolve(context.Background(), "")
	assert.True(t, ok)
	assert.False(t, res.Price.Valid)
	assert.Zero(t, stub.calls)
}

func TestResolverTokensIncrease(t *testing.T) {
	r := NewSessionPriceResolver(&priceStub{lookup: &dto.SessionPriceLookup{}}, nil)

	first, _ := r.Resolve(context.Background(), "a")
	second, _ := r.Resolve(context.Background(), "b")
	assert.Greater(t, second.Token, first.Token)
	assert.False(t, r.Current(first.Token))
	assert.True(t, r.Current(second.Token))
}

func TestFetchDropsSupersededToken(t *testing.T) {
	stub := &priceStub{lookup: &dto.SessionPriceLookup{Found: true, Price: decimal.NewFromInt(5000)}}
	r := NewSessionPriceResolver(stub, nil)

	token := r.Begin()
	r.Begin()
	res, ok := r.Fetch(context.Background(), token, "a")
	assert.False(t, ok)
	assert.Equal(t, token, res.Token)
	assert.Equal(t, 1, stub.calls)
}
