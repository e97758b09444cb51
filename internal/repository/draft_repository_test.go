package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

func TestDraftRepositoryRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewDraftRepository(client)
	ctx := context.Background()
	payload := []byte(`{"studentName":"Ayesha"}`)

	assert.Equal(t, "academy_sparkle_admission_draft:user-1", DraftKey("user-1"))

	mock.ExpectSet(DraftKey("user-1"), payload, 0).SetVal("OK")
	mock.ExpectGet(DraftKey("user-1")).SetVal(string(payload))
	mock.ExpectDel(DraftKey("user-1")).SetVal(1)
	mock.ExpectGet(DraftKey("user-1")).RedisNil()

	require.NoError(t, repo.Save(ctx, "user-1", payload, 0))
	raw, ok, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, string(payload), string(raw))

	require.NoError(t, repo.Clear(ctx, "user-1"))
	_, ok, err = repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDraftRepositoryLoadError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewDraftRepository(client)

	mock.ExpectGet(DraftKey("user-1")).SetErr(errors.New("connection refused"))

	_, _, err := repo.Load(context.Background(), "user-1")
	require.Error(t, err)
}

func TestCacheRepositoryMissAndHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)
	ctx := context.Background()

	mock.ExpectGet("session_price:s1").RedisNil()
	mock.ExpectGet("session_price:s2").SetVal(`{"found":true,"price":5000}`)
	mock.ExpectGet("session_price:s3").SetVal(`not-json`)
	mock.ExpectDel("session_price:s1", "session_price:s2").SetVal(2)

	var dest struct {
		Found bool    `json:"found"`
		Price float64 `json:"price"`
	}
	assert.ErrorIs(t, repo.Get(ctx, "session_price:s1", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Get(ctx, "session_price:s2", &dest))
	assert.True(t, dest.Found)
	assert.Equal(t, 5000.0, dest.Price)
	assert.ErrorIs(t, repo.Get(ctx, "session_price:s3", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Delete(ctx, "session_price:s1", "session_price:s2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", "v", 0))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
}
