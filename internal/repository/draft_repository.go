package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

// DraftRepository keeps one raw admission draft per user in Redis.
type DraftRepository struct {
	client *redis.Client
}

// NewDraftRepository constructs a draft repository.
func NewDraftRepository(client *redis.Client) *DraftRepository {
	return &DraftRepository{client: client}
}

// DraftKey returns the redis key of a user's draft slot.
func DraftKey(userID string) string {
	return models.DraftKey + ":" + userID
}

// Load returns the stored draft bytes. ok is false when no draft exists.
func (r *DraftRepository) Load(ctx context.Context, userID string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, DraftKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load draft: %w", err)
	}
	return raw, true, nil
}

// Save replaces the user's draft. A zero ttl keeps it until cleared.
func (r *DraftRepository) Save(ctx context.Context, userID string, payload []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, DraftKey(userID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Clear deletes the user's draft. Clearing a missing draft is not an error.
func (r *DraftRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, DraftKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
