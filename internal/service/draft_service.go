package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

type draftRepository interface {
	Load(ctx context.Context, userID string) ([]byte, bool, error)
	Save(ctx context.Context, userID string, payload []byte, ttl time.Duration) error
	Clear(ctx context.Context, userID string) error
}

// DraftService keeps one admission draft slot per staff user.
type DraftService struct {
	repo   draftRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewDraftService constructs DraftService. A zero ttl keeps drafts until cleared.
func NewDraftService(repo draftRepository, ttl time.Duration, logger *zap.Logger) *DraftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{repo: repo, ttl: ttl, logger: logger}
}

// Load returns the caller's draft. A corrupt stored draft is reported as not found.
func (s *DraftService) Load(ctx context.Context, userID string) (*dto.DraftResponse, error) {
	raw, ok, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	if !ok {
		return &dto.DraftResponse{}, nil
	}
	var draft models.AdmissionDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		s.logger.Warn("discarding malformed admission draft", zap.String("user_id", userID), zap.Error(err))
		return &dto.DraftResponse{}, nil
	}
	return &dto.DraftResponse{Found: true, Draft: draft}, nil
}

// Save overwrites the caller's draft. Saving an empty form clears the slot.
func (s *DraftService) Save(ctx context.Context, userID string, draft models.AdmissionDraft) error {
	if draft.IsEmpty() {
		return s.Clear(ctx, userID)
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode draft")
	}
	if err := s.repo.Save(ctx, userID, payload, s.ttl); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return nil
}

// Clear removes the caller's draft.
func (s *DraftService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear draft")
	}
	return nil
}
