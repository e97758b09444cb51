// Package intake drives the front-desk admission and approval forms against the API.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
)

// DraftStore keeps the single in-progress admission draft.
type DraftStore interface {
	Load(ctx context.Context) (models.AdmissionDraft, bool, error)
	Save(ctx context.Context, draft models.AdmissionDraft) error
	Clear(ctx context.Context) error
}

// FileDraftStore stores the draft as plain JSON in a file named after models.DraftKey.
type FileDraftStore struct {
	path   string
	logger *zap.Logger
}

// NewFileDraftStore keeps the draft file inside dir.
func NewFileDraftStore(dir string, logger *zap.Logger) *FileDraftStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	return &FileDraftStore{path: filepath.Join(dir, models.DraftKey+".json"), logger: logger}
}

// Path returns the draft file location.
func (s *FileDraftStore) Path() string {
	return s.path
}

// Load returns the saved draft. A corrupt file is logged and treated as absent.
func (s *FileDraftStore) Load(ctx context.Context) (models.AdmissionDraft, bool, error) {
	var draft models.AdmissionDraft
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return draft, false, nil
	}
	if err != nil {
		return draft, false, fmt.Errorf("read draft: %w", err)
	}
	if err := json.Unmarshal(data, &draft); err != nil {
		s.logger.Warn("discarding malformed admission draft", zap.String("path", s.path), zap.Error(err))
		return models.AdmissionDraft{}, false, nil
	}
	return draft, true, nil
}

// Save replaces the draft file.
func (s *FileDraftStore) Save(ctx context.Context, draft models.AdmissionDraft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace draft: %w", err)
	}
	return nil
}

// Clear removes the draft file.
func (s *FileDraftStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove draft: %w", err)
	}
	return nil
}

type draftClient interface {
	LoadDraft(ctx context.Context) (*dto.DraftResponse, error)
	SaveDraft(ctx context.Context, draft models.AdmissionDraft) error
	ClearDraft(ctx context.Context) error
}

// RemoteDraftStore keeps the draft in the caller's server-side slot.
type RemoteDraftStore struct {
	client draftClient
}

// NewRemoteDraftStore wraps the API draft endpoints.
func NewRemoteDraftStore(client draftClient) *RemoteDraftStore {
	return &RemoteDraftStore{client: client}
}

// Load fetches the saved draft. An empty slot reports false with no error.
func (s *RemoteDraftStore) Load(ctx context.Context) (models.AdmissionDraft, bool, error) {
	res, err := s.client.LoadDraft(ctx)
	if err != nil {
		return models.AdmissionDraft{}, false, err
	}
	if !res.Found {
		return models.AdmissionDraft{}, false, nil
	}
	return res.Draft, true, nil
}

// Save replaces the server-side draft.
func (s *RemoteDraftStore) Save(ctx context.Context, draft models.AdmissionDraft) error {
	return s.client.SaveDraft(ctx, draft)
}

// Clear empties the server-side slot.
func (s *RemoteDraftStore) Clear(ctx context.Context) error {
	return s.client.ClearDraft(ctx)
}
