package intake

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
)

func TestFileDraftStoreRoundTrip(t *testing.T) {
	store := NewFileDraftStore(t.TempDir(), nil)
	ctx := context.Background()
	assert.Equal(t, models.DraftKey+".json", filepath.Base(store.Path()))

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	draft := models.AdmissionDraft{
		StudentName:     "Ayesha Khan",
		Subjects:        []string{"Biology", "Physics"},
		TotalFee:        "5000",
		PaidAmount:      "2000.50",
		IsCustomFeeMode: true,
		Photo:           "https://cdn.example.com/a.jpg",
	}
	require.NoError(t, store.Save(ctx, draft))

	loaded, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, draft, loaded)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, found, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileDraftStoreMalformed(t *testing.T) {
	store := NewFileDraftStore(t.TempDir(), nil)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	draft, found, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, models.AdmissionDraft{}, draft)
}

func TestFileDraftStoreDefaultsMissingFields(t *testing.T) {
	store := NewFileDraftStore(t.TempDir(), nil)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"studentName":"Ayesha","legacyField":1}`), 0o600))

	draft, found, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ayesha", draft.StudentName)
	assert.Empty(t, draft.TotalFee)
	assert.False(t, draft.IsCustomFeeMode)
}

func TestAdmissionDeskWithFileStore(t *testing.T) {
	api := newFakeAPI()
	dir := t.TempDir()
	ctx := context.Background()

	first := NewAdmissionDesk(api.client(t), NewFileDraftStore(dir, nil), nil)
	first.Update(ctx, fillIdentity)
	require.True(t, first.SelectSession(ctx, "session-2025"))
	require.NoError(t, first.SetPaidAmount(ctx, "2000"))

	second := NewAdmissionDesk(api.client(t), NewFileDraftStore(dir, nil), nil)
	restored, err := second.Start(ctx)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, first.Draft(), second.Draft())
	assert.Equal(t, "3000", second.State().Balance.String())
}

type draftClientStub struct {
	res     *dto.DraftResponse
	saved   *models.AdmissionDraft
	cleared bool
}

func (s *draftClientStub) LoadDraft(ctx context.Context) (*dto.DraftResponse, error) {
	return s.res, nil
}

func (s *draftClientStub) SaveDraft(ctx context.Context, draft models.AdmissionDraft) error {
	s.saved = &draft
	return nil
}

func (s *draftClientStub) ClearDraft(ctx context.Context) error {
	s.cleared = true
	return nil
}

func TestRemoteDraftStore(t *testing.T) {
	stub := &draftClientStub{res: &dto.DraftResponse{}}
	store := NewRemoteDraftStore(stub)
	ctx := context.Background()

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	stub.res = &dto.DraftResponse{Found: true, Draft: models.AdmissionDraft{StudentName: "Ayesha"}}
	draft, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ayesha", draft.StudentName)

	require.NoError(t, store.Save(ctx, draft))
	assert.Equal(t, "Ayesha", stub.saved.StudentName)
	require.NoError(t, store.Clear(ctx))
	assert.True(t, stub.cleared)
}
