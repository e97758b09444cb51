package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
)

type classRepoStub struct {
	classes    map[string]models.Class
	lastFilter models.ClassFilter
}

func (r *classRepoStub) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, error) {
	r.lastFilter = filter
	out := make([]models.Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	return out, nil
}

func (r *classRepoStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (r *classRepoStub) Create(ctx context.Context, class *models.Class) error {
	class.ID = "class-new"
	r.classes[class.ID] = *class
	return nil
}

func (r *classRepoStub) Update(ctx context.Context, class *models.Class) error {
	r.classes[class.ID] = *class
	return nil
}

type sessionRepoStub struct {
	sessions map[string]models.Session
}

func (r *sessionRepoStub) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	out := make([]models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if filter.Status == "" || s.Status == filter.Status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *sessionRepoStub) FindByID(ctx context.Context, id string) (*models.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r *sessionRepoStub) Create(ctx context.Context, session *models.Session) error {
	session.ID = "session-new"
	r.sessions[session.ID] = *session
	return nil
}

func (r *sessionRepoStub) Update(ctx context.Context, session *models.Session) error {
	r.sessions[session.ID] = *session
	return nil
}

func TestClassServiceCreateTrimsSubjects(t *testing.T) {
	repo := &classRepoStub{classes: map[string]models.Class{}}
	svc := NewClassService(repo, nil, nil)

	class, err := svc.Create(context.Background(), dto.ClassRequest{Title: " Hifz ", Subjects: []string{"Tajweed", " Arabic "}})
	require.NoError(t, err)
	assert.Equal(t, "Hifz", class.Title)
	assert.Equal(t, models.StringList{"Tajweed", "Arabic"}, class.Subjects)

	_, err = svc.Create(context.Background(), dto.ClassRequest{Title: "Nazra", SubjectFee: decimal.NewNullDecimal(decimal.NewFromInt(-1))})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassServiceListAndUpdate(t *testing.T) {
	repo := &classRepoStub{classes: map[string]models.Class{"c1": {ID: "c1", Title: "Hifz", Status: models.ClassStatusActive}}}
	svc := NewClassService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, models.ClassFilter{Status: "archived"})
	require.Error(t, err)

	classes, err := svc.List(ctx, models.ClassFilter{Status: models.ClassStatusActive})
	require.NoError(t, err)
	assert.Len(t, classes, 1)
	assert.Equal(t, models.ClassStatusActive, repo.lastFilter.Status)

	updated, err := svc.Update(ctx, "c1", dto.ClassRequest{Title: "Hifz II", Status: models.ClassStatusInactive})
	require.NoError(t, err)
	assert.Equal(t, models.ClassStatusInactive, updated.Status)

	_, err = svc.Update(ctx, "c9", dto.ClassRequest{Title: "Ghost"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceDates(t *testing.T) {
	repo := &sessionRepoStub{sessions: map[string]models.Session{}}
	svc := NewSessionService(repo, nil, nil)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	_, err := svc.Create(context.Background(), dto.SessionRequest{Name: "2025", Status: models.SessionStatusActive, StartDate: &start, EndDate: &end})
	require.Error(t, err)

	end = start.AddDate(1, 0, 0)
	session, err := svc.Create(context.Background(), dto.SessionRequest{Name: " 2025 ", Status: models.SessionStatusUpcoming, StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, "2025", session.Name)

	_, err = svc.Create(context.Background(), dto.SessionRequest{Name: "2026", Status: "paused"})
	require.Error(t, err)
}

func TestSessionServiceListFilter(t *testing.T) {
	repo := &sessionRepoStub{sessions: map[string]models.Session{
		"a": {ID: "a", Status: models.SessionStatusActive},
		"b": {ID: "b", Status: models.SessionStatusCompleted},
	}}
	svc := NewSessionService(repo, nil, nil)

	active, err := svc.List(context.Background(), models.SessionFilter{Status: models.SessionStatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = svc.List(context.Background(), models.SessionFilter{Status: "bogus"})
	require.Error(t, err)
}
