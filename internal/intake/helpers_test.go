package intake

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/pkg/apiclient"
)

type fakeAPI struct {
	mu          sync.Mutex
	prices      map[string]float64
	failPrices  bool
	priceCalls  map[string]int
	admissions  []dto.CreateAdmissionRequest
	admitStatus int
	approvals   map[string]dto.ApproveRequest
	rejections  map[string]string
	hold        map[string]chan struct{}
	arrived     map[string]chan struct{}
	admitHold   chan struct{}
	admitArrive chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		prices:     map[string]float64{"session-2025": 5000},
		priceCalls: map[string]int{},
		approvals:  map[string]dto.ApproveRequest{},
		rejections: map[string]string{},
		hold:       map[string]chan struct{}{},
		arrived:    map[string]chan struct{}{},
	}
}

func (f *fakeAPI) client(t *testing.T) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL+"/api", "desk-token", time.Second)
}

func (f *fakeAPI) priceCallCount(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.priceCalls[sessionID]
}

func (f *fakeAPI) admissionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.admissions)
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	switch {
	case strings.HasPrefix(path, "/config/session-price/"):
		f.servePrice(w, strings.TrimPrefix(path, "/config/session-price/"))
	case path == "/students" && r.Method == http.MethodPost:
		var req dto.CreateAdmissionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.admissions = append(f.admissions, req)
		status := f.admitStatus
		hold, arrive := f.admitHold, f.admitArrive
		f.mu.Unlock()
		if arrive != nil {
			close(arrive)
		}
		if hold != nil {
			<-hold
		}
		if status != 0 {
			reply(w, status, map[string]interface{}{"success": false, "message": "Class is full"})
			return
		}
		reply(w, http.StatusCreated, map[string]interface{}{"success": true, "data": map[string]interface{}{"_id": "student-1", "studentName": req.StudentName}})
	case strings.HasPrefix(path, "/public/approve/"):
		var req dto.ApproveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		id := strings.TrimPrefix(path, "/public/approve/")
		f.mu.Lock()
		f.approvals[id] = req
		f.mu.Unlock()
		reply(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{
			"student":     map[string]interface{}{"_id": "student-" + id},
			"credentials": map[string]interface{}{"username": "ayesha.khan1234", "password": "pw"},
		}})
	case strings.HasPrefix(path, "/public/reject/"):
		var req dto.RejectRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.rejections[strings.TrimPrefix(path, "/public/reject/")] = req.Reason
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		reply(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "not found"})
	}
}

func (f *fakeAPI) servePrice(w http.ResponseWriter, sessionID string) {
	f.mu.Lock()
	f.priceCalls[sessionID]++
	price, found := f.prices[sessionID]
	fail := f.failPrices
	hold := f.hold[sessionID]
	arrived := f.arrived[sessionID]
	f.mu.Unlock()

	if arrived != nil {
		close(arrived)
	}
	if hold != nil {
		<-hold
	}
	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	reply(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{"found": found, "price": price}})
}

func reply(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type memoryDrafts struct {
	mu     sync.Mutex
	draft  *models.AdmissionDraft
	saves  int
	clears int
}

func (m *memoryDrafts) Load(ctx context.Context) (models.AdmissionDraft, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return models.AdmissionDraft{}, false, nil
	}
	return *m.draft, true, nil
}

func (m *memoryDrafts) Save(ctx context.Context, draft models.AdmissionDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = &draft
	m.saves++
	return nil
}

func (m *memoryDrafts) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = nil
	m.clears++
	return nil
}

func (m *memoryDrafts) current() *models.AdmissionDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

func fillIdentity(d *models.AdmissionDraft) {
	d.StudentName = "Ayesha Khan"
	d.FatherName = "Imran Khan"
	d.ClassID = "class-1"
	d.Group = "Pre-Medical"
	d.ParentPhone = "03001234567"
	d.Subjects = []string{"Biology", "Chemistry"}
}
