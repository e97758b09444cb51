package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", "token-1", time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestSessionPriceDecodesEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/config/session-price/session-2025", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"found": true, "price": 5000},
		})
	})

	lookup, err := client.SessionPrice(context.Background(), "session-2025")
	require.NoError(t, err)
	assert.True(t, lookup.Found)
	assert.Equal(t, "5000", lookup.Price.String())
}

func TestBackendMessageIsSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "Paid amount (3500) cannot exceed total fee (3000)",
			"error":   map[string]interface{}{"code": "VALIDATION_ERROR", "message": "Paid amount (3500) cannot exceed total fee (3000)", "status": 400},
			"meta":    map[string]interface{}{"field": "paidAmount"},
		})
	})

	_, err := client.CreateAdmission(context.Background(), dto.CreateAdmissionRequest{StudentName: "Ayesha"})
	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Equal(t, "paidAmount", apiErr.FieldName())
	assert.Equal(t, "Paid amount (3500) cannot exceed total fee (3000)", apiErr.Error())
}

func TestFallbackMessageWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.Pending(context.Background())
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, err.Error())
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestNetworkErrorUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := New(srv.URL, "", 200*time.Millisecond)

	_, err := client.Sessions(context.Background(), models.SessionStatusActive)
	require.Error(t, err)
	assert.Equal(t, FallbackMessage, err.Error())
	assert.Equal(t, 0, StatusOf(err))
}

func TestApproveSendsBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/public/approve/p1", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "class-1", body["classId"])
		assert.Equal(t, false, body["collectFee"])
		assert.Equal(t, "0", body["paidAmount"])
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"student":     map[string]interface{}{"_id": "s1", "studentName": "Ayesha"},
				"credentials": map[string]interface{}{"username": "ayesha.khan1234", "password": "abcdefghij"},
			},
		})
	})

	res, err := client.Approve(context.Background(), "p1", dto.ApproveRequest{ClassID: "class-1", PaidAmount: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.Student.ID)
	assert.Equal(t, "ayesha.khan1234", res.Credentials.Username)
}

func TestStudentsCarriesQueryAndPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "partial", r.URL.Query().Get("feeStatus"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("classId"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"data":       []map[string]interface{}{{"_id": "s1"}},
			"pagination": map[string]interface{}{"page": 2, "pageSize": 20, "totalCount": 21},
		})
	})

	students, page, err := client.Students(context.Background(), StudentQuery{FeeStatus: models.FeeStatusPartial, Page: 2})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NotNil(t, page)
	assert.Equal(t, 21, page.TotalCount)
}

func TestDraftCallsHandleNoContent(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.SaveDraft(context.Background(), models.AdmissionDraft{StudentName: "Ayesha"}))
	require.NoError(t, client.ClearDraft(context.Background()))
	assert.Equal(t, []string{http.MethodPut, http.MethodDelete}, methods)
}
