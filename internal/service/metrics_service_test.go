package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-desk-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/classes", http.StatusOK, 10*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordAdmission("locked", decimal.NewFromInt(2000))
	m.RecordApproval(false, decimal.Zero)
	m.RecordRejection()
	m.RecordPriceLookup(true)
	m.RecordExportJob(models.ExportFormatCSV, models.ExportStatusFinished)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.Equal(t, 0.5, snap.CacheHitRatio)
	assert.Equal(t, uint64(1), snap.Admissions)
	assert.Equal(t, uint64(1), snap.Approvals)
	assert.Equal(t, uint64(1), snap.Rejections)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "academy_admissions_total")
	assert.Contains(t, w.Body.String(), "academy_fee_collected_total 2000")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordAdmission("manual", decimal.NewFromInt(1))
	m.RecordCacheOperation(true, 0)
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())
}
