package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/pkg/storage"
)

type duesStub struct {
	students []models.StudentDetail
	params   models.ExportJobParams
}

func (d *duesStub) ListDues(ctx context.Context, params models.ExportJobParams) ([]models.StudentDetail, error) {
	d.params = params
	return d.students, nil
}

func strPtr(s string) *string { return &s }

func dueStudent(name, total, paid string) models.StudentDetail {
	t := decimal.RequireFromString(total)
	p := decimal.RequireFromString(paid)
	return models.StudentDetail{
		Student: models.Student{
			StudentName: name,
			FatherName:  "Father of " + name,
			Group:       "A",
			ParentPhone: "0300",
			TotalFee:    t,
			PaidAmount:  p,
			FeeStatus:   models.FeeStatusPartial,
		},
		ClassTitle:  strPtr("Physics"),
		SessionName: strPtr("2026"),
	}
}

func newExportServiceForTest(t *testing.T, dues *duesStub) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(dues, store, signer, ExportConfig{APIPrefix: "/api", ResultTTL: time.Hour}, zap.NewNop())
	return svc, store
}

func TestBuildDuesDatasetTotals(t *testing.T) {
	ds := BuildDuesDataset([]models.StudentDetail{
		dueStudent("Ayesha", "5000", "2000"),
		dueStudent("Bilal", "4000", "4000"),
	}, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "Fee Dues 2026-03-01", ds.Title)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "3000.00", ds.Rows[0]["Balance"])
	assert.Equal(t, "Physics", ds.Rows[0]["Class"])
	assert.Equal(t, "9000.00", ds.Footer["Total Fee"])
	assert.Equal(t, "6000.00", ds.Footer["Paid"])
	assert.Equal(t, "3000.00", ds.Footer["Balance"])
	assert.Equal(t, "Total (2)", ds.Footer["Student"])
}

func TestExportServiceGenerateCSV(t *testing.T) {
	dues := &duesStub{students: []models.StudentDetail{dueStudent("Ayesha", "5000", "2000")}}
	svc, store := newExportServiceForTest(t, dues)
	job := &models.ExportJob{ID: "job-1", Params: models.ExportJobParams{Format: models.ExportFormatCSV, OnlyPending: true}}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "dues/job-1.csv", result.RelativePath)
	assert.True(t, strings.HasPrefix(result.URL, "/api/reports/download/"))
	assert.True(t, dues.params.OnlyPending)

	f, err := store.Open(result.RelativePath)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Ayesha")
	assert.Contains(t, string(body), "Total (1)")

	grant, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", grant.JobID)
}

func TestExportServiceGenerateXLSXAndPDF(t *testing.T) {
	dues := &duesStub{students: []models.StudentDetail{dueStudent("Ayesha", "5000", "2000")}}
	svc, _ := newExportServiceForTest(t, dues)

	for _, format := range []models.ExportFormat{models.ExportFormatXLSX, models.ExportFormatPDF} {
		result, err := svc.Generate(context.Background(), &models.ExportJob{ID: "job-" + string(format), Params: models.ExportJobParams{Format: format}})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.RelativePath, "."+string(format)))
	}
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newExportServiceForTest(t, &duesStub{})
	_, err := svc.Generate(context.Background(), &models.ExportJob{ID: "job-x", Params: models.ExportJobParams{Format: "docx"}})
	require.Error(t, err)
}
