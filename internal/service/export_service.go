package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/pkg/export"
	"github.com/noah-isme/academy-desk-api/pkg/storage"
)

var duesHeaders = []string{"Student", "Father", "Class", "Session", "Group", "Parent Phone", "Total Fee", "Paid", "Discount", "Balance", "Status"}

type duesSource interface {
	ListDues(ctx context.Context, params models.ExportJobParams) ([]models.StudentDetail, error)
}

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Open(relPath string) (*os.File, error)
	Delete(relPath string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult describes a rendered and stored export.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders dues datasets and stores them behind signed download links.
type ExportService struct {
	dues    duesSource
	storage fileStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(dues duesSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{dues: dues, storage: files, signer: signer, logger: logger, cfg: cfg, now: time.Now}
}

// Generate renders the job's dues report and stores it.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, err := export.ForFormat(string(job.Params.Format))
	if err != nil {
		return nil, err
	}
	students, err := s.dues.ListDues(ctx, job.Params)
	if err != nil {
		return nil, fmt.Errorf("load dues: %w", err)
	}
	payload, err := renderer.Render(BuildDuesDataset(students, s.now()))
	if err != nil {
		return nil, fmt.Errorf("render dues: %w", err)
	}

	relPath, err := s.storage.Save(fmt.Sprintf("dues/%s.%s", job.ID, renderer.Extension()), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}
	s.logger.Debug("dues export stored", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("rows", len(students)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/reports/download/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// BuildDuesDataset tabulates students with a totals footer.
func BuildDuesDataset(students []models.StudentDetail, generatedAt time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	var total, paid, discount, balance decimal.Decimal
	for _, st := range students {
		b := st.Balance()
		rows = append(rows, map[string]string{
			"Student":      st.StudentName,
			"Father":       st.FatherName,
			"Class":        deref(st.ClassTitle),
			"Session":      deref(st.SessionName),
			"Group":        st.Group,
			"Parent Phone": st.ParentPhone,
			"Total Fee":    st.TotalFee.StringFixed(2),
			"Paid":         st.PaidAmount.StringFixed(2),
			"Discount":     st.DiscountAmount.StringFixed(2),
			"Balance":      b.StringFixed(2),
			"Status":       string(st.FeeStatus),
		})
		total = total.Add(st.TotalFee)
		paid = paid.Add(st.PaidAmount)
		discount = discount.Add(st.DiscountAmount)
		balance = balance.Add(b)
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Fee Dues %s", generatedAt.UTC().Format("2006-01-02")),
		Headers: duesHeaders,
		Rows:    rows,
		Footer: map[string]string{
			"Student":   fmt.Sprintf("Total (%d)", len(students)),
			"Total Fee": total.StringFixed(2),
			"Paid":      paid.StringFixed(2),
			"Discount":  discount.StringFixed(2),
			"Balance":   balance.StringFixed(2),
		},
	}
}

// ParseToken validates a download token.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.Grant, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
