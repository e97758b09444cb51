package dto

import "github.com/noah-isme/academy-desk-api/internal/models"

// DuesExportRequest captures POST /reports/dues payload.
type DuesExportRequest struct {
	Format      models.ExportFormat `json:"format" validate:"required,oneof=csv pdf xlsx"`
	ClassID     *string             `json:"classId,omitempty"`
	SessionID   *string             `json:"sessionId,omitempty"`
	OnlyPending bool                `json:"onlyPending"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
