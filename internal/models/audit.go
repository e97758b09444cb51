package models

import "time"

// Audit actions recorded by the admissions workflow.
const (
	AuditActionLogin             = "LOGIN"
	AuditActionLogout            = "LOGOUT"
	AuditActionPasswordChange    = "PASSWORD_CHANGE"
	AuditActionSessionPriceSet   = "SESSION_PRICE_SET"
	AuditActionSessionPriceClear = "SESSION_PRICE_CLEAR"
	AuditActionAdmissionCreate   = "ADMISSION_CREATE"
	AuditActionPendingApprove    = "PENDING_APPROVE"
	AuditActionPendingReject     = "PENDING_REJECT"
	AuditActionFeeCollect        = "FEE_COLLECT"
	AuditActionReportDownload    = "REPORT_DOWNLOAD"
	AuditActionUserCreate        = "USER_CREATE"
	AuditActionUserUpdate        = "USER_UPDATE"
	AuditActionUserDeactivate    = "USER_DEACTIVATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
