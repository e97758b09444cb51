package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
)

// Login exchanges staff credentials for a token pair. The client keeps using its current token;
// call SetToken with the returned access token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	body := map[string]string{"username": username, "password": password}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.RefreshTokenResponse, error) {
	var out models.RefreshTokenResponse
	body := map[string]string{"refreshToken": refreshToken}
	if _, err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes a refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, body, nil)
	return err
}

// Sessions lists sessions, optionally filtered by status.
func (c *Client) Sessions(ctx context.Context, status models.SessionStatus) ([]models.Session, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	var out []models.Session
	if _, err := c.do(ctx, http.MethodGet, "/sessions", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Classes lists classes, optionally filtered by status.
func (c *Client) Classes(ctx context.Context, status models.ClassStatus) ([]models.Class, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	var out []models.Class
	if _, err := c.do(ctx, http.MethodGet, "/classes", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionPrice looks up the configured price of a session.
func (c *Client) SessionPrice(ctx context.Context, sessionID string) (*dto.SessionPriceLookup, error) {
	var out dto.SessionPriceLookup
	if _, err := c.do(ctx, http.MethodGet, "/config/session-price/"+url.PathEscape(sessionID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SessionPrices lists every configured session price.
func (c *Client) SessionPrices(ctx context.Context) ([]models.SessionPrice, error) {
	var out []models.SessionPrice
	if _, err := c.do(ctx, http.MethodGet, "/config/session-prices", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSessionPrice configures the price of a session. Owner only.
func (c *Client) SetSessionPrice(ctx context.Context, sessionID string, price decimal.Decimal) (*models.SessionPrice, error) {
	var out models.SessionPrice
	body := dto.SetSessionPriceRequest{Price: price}
	if _, err := c.do(ctx, http.MethodPut, "/config/session-price/"+url.PathEscape(sessionID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSessionPrice removes the price of a session. Owner only.
func (c *Client) DeleteSessionPrice(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/config/session-price/"+url.PathEscape(sessionID), nil, nil, nil)
	return err
}

// CreateAdmission submits a new admission.
func (c *Client) CreateAdmission(ctx context.Context, req dto.CreateAdmissionRequest) (*models.Student, error) {
	var out models.Student
	if _, err := c.do(ctx, http.MethodPost, "/students", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StudentQuery filters ListStudents.
type StudentQuery struct {
	Search    string
	ClassID   string
	SessionID string
	FeeStatus models.FeeStatus
	Page      int
	Limit     int
}

func (q StudentQuery) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", q.Search)
	set("classId", q.ClassID)
	set("sessionId", q.SessionID)
	set("feeStatus", string(q.FeeStatus))
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Students lists admitted students.
func (c *Client) Students(ctx context.Context, q StudentQuery) ([]models.StudentDetail, *models.Pagination, error) {
	var out []models.StudentDetail
	env, err := c.do(ctx, http.MethodGet, "/students", q.values(), nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

// Student fetches one student.
func (c *Client) Student(ctx context.Context, id string) (*models.StudentDetail, error) {
	var out models.StudentDetail
	if _, err := c.do(ctx, http.MethodGet, "/students/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CollectPayment records an installment against a student's balance.
func (c *Client) CollectPayment(ctx context.Context, studentID string, req dto.CollectPaymentRequest) (*dto.CollectPaymentResponse, error) {
	var out dto.CollectPaymentResponse
	if _, err := c.do(ctx, http.MethodPost, "/students/"+url.PathEscape(studentID)+"/payments", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Payments lists the installments collected from a student.
func (c *Client) Payments(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	var out []models.FeePayment
	if _, err := c.do(ctx, http.MethodGet, "/students/"+url.PathEscape(studentID)+"/payments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Register submits a public portal registration.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*models.PendingStudent, error) {
	var out models.PendingStudent
	if _, err := c.do(ctx, http.MethodPost, "/public/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pending lists registrations awaiting review.
func (c *Client) Pending(ctx context.Context) ([]models.PendingStudent, error) {
	var out []models.PendingStudent
	if _, err := c.do(ctx, http.MethodGet, "/public/pending", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Approve converts a pending registration into an active student.
func (c *Client) Approve(ctx context.Context, pendingID string, req dto.ApproveRequest) (*dto.ApproveResponse, error) {
	var out dto.ApproveResponse
	if _, err := c.do(ctx, http.MethodPost, "/public/approve/"+url.PathEscape(pendingID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reject discards a pending registration.
func (c *Client) Reject(ctx context.Context, pendingID, reason string) error {
	_, err := c.do(ctx, http.MethodDelete, "/public/reject/"+url.PathEscape(pendingID), nil, dto.RejectRequest{Reason: reason}, nil)
	return err
}

// LoadDraft reads the caller's server-side admission draft.
func (c *Client) LoadDraft(ctx context.Context) (*dto.DraftResponse, error) {
	var out dto.DraftResponse
	if _, err := c.do(ctx, http.MethodGet, "/drafts/admission", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveDraft replaces the caller's server-side admission draft.
func (c *Client) SaveDraft(ctx context.Context, draft models.AdmissionDraft) error {
	_, err := c.do(ctx, http.MethodPut, "/drafts/admission", nil, draft, nil)
	return err
}

// ClearDraft removes the caller's server-side admission draft.
func (c *Client) ClearDraft(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/drafts/admission", nil, nil, nil)
	return err
}

// CreateDuesExport queues a dues export.
func (c *Client) CreateDuesExport(ctx context.Context, req dto.DuesExportRequest) (*dto.ExportJobResponse, error) {
	var out dto.ExportJobResponse
	if _, err := c.do(ctx, http.MethodPost, "/reports/dues", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportStatus polls a dues export.
func (c *Client) ExportStatus(ctx context.Context, jobID string) (*dto.ExportStatusResponse, error) {
	var out dto.ExportStatusResponse
	if _, err := c.do(ctx, http.MethodGet, "/reports/"+url.PathEscape(jobID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser adds a staff account. Owner only.
func (c *Client) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*models.User, error) {
	var out models.User
	if _, err := c.do(ctx, http.MethodPost, "/users", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists staff accounts matching search.
func (c *Client) Users(ctx context.Context, search string) ([]models.User, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	var out []models.User
	if _, err := c.do(ctx, http.MethodGet, "/users", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeactivateUser disables a staff account.
func (c *Client) DeactivateUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
	return err
}
