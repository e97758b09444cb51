package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/internal/service"
	appErrors "github.com/noah-isme/academy-desk-api/pkg/errors"
	"github.com/noah-isme/academy-desk-api/pkg/response"
)

type pendingService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*models.PendingStudent, error)
	List(ctx context.Context) ([]models.PendingStudent, error)
	Approve(ctx context.Context, pendingID string, req dto.ApproveRequest, actor service.Actor) (*dto.ApproveResponse, error)
	Reject(ctx context.Context, pendingID string, req dto.RejectRequest, actor service.Actor) error
}

// PendingHandler exposes the public registration portal and the verification hub.
type PendingHandler struct {
	pending pendingService
}

// NewPendingHandler constructs PendingHandler.
func NewPendingHandler(pending pendingService) *PendingHandler {
	return &PendingHandler{pending: pending}
}

// Register godoc
// @Summary Self registration
// @Tags Verification
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Router /public/register [post]
func (h *PendingHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req, "invalid registration payload") {
		return
	}
	pending, err := h.pending.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pending)
}

// List godoc
// @Summary Pending registrations
// @Tags Verification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/pending [get]
func (h *PendingHandler) List(c *gin.Context) {
	pending, err := h.pending.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil)
}

// Approve godoc
// @Summary Approve registration
// @Description Admits the student and returns one-time login credentials
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Pending registration ID"
// @Param payload body dto.ApproveRequest true "Approval"
// @Success 200 {object} response.Envelope{data=dto.ApproveResponse}
// @Failure 404 {object} response.Envelope
// @Router /public/approve/{id} [post]
func (h *PendingHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.ApproveRequest
	if !bindJSON(c, &req, "invalid approval payload") {
		return
	}
	res, err := h.pending.Approve(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Reject godoc
// @Summary Reject registration
// @Tags Verification
// @Accept json
// @Param id path string true "Pending registration ID"
// @Param payload body dto.RejectRequest false "Reason"
// @Success 204
// @Router /public/reject/{id} [delete]
func (h *PendingHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
		return
	}
	if err := h.pending.Reject(c.Request.Context(), c.Param("id"), req, actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
