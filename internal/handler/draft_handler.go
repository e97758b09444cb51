package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/pkg/response"
)

type draftService interface {
	Load(ctx context.Context, userID string) (*dto.DraftResponse, error)
	Save(ctx context.Context, userID string, draft models.AdmissionDraft) error
	Clear(ctx context.Context, userID string) error
}

// DraftHandler exposes the caller's admission draft slot.
type DraftHandler struct {
	drafts draftService
}

// NewDraftHandler constructs DraftHandler.
func NewDraftHandler(drafts draftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Get godoc
// @Summary Load admission draft
// @Tags Drafts
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.DraftResponse}
// @Router /drafts/admission [get]
func (h *DraftHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	draft, err := h.drafts.Load(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Save godoc
// @Summary Save admission draft
// @Tags Drafts
// @Accept json
// @Param payload body models.AdmissionDraft true "Draft"
// @Success 204
// @Router /drafts/admission [put]
func (h *DraftHandler) Save(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var draft models.AdmissionDraft
	if !bindJSON(c, &draft, "invalid draft payload") {
		return
	}
	if err := h.drafts.Save(c.Request.Context(), actor.UserID, draft); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Clear godoc
// @Summary Clear admission draft
// @Tags Drafts
// @Success 204
// @Router /drafts/admission [delete]
func (h *DraftHandler) Clear(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.drafts.Clear(c.Request.Context(), actor.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
