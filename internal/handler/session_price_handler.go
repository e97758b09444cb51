package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/internal/service"
	"github.com/noah-isme/academy-desk-api/pkg/response"
)

type sessionPriceService interface {
	Lookup(ctx context.Context, sessionID string) (*dto.SessionPriceLookup, error)
	List(ctx context.Context) ([]models.SessionPrice, error)
	Set(ctx context.Context, sessionID string, req dto.SetSessionPriceRequest, actor service.Actor) (*models.SessionPrice, error)
	Delete(ctx context.Context, sessionID string, actor service.Actor) error
}

// SessionPriceHandler exposes the owner-configured session prices.
type SessionPriceHandler struct {
	prices sessionPriceService
}

// NewSessionPriceHandler constructs SessionPriceHandler.
func NewSessionPriceHandler(prices sessionPriceService) *SessionPriceHandler {
	return &SessionPriceHandler{prices: prices}
}

// Lookup godoc
// @Summary Session price
// @Description Returns found=false when the session has no configured price
// @Tags Configuration
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} response.Envelope{data=dto.SessionPriceLookup}
// @Router /config/session-price/{sessionId} [get]
func (h *SessionPriceHandler) Lookup(c *gin.Context) {
	lookup, err := h.prices.Lookup(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lookup, nil)
}

// List godoc
// @Summary List session prices
// @Tags Configuration
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /config/session-prices [get]
func (h *SessionPriceHandler) List(c *gin.Context) {
	prices, err := h.prices.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prices, nil)
}

// Set godoc
// @Summary Configure session price
// @Tags Configuration
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param payload body dto.SetSessionPriceRequest true "Price"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /config/session-price/{sessionId} [put]
func (h *SessionPriceHandler) Set(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.SetSessionPriceRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	price, err := h.prices.Set(c.Request.Context(), c.Param("sessionId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, price, nil)
}

// Delete godoc
// @Summary Remove session price
// @Tags Configuration
// @Param sessionId path string true "Session ID"
// @Success 204
// @Router /config/session-price/{sessionId} [delete]
func (h *SessionPriceHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.prices.Delete(c.Request.Context(), c.Param("sessionId"), actor); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
