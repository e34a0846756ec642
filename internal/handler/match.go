package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelmatch/internal/domain"
	"travelmatch/internal/middleware"
	"travelmatch/internal/service"
)

// MatchHandler handles HTTP requests for match lifecycle actions.
type MatchHandler struct {
	matchService *service.MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// MatchActionRequest is the HTTP request body for all match actions.
type MatchActionRequest struct {
	TripID        string `json:"trip_id"`
	MatchedTripID string `json:"matched_trip_id"`
}

// MatchActionResponse is the HTTP response for a successful match action.
type MatchActionResponse struct {
	MatchID          string `json:"match_id"`
	TripID           string `json:"trip_id"`
	MatchedTripID    string `json:"matched_trip_id"`
	Status           string `json:"status"`
	WhatsappUnlocked bool   `json:"whatsapp_unlocked"`
}

// Request handles POST /v1/matches/request
func (h *MatchHandler) Request(c *gin.Context) {
	h.perform(c, domain.MatchActionRequest, http.StatusCreated)
}

// Accept handles POST /v1/matches/accept
func (h *MatchHandler) Accept(c *gin.Context) {
	h.perform(c, domain.MatchActionAccept, http.StatusOK)
}

// Reject handles POST /v1/matches/reject
func (h *MatchHandler) Reject(c *gin.Context) {
	h.perform(c, domain.MatchActionReject, http.StatusOK)
}

// Cancel handles POST /v1/matches/cancel
func (h *MatchHandler) Cancel(c *gin.Context) {
	h.perform(c, domain.MatchActionCancel, http.StatusOK)
}

func (h *MatchHandler) perform(c *gin.Context, action domain.MatchAction, okStatus int) {
	var req MatchActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.matchService.PerformAction(c.Request.Context(), service.MatchActionRequest{
		ActingHostID:  middleware.HostID(c),
		TripID:        req.TripID,
		MatchedTripID: req.MatchedTripID,
		Action:        action,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, okStatus, MatchActionResponse{
		MatchID:          result.Match.ID,
		TripID:           result.Match.TripID,
		MatchedTripID:    result.Match.MatchedTripID,
		Status:           string(result.Match.Status),
		WhatsappUnlocked: result.WhatsappUnlocked,
	})
}
