package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelmatch/internal/service"
)

// AdminHandler handles administrative HTTP requests.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// CancelTripResponse is the HTTP response for an administrative trip
// cancellation.
type CancelTripResponse struct {
	Trip             TripResponse `json:"trip"`
	CancelledMatches int64        `json:"cancelled_matches"`
}

// BlockHostResponse is the HTTP response for blocking a host.
type BlockHostResponse struct {
	HostID           string `json:"host_id"`
	CancelledTrips   int64  `json:"cancelled_trips"`
	CancelledMatches int64  `json:"cancelled_matches"`
}

// CancelTrip handles POST /v1/admin/trips/:id/cancel
func (h *AdminHandler) CancelTrip(c *gin.Context) {
	result, err := h.adminService.CancelTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CancelTripResponse{
		Trip:             toTripResponse(result.Trip),
		CancelledMatches: result.CancelledMatches,
	})
}

// ApproveHost handles POST /v1/admin/hosts/:id/approve
func (h *AdminHandler) ApproveHost(c *gin.Context) {
	hostID := c.Param("id")
	if err := h.adminService.ApproveHost(c.Request.Context(), hostID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"host_id": hostID, "verification": "APPROVED"})
}

// BlockHost handles POST /v1/admin/hosts/:id/block
func (h *AdminHandler) BlockHost(c *gin.Context) {
	hostID := c.Param("id")
	result, err := h.adminService.BlockHost(c.Request.Context(), hostID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, BlockHostResponse{
		HostID:           hostID,
		CancelledTrips:   result.CancelledTrips,
		CancelledMatches: result.CancelledMatches,
	})
}
