package handler

import (
	"github.com/gin-gonic/gin"

	"travelmatch/internal/middleware"
	"travelmatch/internal/ws"
)

// WSHandler upgrades authenticated clients to a notification stream.
type WSHandler struct {
	hub *ws.Hub
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect handles GET /v1/ws
func (h *WSHandler) Connect(c *gin.Context) {
	h.hub.Serve(c, middleware.HostID(c))
}
