package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelmatch/internal/domain"
	"travelmatch/internal/service"
)

// HostHandler handles HTTP requests for host registration and login.
type HostHandler struct {
	authService *service.AuthService
}

// NewHostHandler creates a new HostHandler.
func NewHostHandler(authService *service.AuthService) *HostHandler {
	return &HostHandler{authService: authService}
}

// RegisterHostRequest is the HTTP request body for registering a host.
type RegisterHostRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
}

// LoginRequest is the HTTP request body for logging in.
type LoginRequest struct {
	Email string `json:"email"`
}

// HostResponse is the wire representation of a host.
type HostResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Verification string `json:"verification"`
}

// SessionResponse is the HTTP response for register and login.
type SessionResponse struct {
	Host  HostResponse `json:"host"`
	Token string       `json:"token"`
}

// Register handles POST /v1/hosts/register
func (h *HostHandler) Register(c *gin.Context) {
	var req RegisterHostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	host, token, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Whatsapp: req.Whatsapp,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SessionResponse{
		Host:  toHostResponse(host),
		Token: token,
	})
}

// Login handles POST /v1/hosts/login
func (h *HostHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	host, token, err := h.authService.Login(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SessionResponse{
		Host:  toHostResponse(host),
		Token: token,
	})
}

func toHostResponse(host *domain.Host) HostResponse {
	return HostResponse{
		ID:           host.ID,
		Name:         host.Name,
		Email:        host.Email,
		Verification: string(host.Verification),
	}
}
