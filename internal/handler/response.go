package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travelmatch/internal/repository"
	"travelmatch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrHostNotFound),
		errors.Is(err, service.ErrTripNotFound),
		errors.Is(err, service.ErrMatchNotFound):
		return http.StatusNotFound

	// Validation and state errors - Bad Request
	case errors.Is(err, service.ErrInvalidHostID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrSelfMatch),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrMissingOrigin),
		errors.Is(err, service.ErrMissingDestination),
		errors.Is(err, service.ErrMissingTravelDate),
		errors.Is(err, service.ErrMissingDepartureTime),
		errors.Is(err, service.ErrMissingName),
		errors.Is(err, service.ErrMissingEmail),
		errors.Is(err, service.ErrMatchNotPending),
		errors.Is(err, service.ErrMatchNotAccepted),
		errors.Is(err, service.ErrTripNotActive):
		return http.StatusBadRequest

	// Authorization errors
	case errors.Is(err, service.ErrNotTripOwner),
		errors.Is(err, service.ErrOwnTripTarget),
		errors.Is(err, service.ErrNotMatchRecipient),
		errors.Is(err, service.ErrNotMatchParty),
		errors.Is(err, service.ErrHostNotApproved),
		errors.Is(err, service.ErrHostBlocked):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrMatchAlreadyExists),
		errors.Is(err, service.ErrTripAlreadyCancelled),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
