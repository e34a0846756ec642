package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"travelmatch/internal/domain"
	"travelmatch/internal/middleware"
	"travelmatch/internal/service"
)

const dateLayout = "2006-01-02"

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for posting a trip.
type CreateTripRequest struct {
	FromCountry   string `json:"from_country"`
	FromState     string `json:"from_state,omitempty"`
	FromCity      string `json:"from_city"`
	ToCountry     string `json:"to_country"`
	ToCity        string `json:"to_city"`
	TravelDate    string `json:"travel_date"`
	DepartureTime string `json:"departure_time"`
	ArrivalDate   string `json:"arrival_date,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
	Airline       string `json:"airline,omitempty"`
	FlightNumber  string `json:"flight_number,omitempty"`
}

// TripResponse is the wire representation of a trip.
type TripResponse struct {
	ID            string `json:"id"`
	HostID        string `json:"host_id"`
	FromCountry   string `json:"from_country"`
	FromState     string `json:"from_state,omitempty"`
	FromCity      string `json:"from_city"`
	ToCountry     string `json:"to_country"`
	ToCity        string `json:"to_city"`
	TravelDate    string `json:"travel_date"`
	DepartureTime string `json:"departure_time"`
	ArrivalDate   string `json:"arrival_date,omitempty"`
	ArrivalTime   string `json:"arrival_time,omitempty"`
	Airline       string `json:"airline,omitempty"`
	FlightNumber  string `json:"flight_number,omitempty"`
	Status        string `json:"status"`
}

// MyTripResponse is a trip annotated with its match state.
type MyTripResponse struct {
	TripResponse
	MatchState string `json:"match_state"`
}

// ReceivedMatchResponse is a received match request. Contact fields are
// present only for accepted matches.
type ReceivedMatchResponse struct {
	MatchID       string       `json:"match_id"`
	Status        string       `json:"status"`
	RequesterTrip TripResponse `json:"requester_trip"`
	RequesterName string       `json:"requester_name"`
	Phone         *string      `json:"phone,omitempty"`
	Whatsapp      *string      `json:"whatsapp,omitempty"`
	Email         *string      `json:"email,omitempty"`
}

// Create handles POST /v1/trips
func (h *TripHandler) Create(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	travelDate, err := parseDate(req.TravelDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "travel_date must be YYYY-MM-DD"})
		return
	}

	arrivalDate, err := parseDate(req.ArrivalDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "arrival_date must be YYYY-MM-DD"})
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), service.CreateTripRequest{
		HostID:        middleware.HostID(c),
		FromCountry:   req.FromCountry,
		FromState:     req.FromState,
		FromCity:      req.FromCity,
		ToCountry:     req.ToCountry,
		ToCity:        req.ToCity,
		TravelDate:    travelDate,
		DepartureTime: req.DepartureTime,
		ArrivalDate:   arrivalDate,
		ArrivalTime:   req.ArrivalTime,
		Airline:       req.Airline,
		FlightNumber:  req.FlightNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// Search handles GET /v1/trips/search
func (h *TripHandler) Search(c *gin.Context) {
	var travelDate time.Time
	if raw := c.Query("travel_date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "travel_date must be YYYY-MM-DD"})
			return
		}
		travelDate = parsed
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	trips, err := h.tripService.Search(c.Request.Context(), service.SearchTripsRequest{
		FromCountry: c.Query("from_country"),
		ToCountry:   c.Query("to_country"),
		TravelDate:  travelDate,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]TripResponse, len(trips))
	for i, t := range trips {
		result[i] = toTripResponse(t)
	}

	respondJSON(c, http.StatusOK, gin.H{"trips": result})
}

// MyTrips handles GET /v1/trips/mine
func (h *TripHandler) MyTrips(c *gin.Context) {
	trips, err := h.tripService.MyTrips(c.Request.Context(), middleware.HostID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]MyTripResponse, len(trips))
	for i, t := range trips {
		result[i] = MyTripResponse{
			TripResponse: toTripResponse(&t.Trip),
			MatchState:   string(t.MatchState),
		}
	}

	respondJSON(c, http.StatusOK, gin.H{"trips": result})
}

// Received handles GET /v1/matches/received
func (h *TripHandler) Received(c *gin.Context) {
	received, err := h.tripService.ReceivedRequests(c.Request.Context(), middleware.HostID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]ReceivedMatchResponse, len(received))
	for i, rm := range received {
		result[i] = ReceivedMatchResponse{
			MatchID:       rm.Match.ID,
			Status:        string(rm.Match.Status),
			RequesterTrip: toTripResponse(&rm.RequesterTrip),
			RequesterName: rm.RequesterName,
			Phone:         rm.Phone,
			Whatsapp:      rm.Whatsapp,
			Email:         rm.Email,
		}
	}

	respondJSON(c, http.StatusOK, gin.H{"matches": result})
}

func toTripResponse(t *domain.Trip) TripResponse {
	resp := TripResponse{
		ID:            t.ID,
		HostID:        t.HostID,
		FromCountry:   t.FromCountry,
		FromState:     t.FromState,
		FromCity:      t.FromCity,
		ToCountry:     t.ToCountry,
		ToCity:        t.ToCity,
		TravelDate:    t.TravelDate.Format(dateLayout),
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		Airline:       t.Airline,
		FlightNumber:  t.FlightNumber,
		Status:        string(t.Status),
	}
	if !t.ArrivalDate.IsZero() {
		resp.ArrivalDate = t.ArrivalDate.Format(dateLayout)
	}
	return resp
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}
