package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vuelacn/flightdesk/internal/agent"
	"github.com/vuelacn/flightdesk/internal/flights"
	"github.com/vuelacn/flightdesk/internal/tools"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

// Handler contains the HTTP handlers for the flight service
type Handler struct {
	service   *flights.Service
	registry  *tools.Registry
	assistant *agent.Service
	logger    *logger.Logger
	startedAt time.Time
}

// NewHandler creates a new API handler
func NewHandler(service *flights.Service, registry *tools.Registry, assistant *agent.Service, logger *logger.Logger) *Handler {
	return &Handler{
		service:   service,
		registry:  registry,
		assistant: assistant,
		logger:    logger.Named("api-handler"),
		startedAt: time.Now().UTC(),
	}
}

// reservationRequest is the body of reserve and cancel requests
type reservationRequest struct {
	Flight    string `json:"flight"`
	Seat      int    `json:"seat"`
	Passenger string `json:"passenger"`
}

// InvokeTool invokes a named tool with the JSON argument mapping from the
// request body. The response is always 200 with either the tool's success
// payload or {"error": message}: the orchestration layer consuming this
// endpoint distinguishes outcomes by payload shape, not status code.
func (h *Handler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// An empty body means a tool with no arguments
	var args map[string]any
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusOK, map[string]any{"error": "request body is not valid JSON"})
		return
	}

	result := h.registry.Invoke(r.Context(), name, args)
	respondJSON(w, http.StatusOK, result)
}

// ListTools returns the registered tool definitions
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"tools": h.registry.Definitions(),
	})
}

// GetFlightStatus returns the status record of a single flight
func (h *Handler) GetFlightStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetFlightOptions lists flights on a route with first-seat availability
func (h *Handler) GetFlightOptions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, err := h.service.ListOptions(r.Context(),
		query.Get("origin"),
		query.Get("destination"),
		query.Get("date"),
	)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CreateReservation reserves a seat
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorStatus(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	view, err := h.service.Reserve(r.Context(), req.Flight, req.Seat, req.Passenger)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// DeleteReservation cancels a reservation matching the full triple
func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorStatus(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	view, err := h.service.Cancel(r.Context(), req.Flight, req.Seat, req.Passenger)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// VerifyReservation reports whether a passenger holds a seat on a flight
func (h *Handler) VerifyReservation(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, err := h.service.Verify(r.Context(), query.Get("flight"), query.Get("passenger"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// chatRequest is the body of chat requests
type chatRequest struct {
	Message string `json:"message"`
}

// Chat forwards a user message to the assistant and returns its final output
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorStatus(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if req.Message == "" {
		h.respondErrorStatus(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	output, err := h.assistant.Chat(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, agent.ErrDisabled) {
			h.respondErrorStatus(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.Error("Chat request failed", logger.Error(err))
		h.respondErrorStatus(w, http.StatusBadGateway, "assistant request failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"output": output})
}

// GetHealth reports service liveness
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"uptime_secs": int(time.Since(h.startedAt).Seconds()),
	})
}

// respondError maps service errors to HTTP status codes. The body always has
// the {"error": message} shape regardless of the code.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, flights.ErrInvalidInput), errors.Is(err, flights.ErrInvalidSeat):
		status = http.StatusBadRequest
	case errors.Is(err, flights.ErrSeatTaken):
		status = http.StatusConflict
	case errors.Is(err, flights.ErrReservationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, flights.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		h.logger.Error("Store unavailable", logger.Error(err))
	}
	h.respondErrorStatus(w, status, err.Error())
}

func (h *Handler) respondErrorStatus(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
