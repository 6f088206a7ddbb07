package tracking

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/pkg/response"
)

// Handlers contains the HTTP handlers for tracking data
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new tracking handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "tracking").Logger(),
	}
}

// HandleSave persists one order's audit trail.
// POST /api/v1/tracking_data
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, response.CodeMissingField, err.Error())
		return
	}

	result, err := h.service.Save(req)
	if err != nil {
		h.log.Error().Err(err).Str("login", req.Login).Str("ticket", req.Ticket).Msg("Failed to save tracking data")
		response.Error(w, http.StatusInternalServerError, response.CodeTrackingServiceError, err.Error())
		return
	}

	h.log.Info().Str("login", req.Login).Str("ticket", req.Ticket).Msg("Tracking data request completed")
	response.Success(w, result)
}
