package signal

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/pkg/response"
)

// Handlers contains the HTTP handlers for signal analysis
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new signal handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "signal").Logger(),
	}
}

// HandleAnalyze runs cached signal analysis.
// POST /api/v1/signal
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("Malformed signal payload")
		response.BadRequest(w, response.CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	if err := req.CacheKey.Validate(); err != nil {
		response.BadRequest(w, response.CodeInvalidCacheKey, err.Error())
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", req.Symbol).Msg("Signal analysis failed")
		response.Error(w, http.StatusBadGateway, response.CodeSignalServiceError, err.Error())
		return
	}

	h.log.Info().
		Str("symbol", req.Symbol).
		Str("timeframe", req.Timeframe).
		Str("signal", result.Signal).
		Msg("Signal request completed")

	response.Success(w, result)
}
