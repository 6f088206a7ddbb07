package risk

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/internal/metrics"
	"github.com/quantfx/fx-risk-api/pkg/response"
)

// EvaluateRequest is the POST /api/v1/risk_manager payload.
type EvaluateRequest struct {
	ProposedSignal    ProposedSignal    `json:"proposed_signal_json"`
	AccountInfo       AccountState      `json:"account_info_json"`
	SymbolInfo        SymbolConstraints `json:"symbol_info"`
	PortfolioExposure PortfolioExposure `json:"portfolio_exposure_json"`
	BalanceConfig     RiskPolicy        `json:"balance_config"`
	CorrelationGroups CorrelationGroups `json:"correlation_groups_json"`
	Symbol            map[string]string `json:"symbol"`
	LotSizeToMargin   MarginMap         `json:"lot_size_to_margin_map"`
}

// Handlers contains the HTTP handlers for the risk engine
type Handlers struct {
	engine *Engine
	log    zerolog.Logger
}

// NewHandlers creates a new risk handlers instance
func NewHandlers(engine *Engine, log zerolog.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		log:    log.With().Str("handler", "risk").Logger(),
	}
}

// HandleEvaluate runs the engine on a full evaluation payload.
// POST /api/v1/risk_manager
func (h *Handlers) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("Malformed risk manager payload")
		response.BadRequest(w, response.CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	decision := h.engine.Evaluate(Input{
		Signal:      req.ProposedSignal,
		Account:     req.AccountInfo,
		Constraints: req.SymbolInfo,
		Exposure:    req.PortfolioExposure,
		Groups:      req.CorrelationGroups,
		Policy:      req.BalanceConfig,
		Margins:     req.LotSizeToMargin,
	})

	metrics.ObserveDecision(string(decision.Status))
	h.log.Info().
		Str("symbol", decision.Symbol).
		Str("status", string(decision.Status)).
		Msg("Risk manager request completed")

	response.Success(w, decision)
}
