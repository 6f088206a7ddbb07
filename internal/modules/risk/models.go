package risk

import (
	"encoding/json"
	"fmt"

	"github.com/quantfx/fx-risk-api/internal/domain"
)

// Status is the terminal disposition of an evaluation.
type Status string

const (
	// StatusContinue - the order may proceed to execution with the computed size.
	StatusContinue Status = "CONTINUE"
	// StatusSkip - this specific symbol is disqualified.
	StatusSkip Status = "SKIP"
	// StatusStopTrade - the whole portfolio must pause.
	StatusStopTrade Status = "STOP_TRADE"
	// StatusHold - the trade concept is valid but untradeable at current size/margin.
	StatusHold Status = "HOLD"
)

// ProposedSignal is the trade proposal under evaluation. The engine never
// mutates it; the take-profit may be overwritten in the Decision only.
type ProposedSignal struct {
	Symbol             string                `json:"symbol"`
	Direction          domain.TradeDirection `json:"signal_type"`
	OrderKind          domain.OrderKind      `json:"order_type_proposed"`
	EntryPrice         float64               `json:"entry_price_proposed"`
	StopLoss           float64               `json:"stop_loss_proposed"`
	TakeProfit         float64               `json:"take_profit_proposed"`
	WinProbability     float64               `json:"estimate_win_probability"`
	TrailingStopLoss   json.RawMessage       `json:"trailing_stop_loss,omitempty"`
	TechnicalReasoning string                `json:"technical_reasoning,omitempty"`
}

// AccountState is a read-only account snapshot. Equity is the basis for all
// percentage-of-risk math.
type AccountState struct {
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Profit   float64 `json:"profit"` // floating P/L
	Leverage float64 `json:"leverage"`
}

// SymbolConstraints carries the exchange-defined sizing and tick parameters
// for the signal's symbol.
type SymbolConstraints struct {
	VolumeMin  float64 `json:"volume_min"`
	VolumeMax  float64 `json:"volume_max"`
	VolumeStep float64 `json:"volume_step"`
	TickSize   float64 `json:"trade_tick_size"`
	TickValue  float64 `json:"trade_tick_value"` // USD value of one tick for 1.0 lot
}

// ActivePosition is an open position in the portfolio.
type ActivePosition struct {
	Symbol    string                `json:"symbol"`
	Direction domain.TradeDirection `json:"type"`
	Profit    float64               `json:"profit"`
}

// PendingOrder is a resting order in the portfolio.
type PendingOrder struct {
	Symbol string `json:"symbol"`
	Ticket int64  `json:"ticket"`
}

// ExposureSummary carries aggregates precomputed by the portfolio aggregator.
// The engine trusts these values and never derives them from the raw lists.
type ExposureSummary struct {
	TotalPotentialLossUSD float64 `json:"total_potential_loss_from_portfolio_usd"`
	TotalMarginUsedUSD    float64 `json:"total_margin_used_from_portfolio_usd"`
}

// PortfolioExposure is the current portfolio snapshot.
type PortfolioExposure struct {
	ActivePositions []ActivePosition `json:"active_positions"`
	PendingOrders   []PendingOrder   `json:"pending_orders"`
	Summary         ExposureSummary  `json:"summary"`
}

// CorrelationGroups maps a group name to the symbols considered correlated.
// A symbol belongs to at most one group for sizing purposes.
type CorrelationGroups map[string][]string

// GroupFor resolves the correlation group containing the symbol, if any.
func (g CorrelationGroups) GroupFor(symbol string) (string, bool) {
	for name, symbols := range g {
		for _, s := range symbols {
			if s == symbol {
				return name, true
			}
		}
	}
	return "", false
}

// RiskPolicy holds the per-account risk limits.
type RiskPolicy struct {
	PerTradeRiskCapPct float64 `json:"max_risk"`       // per-trade cap, percent of equity
	TotalRiskCapPct    float64 `json:"total_max_risk"` // whole-portfolio cap, percent of equity
	MaxPositions       int     `json:"max_position"`
}

// MarginTable is the injected pricing capability: required USD margin for a
// quantized lot size, keyed by the lot formatted to 2 decimals. Absence of a
// key means "cannot safely size this candidate", not an error.
type MarginTable interface {
	Lookup(lotKey string) (float64, bool)
}

// MarginMap is the plain map-backed MarginTable used by the HTTP payload.
type MarginMap map[string]float64

// Lookup implements MarginTable.
func (m MarginMap) Lookup(lotKey string) (float64, bool) {
	margin, ok := m[lotKey]
	return margin, ok
}

// MarginKey formats a lot size the way MarginTable keys are built.
func MarginKey(lot float64) string {
	return fmt.Sprintf("%.2f", lot)
}

// Input bundles the immutable snapshots a single evaluation runs over.
type Input struct {
	Signal      ProposedSignal
	Account     AccountState
	Constraints SymbolConstraints
	Exposure    PortfolioExposure
	Groups      CorrelationGroups
	Policy      RiskPolicy
	Margins     MarginTable
}

// Decision is the uniform evaluation result. Whenever Status is not CONTINUE
// every execution-numeric field is nil and Signal is forced to HOLD.
// TrailingStopLoss and TechnicalReasoning are copied through verbatim from
// the proposed signal regardless of status.
type Decision struct {
	Signal              domain.TradeDirection `json:"signal"`
	Status              Status                `json:"status"`
	LotSize             *float64              `json:"lot_size"`
	EntryPrice          *float64              `json:"entry_price"`
	StopLoss            *float64              `json:"stop_loss"`
	TakeProfit          *float64              `json:"take_profit"`
	TrailingStopLoss    json.RawMessage       `json:"trailing_stop_loss,omitempty"`
	OrderKind           *domain.OrderKind     `json:"order_type"`
	WinProbability      *float64              `json:"estimate_win_probability"`
	Symbol              string                `json:"symbol"`
	EstimateProfit      *float64              `json:"estimate_profit"`
	EstimateLoss        *float64              `json:"estimate_loss"`
	TechnicalReasoning  string                `json:"technical_reasoning,omitempty"`
	RiskRewardBefore    *float64              `json:"risk_reward_before"`
	RiskRewardAfter     *float64              `json:"risk_reward_after"`
	CorrelatedSymbols   []string              `json:"correlated_symbols,omitempty"`
	DeletePendingOrders []int64               `json:"delete_pending_orders,omitempty"`
	Reason              string                `json:"reason,omitempty"`
}
