package signal

import (
	"encoding/json"
	"fmt"
	"time"
)

// CacheKey identifies one analysis scope. Two requests with the same key
// within the cache TTL share one analyzer call.
type CacheKey struct {
	Timezone  string `json:"timezone"`
	Timeframe string `json:"timeframe"`
	Symbol    string `json:"symbol"`
}

// Validate checks that all key components are present
func (k CacheKey) Validate() error {
	if k.Timezone == "" || k.Timeframe == "" || k.Symbol == "" {
		return fmt.Errorf("cache_key requires timezone, timeframe and symbol")
	}
	return nil
}

// String renders the key the way cache entries are addressed,
// e.g. "signal:GMT+3.0:H4:EURUSD".
func (k CacheKey) String() string {
	return fmt.Sprintf("signal:%s:%s:%s", k.Timezone, k.Timeframe, k.Symbol)
}

// AnalyzeRequest is the POST /api/v1/signal payload. The market snapshot
// blocks are opaque to the service; they are forwarded to the analyzer as-is.
type AnalyzeRequest struct {
	CacheKey             CacheKey        `json:"cache_key"`
	Symbol               string          `json:"symbol"`
	Timeframe            string          `json:"timeframe"`
	AccountInfo          json.RawMessage `json:"account_info"`
	BalanceConfig        json.RawMessage `json:"balance_config"`
	MaxPositions         int             `json:"max_positions"`
	ActiveOrdersSummary  string          `json:"active_orders_summary"`
	PendingOrdersSummary string          `json:"pending_orders_summary"`
	PortfolioExposure    json.RawMessage `json:"portfolio_exposure"`
	AccountTypeDetails   json.RawMessage `json:"account_type_details"`
	SymbolInfo           json.RawMessage `json:"symbol_info"`
	MultiTimeframes      json.RawMessage `json:"multi_timeframes"`
}

// Result is one analyzed trade signal.
type Result struct {
	Signal     string  `json:"signal"`
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`

	// Set by the service when the result enters the cache.
	CacheKey  string `json:"cache_key,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// stamp marks the result with its cache identity
func (r *Result) stamp(key string, now time.Time) {
	r.CacheKey = key
	r.Timestamp = now.UTC().Format(time.RFC3339)
}
