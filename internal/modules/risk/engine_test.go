package risk

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/quantfx/fx-risk-api/internal/domain"
)

// panickyTable simulates a margin source with a broken invariant.
type panickyTable struct{}

func (panickyTable) Lookup(string) (float64, bool) { panic("margin table corrupted") }

func TestEvaluate_ApprovedOrder(t *testing.T) {
	e := testEngine()
	in := baseInput()
	in.Signal.TrailingStopLoss = json.RawMessage(`{"mode":"atr","step":0.0005}`)
	in.Signal.TechnicalReasoning = "Breakout above weekly resistance"

	d := e.Evaluate(in)

	if d.Status != StatusContinue {
		t.Fatalf("status = %v (%s), want CONTINUE", d.Status, d.Reason)
	}
	if d.Signal != domain.DirectionBuy {
		t.Errorf("signal = %v, want BUY", d.Signal)
	}
	if d.Symbol != "EURUSD" {
		t.Errorf("symbol = %q, want EURUSD", d.Symbol)
	}
	if d.LotSize == nil || math.Abs(*d.LotSize-0.03) > tol {
		t.Errorf("lotSize = %v, want 0.03", d.LotSize)
	}
	if d.EntryPrice == nil || *d.EntryPrice != 1.1000 {
		t.Errorf("entryPrice = %v, want 1.1000", d.EntryPrice)
	}
	if d.StopLoss == nil || *d.StopLoss != 1.0950 {
		t.Errorf("stopLoss = %v, want 1.0950", d.StopLoss)
	}
	if d.TakeProfit == nil || math.Abs(*d.TakeProfit-1.1075) > tol {
		t.Errorf("takeProfit = %v, want capped 1.1075", d.TakeProfit)
	}
	if d.OrderKind == nil || *d.OrderKind != domain.OrderMarket {
		t.Errorf("orderKind = %v, want MARKET", d.OrderKind)
	}
	if d.WinProbability == nil || *d.WinProbability != 80 {
		t.Errorf("winProbability = %v, want 80", d.WinProbability)
	}
	if d.EstimateLoss == nil || math.Abs(*d.EstimateLoss-(-15.0)) > tol {
		t.Errorf("estimateLoss = %v, want -15", d.EstimateLoss)
	}
	if d.EstimateProfit == nil || math.Abs(*d.EstimateProfit-22.5) > tol {
		t.Errorf("estimateProfit = %v, want 22.5", d.EstimateProfit)
	}
	if d.RiskRewardBefore == nil || math.Abs(*d.RiskRewardBefore-2.0) > tol {
		t.Errorf("riskRewardBefore = %v, want 2.0", d.RiskRewardBefore)
	}
	if d.RiskRewardAfter == nil || math.Abs(*d.RiskRewardAfter-1.5) > tol {
		t.Errorf("riskRewardAfter = %v, want 1.5", d.RiskRewardAfter)
	}
	if string(d.TrailingStopLoss) != `{"mode":"atr","step":0.0005}` {
		t.Errorf("trailingStopLoss = %s, want verbatim copy", d.TrailingStopLoss)
	}
	if d.TechnicalReasoning != "Breakout above weekly resistance" {
		t.Errorf("technicalReasoning = %q, want verbatim copy", d.TechnicalReasoning)
	}
	if d.DeletePendingOrders != nil {
		t.Errorf("deletePendingOrders = %v, want none for a market order", d.DeletePendingOrders)
	}
}

func TestEvaluate_DrawdownShrinksApprovedLot(t *testing.T) {
	e := testEngine()
	in := baseInput()
	in.Account.Profit = -100

	d := e.Evaluate(in)
	if d.Status != StatusContinue {
		t.Fatalf("status = %v (%s), want CONTINUE", d.Status, d.Reason)
	}
	if d.LotSize == nil || math.Abs(*d.LotSize-0.02) > tol {
		t.Errorf("lotSize = %v, want drawdown-reduced 0.02", d.LotSize)
	}
	// Estimates must follow the reduced lot, not the base one.
	if d.EstimateLoss == nil || math.Abs(*d.EstimateLoss-(-10.0)) > tol {
		t.Errorf("estimateLoss = %v, want -10", d.EstimateLoss)
	}
}

func TestEvaluate_PendingReplacementCarriesTickets(t *testing.T) {
	e := testEngine()
	in := baseInput()
	in.Signal.OrderKind = domain.OrderLimit
	in.Exposure.PendingOrders = []PendingOrder{
		{Symbol: "EURUSD", Ticket: 901},
		{Symbol: "GBPUSD", Ticket: 902},
	}

	d := e.Evaluate(in)
	if d.Status != StatusContinue {
		t.Fatalf("status = %v (%s), want CONTINUE", d.Status, d.Reason)
	}
	if len(d.DeletePendingOrders) != 1 || d.DeletePendingOrders[0] != 901 {
		t.Errorf("deletePendingOrders = %v, want [901]", d.DeletePendingOrders)
	}
	if d.OrderKind == nil || *d.OrderKind != domain.OrderLimit {
		t.Errorf("orderKind = %v, want LIMIT", d.OrderKind)
	}
}

func TestEvaluate_NonContinueClearsExecutionFields(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Input)
		wantStatus Status
	}{
		{
			name: "Position limit stops trading",
			mutate: func(in *Input) {
				in.Policy.MaxPositions = 1
				in.Exposure.ActivePositions = []ActivePosition{
					{Symbol: "GBPUSD", Direction: domain.DirectionBuy, Profit: 1},
				}
			},
			wantStatus: StatusStopTrade,
		},
		{
			name: "Losing same-symbol position skips",
			mutate: func(in *Input) {
				in.Exposure.ActivePositions = []ActivePosition{
					{Symbol: "EURUSD", Direction: domain.DirectionBuy, Profit: -3},
				}
			},
			wantStatus: StatusSkip,
		},
		{
			name:       "Lot below minimum holds",
			mutate:     func(in *Input) { in.Constraints.VolumeMin = 0.05 },
			wantStatus: StatusHold,
		},
		{
			name:       "No margin-safe lot holds",
			mutate:     func(in *Input) { in.Margins = MarginMap{"0.01": 900, "0.02": 900, "0.03": 900} },
			wantStatus: StatusHold,
		},
	}

	e := testEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Signal.TrailingStopLoss = json.RawMessage(`{"enabled":true}`)
			in.Signal.TechnicalReasoning = "passes through regardless"
			tt.mutate(&in)

			d := e.Evaluate(in)
			if d.Status != tt.wantStatus {
				t.Fatalf("status = %v (%s), want %v", d.Status, d.Reason, tt.wantStatus)
			}
			if d.Signal != domain.DirectionHold {
				t.Errorf("signal = %v, want forced HOLD", d.Signal)
			}
			if d.Reason == "" {
				t.Error("reason must explain every non-CONTINUE decision")
			}
			if d.Symbol != "EURUSD" {
				t.Errorf("symbol = %q, want preserved EURUSD", d.Symbol)
			}
			if d.LotSize != nil || d.EntryPrice != nil || d.StopLoss != nil || d.TakeProfit != nil ||
				d.OrderKind != nil || d.WinProbability != nil || d.EstimateProfit != nil ||
				d.EstimateLoss != nil || d.RiskRewardBefore != nil || d.RiskRewardAfter != nil {
				t.Errorf("execution fields must all be nil on %v: %+v", tt.wantStatus, d)
			}
			if string(d.TrailingStopLoss) != `{"enabled":true}` {
				t.Errorf("trailingStopLoss = %s, want verbatim copy", d.TrailingStopLoss)
			}
			if d.TechnicalReasoning != "passes through regardless" {
				t.Errorf("technicalReasoning = %q, want verbatim copy", d.TechnicalReasoning)
			}
		})
	}
}

func TestEvaluate_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"Empty symbol", func(in *Input) { in.Signal.Symbol = "" }},
		{"HOLD direction", func(in *Input) { in.Signal.Direction = domain.DirectionHold }},
		{"Unknown direction", func(in *Input) { in.Signal.Direction = "SIDEWAYS" }},
		{"Zero entry price", func(in *Input) { in.Signal.EntryPrice = 0 }},
		{"Negative stop loss", func(in *Input) { in.Signal.StopLoss = -1.0950 }},
		{"Zero equity", func(in *Input) { in.Account.Equity = 0 }},
		{"Zero max positions", func(in *Input) { in.Policy.MaxPositions = 0 }},
	}

	e := testEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)

			d := e.Evaluate(in)
			if d.Status != StatusSkip {
				t.Errorf("status = %v, want SKIP", d.Status)
			}
			if !strings.HasPrefix(d.Reason, "Invalid input") {
				t.Errorf("reason = %q, want an invalid-input explanation", d.Reason)
			}
			if d.LotSize != nil {
				t.Errorf("lotSize = %v, want nil", d.LotSize)
			}
		})
	}
}

func TestEvaluate_RecoversFromPanic(t *testing.T) {
	e := testEngine()
	in := baseInput()
	in.Margins = panickyTable{}

	d := e.Evaluate(in)
	if d.Status != StatusSkip {
		t.Fatalf("status = %v, want SKIP after recovery", d.Status)
	}
	if !strings.HasPrefix(d.Reason, "Unexpected error") {
		t.Errorf("reason = %q, want an unexpected-error explanation", d.Reason)
	}
	if d.Signal != domain.DirectionHold {
		t.Errorf("signal = %v, want HOLD", d.Signal)
	}
	if d.LotSize != nil || d.EntryPrice != nil {
		t.Errorf("execution fields must be nil after recovery: %+v", d)
	}
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	e := testEngine()

	first := e.Evaluate(baseInput())
	second := e.Evaluate(baseInput())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input produced different decisions:\n%+v\n%+v", first, second)
	}
}

func TestEvaluate_DecisionJSONShape(t *testing.T) {
	// Non-CONTINUE decisions serialize execution fields as explicit nulls so
	// downstream consumers see a stable shape.
	e := testEngine()
	in := baseInput()
	in.Constraints.VolumeMin = 0.05

	d := e.Evaluate(in)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"lot_size", "entry_price", "stop_loss", "take_profit", "order_type", "estimate_profit", "estimate_loss"} {
		v, ok := fields[key]
		if !ok {
			t.Errorf("field %q missing from serialized decision", key)
			continue
		}
		if string(v) != "null" {
			t.Errorf("field %q = %s, want null", key, v)
		}
	}
	if string(fields["status"]) != `"HOLD"` {
		t.Errorf("status = %s, want \"HOLD\"", fields["status"])
	}
}
