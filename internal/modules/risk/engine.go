// Package risk implements the deterministic order-evaluation engine: a
// proposed trading order is checked against account state, portfolio
// exposure and symbol constraints, and resolved into one of four
// dispositions (CONTINUE, SKIP, STOP_TRADE, HOLD) together with a fully
// computed, bounds-checked position size and risk/reward numbers.
//
// The pipeline runs strictly forward - preflight, lot sizing, final
// validation, response building - and each stage may short-circuit the rest.
// The engine is a pure, synchronous computation over immutable snapshots:
// no I/O, no shared state, safe for concurrent use.
package risk

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/pkg/formulas"
)

// Engine evaluates proposed orders. The zero cost of construction is
// intentional; one Engine serves all requests.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new evaluation engine
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "risk_engine").Logger(),
	}
}

// Evaluate runs the full pipeline over one input snapshot and always returns
// a fully-formed Decision. Policy violations and sizing infeasibility are
// valid terminal statuses, not errors; unexpected internal faults are
// recovered at this boundary and converted to SKIP so one malformed request
// cannot take down a batch of unrelated evaluations.
func (e *Engine) Evaluate(in Input) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().
				Str("symbol", in.Signal.Symbol).
				Interface("panic", r).
				Msg("Evaluation panicked, converting to SKIP")
			decision = buildDecision(StatusSkip, fmt.Sprintf("Unexpected error: %v", r), in.Signal, nil)
		}
	}()

	e.log.Info().
		Str("symbol", in.Signal.Symbol).
		Str("direction", string(in.Signal.Direction)).
		Str("order_kind", string(in.Signal.OrderKind)).
		Msg("Evaluating proposed order")

	if err := validateInput(in); err != nil {
		e.log.Warn().Err(err).Str("symbol", in.Signal.Symbol).Msg("Rejecting malformed input")
		return buildDecision(StatusSkip, fmt.Sprintf("Invalid input: %v", err), in.Signal, nil)
	}

	pf := e.preflight(in)
	if pf.status != StatusContinue {
		return buildDecision(pf.status, pf.reason, in.Signal, nil)
	}

	sizing := e.computeLotSize(in)
	if sizing.status != StatusContinue {
		return buildDecision(sizing.status, sizing.reason, in.Signal, nil)
	}

	lossPerLot := formulas.LossPerLot(in.Signal.EntryPrice, in.Signal.StopLoss, in.Constraints.TickSize, in.Constraints.TickValue)
	v := e.finalize(in.Signal, sizing.finalLot, lossPerLot)

	e.log.Info().
		Str("symbol", in.Signal.Symbol).
		Float64("lot_size", sizing.finalLot).
		Float64("estimate_loss", v.estimateLoss).
		Float64("estimate_profit", v.estimateProfit).
		Msg("Order approved")

	return buildDecision(StatusContinue, pf.reason, in.Signal, &continueData{
		lotSize:           sizing.finalLot,
		takeProfit:        v.takeProfit,
		estimateProfit:    v.estimateProfit,
		estimateLoss:      v.estimateLoss,
		riskRewardBefore:  v.riskRewardBefore,
		riskRewardAfter:   v.riskRewardAfter,
		correlatedSymbols: sizing.correlatedSymbols,
		ticketsToDelete:   pf.ticketsToDelete,
	})
}

// validateInput guards the engine against fatal-input errors: missing or
// malformed required fields that no downstream stage could interpret.
// Sizing-infeasibility conditions (zero tick size and friends) are not
// handled here; they resolve to HOLD inside the pipeline.
func validateInput(in Input) error {
	if in.Signal.Symbol == "" {
		return fmt.Errorf("signal symbol is required")
	}
	if !in.Signal.Direction.IsValid() {
		return fmt.Errorf("signal direction %q is not tradable", in.Signal.Direction)
	}
	if in.Signal.EntryPrice <= 0 {
		return fmt.Errorf("entry price must be positive, got %v", in.Signal.EntryPrice)
	}
	if in.Signal.StopLoss <= 0 {
		return fmt.Errorf("stop loss must be positive, got %v", in.Signal.StopLoss)
	}
	if in.Account.Equity <= 0 {
		return fmt.Errorf("account equity must be positive, got %v", in.Account.Equity)
	}
	if in.Policy.MaxPositions <= 0 {
		return fmt.Errorf("max positions must be positive, got %d", in.Policy.MaxPositions)
	}
	return nil
}
