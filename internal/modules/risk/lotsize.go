package risk

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/pkg/formulas"
)

// Portfolio adjustment multipliers and thresholds, applied sequentially in
// computeLotSize. Order matters: each multiplies the running value.
const (
	drawdownBalanceFraction = 0.04 // floating loss beyond 4% of balance counts as drawdown
	drawdownMultiplier      = 0.7

	correlatedPositionsMin = 2 // at this many active correlated positions the cut applies
	correlationMultiplier  = 0.5

	pendingOrderWeight       = 0.33 // a resting order counts as a third of a position
	heavyPositionLoad        = 3.0
	lightPositionLoad        = 1.0
	heavyPositionsMultiplier = 0.5
	lightPositionsMultiplier = 0.7
)

// Reason strings for sizing outcomes.
const (
	reasonUndefinedRiskPerLot = "Expected loss per lot is zero or negative"
	reasonLotBelowMinimum     = "Lot size below symbol minimum"
	reasonNoMarginTable       = "Margin lookup table is missing or empty"
	reasonNoSafeLot           = "No margin-safe lot size found down to symbol minimum"
)

// lotSizeResult is the outcome of the sizing stage. When status is HOLD,
// finalLot is meaningless.
type lotSizeResult struct {
	status            Status
	reason            string
	finalLot          float64
	correlatedSymbols []string
}

// computeLotSize runs base risk sizing, the sequential portfolio
// adjustments, quantization, and the adaptive margin-constrained search.
func (e *Engine) computeLotSize(in Input) lotSizeResult {
	log := e.log.With().Str("stage", "lot_size").Str("symbol", in.Signal.Symbol).Logger()

	// Base risk percent from the estimated win probability, capped by the
	// per-trade policy limit.
	riskPct := math.Min(baseRiskPercent(in.Signal.WinProbability), in.Policy.PerTradeRiskCapPct)
	riskUSD := in.Account.Equity * (riskPct / 100)

	lossPerLot := formulas.LossPerLot(in.Signal.EntryPrice, in.Signal.StopLoss, in.Constraints.TickSize, in.Constraints.TickValue)
	if lossPerLot <= 0 {
		log.Warn().Msg("Cannot size a trade with undefined risk-per-lot")
		return lotSizeResult{status: StatusHold, reason: reasonUndefinedRiskPerLot}
	}

	lot := riskUSD / lossPerLot
	log.Debug().
		Float64("risk_pct", riskPct).
		Float64("risk_usd", riskUSD).
		Float64("loss_per_lot", lossPerLot).
		Float64("base_lot", lot).
		Msg("Base lot size computed")

	// Drawdown control: floating loss beyond 4% of balance cuts size by 30%.
	if in.Account.Profit < -(drawdownBalanceFraction * in.Account.Balance) {
		lot *= drawdownMultiplier
		log.Info().Float64("profit", in.Account.Profit).Float64("lot", lot).Msg("Drawdown control applied")
	}

	// Correlation control: two or more active positions in the signal's
	// correlation group cut size by half. Only active positions count here;
	// pending orders carry no floating exposure yet.
	var correlatedSymbols []string
	if group, ok := in.Groups.GroupFor(in.Signal.Symbol); ok {
		groupSymbols := in.Groups[group]
		for _, pos := range in.Exposure.ActivePositions {
			for _, s := range groupSymbols {
				if pos.Symbol == s {
					correlatedSymbols = append(correlatedSymbols, pos.Symbol)
					break
				}
			}
		}
		if len(correlatedSymbols) >= correlatedPositionsMin {
			lot *= correlationMultiplier
			log.Info().
				Str("group", group).
				Strs("correlated_symbols", correlatedSymbols).
				Float64("lot", lot).
				Msg("Correlation control applied")
		}
	}

	// Weighted position control: pending orders count at a discount.
	effective := float64(len(in.Exposure.ActivePositions)) + float64(len(in.Exposure.PendingOrders))*pendingOrderWeight
	switch {
	case effective >= heavyPositionLoad:
		lot *= heavyPositionsMultiplier
		log.Info().Float64("effective_positions", effective).Float64("lot", lot).Msg("Heavy position load, size halved")
	case effective >= lightPositionLoad:
		lot *= lightPositionsMultiplier
		log.Info().Float64("effective_positions", effective).Float64("lot", lot).Msg("Light position load, size reduced")
	}

	// Quantize to the symbol's lot grid. A size that floors below the
	// symbol minimum is untradeable at the computed risk, not rounded up.
	quantized := formulas.QuantizeLot(lot, in.Constraints.VolumeStep)
	if quantized < in.Constraints.VolumeMin {
		log.Warn().Float64("quantized", quantized).Float64("volume_min", in.Constraints.VolumeMin).Msg("Quantized lot below minimum")
		return lotSizeResult{status: StatusHold, reason: reasonLotBelowMinimum, correlatedSymbols: correlatedSymbols}
	}
	if quantized > in.Constraints.VolumeMax {
		quantized = in.Constraints.VolumeMax
	}

	// Adaptive margin-constrained search: greedily find the largest lot at
	// or below the quantized size whose margin the portfolio can carry.
	finalLot, ok := e.searchMarginSafeLot(in, quantized, log)
	if !ok {
		if in.Margins == nil {
			return lotSizeResult{status: StatusHold, reason: reasonNoMarginTable, correlatedSymbols: correlatedSymbols}
		}
		return lotSizeResult{status: StatusHold, reason: reasonNoSafeLot, correlatedSymbols: correlatedSymbols}
	}

	if finalLot < quantized {
		log.Info().
			Float64("requested", quantized).
			Float64("final", finalLot).
			Msg("Lot size reduced by margin constraint")
	}

	return lotSizeResult{status: StatusContinue, finalLot: finalLot, correlatedSymbols: correlatedSymbols}
}

// searchMarginSafeLot walks down from startLot one volume step at a time,
// never below the symbol minimum, and returns the first candidate whose
// looked-up margin passes the safety predicate. Candidates absent from the
// margin table are skipped. The loop is bounded by
// (startLot - volumeMin) / volumeStep iterations.
func (e *Engine) searchMarginSafeLot(in Input, startLot float64, log zerolog.Logger) (float64, bool) {
	if in.Margins == nil {
		log.Error().Msg("Margin lookup table is missing")
		return 0, false
	}

	existing := in.Exposure.Summary.TotalMarginUsedUSD
	for lot := startLot; lot >= in.Constraints.VolumeMin; lot = formulas.Round2(lot - in.Constraints.VolumeStep) {
		key := MarginKey(lot)
		margin, found := in.Margins.Lookup(key)
		if !found {
			log.Debug().Str("lot_key", key).Msg("No margin entry for candidate, skipping")
			continue
		}

		safe, verdict := marginSafe(in.Account.Equity, existing, margin)
		if safe {
			log.Debug().Str("lot_key", key).Float64("margin_usd", margin).Msg("Margin-safe lot found")
			return lot, true
		}
		log.Debug().Str("lot_key", key).Str("verdict", verdict).Msg("Candidate rejected")
	}

	log.Warn().Float64("volume_min", in.Constraints.VolumeMin).Msg("Search exhausted without a margin-safe lot")
	return 0, false
}

// baseRiskPercent maps an estimated win probability (0-100) onto the base
// risk tier, a monotonic step function.
func baseRiskPercent(winProbability float64) float64 {
	switch {
	case winProbability > 75:
		return 1.5
	case winProbability >= 65:
		return 1.2
	case winProbability >= 55:
		return 0.8
	default:
		return 0.5
	}
}
