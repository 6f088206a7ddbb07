package risk

import (
	"math"

	"github.com/quantfx/fx-risk-api/pkg/formulas"
)

// maxRiskReward is the upper bound enforced on the reward-to-risk ratio.
// The bound is asymmetric on purpose: a ratio above it pulls the take-profit
// in, a ratio below 1.0 is left alone.
const maxRiskReward = 1.5

// validation is the outcome of the final validation stage.
type validation struct {
	takeProfit       float64
	estimateProfit   float64
	estimateLoss     float64
	riskRewardBefore *float64
	riskRewardAfter  *float64
}

// finalize rebalances the reward-to-risk ratio and cross-checks the
// profit/loss estimates for the sized trade.
func (e *Engine) finalize(sig ProposedSignal, finalLot, lossPerLot float64) validation {
	log := e.log.With().Str("stage", "validation").Str("symbol", sig.Symbol).Logger()

	takeProfit := sig.TakeProfit
	rrBefore := formulas.RiskReward(sig.EntryPrice, sig.StopLoss, sig.TakeProfit)
	if rrBefore != nil && *rrBefore > maxRiskReward {
		takeProfit = formulas.TakeProfitForRatio(sig.EntryPrice, sig.StopLoss, sig.Direction.IsBuy(), maxRiskReward)
		log.Info().
			Float64("rr_before", *rrBefore).
			Float64("take_profit", takeProfit).
			Msg("Reward-to-risk above cap, take-profit pulled in")
	}
	rrAfter := formulas.RiskReward(sig.EntryPrice, sig.StopLoss, takeProfit)

	// estimateLoss is always non-positive; this is a hard invariant of the
	// Decision contract.
	estimateLoss := -math.Abs(finalLot * lossPerLot)

	slDistance := math.Abs(sig.EntryPrice - sig.StopLoss)
	estimateProfit := 0.0
	if slDistance > 0 {
		tpDistance := math.Abs(takeProfit - sig.EntryPrice)
		estimateProfit = math.Abs((tpDistance / slDistance) * estimateLoss)
	}

	log.Debug().
		Float64("estimate_loss", estimateLoss).
		Float64("estimate_profit", estimateProfit).
		Msg("Profit/loss estimates computed")

	return validation{
		takeProfit:       takeProfit,
		estimateProfit:   estimateProfit,
		estimateLoss:     estimateLoss,
		riskRewardBefore: rrBefore,
		riskRewardAfter:  rrAfter,
	}
}
