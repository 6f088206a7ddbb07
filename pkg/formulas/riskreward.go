package formulas

import "math"

// RiskReward calculates the reward-to-risk ratio of a proposed trade.
//
// Formula:
//
//	R:R = |entry - takeProfit| / |entry - stopLoss|
//
// Returns nil when the stop distance is zero (degenerate input; the ratio is
// undefined and callers must not adjust anything based on it).
func RiskReward(entry, stopLoss, takeProfit float64) *float64 {
	slDistance := math.Abs(entry - stopLoss)
	if slDistance == 0 {
		return nil
	}

	rr := math.Abs(entry-takeProfit) / slDistance
	return &rr
}

// TakeProfitForRatio recomputes a take-profit price so that the trade's
// reward-to-risk ratio equals the given target, signed in the trade's
// direction (above entry for BUY, below entry for SELL). The stop-loss is
// never moved.
func TakeProfitForRatio(entry, stopLoss float64, isBuy bool, ratio float64) float64 {
	tpDistance := math.Abs(entry-stopLoss) * ratio
	if isBuy {
		return entry + tpDistance
	}
	return entry - tpDistance
}
