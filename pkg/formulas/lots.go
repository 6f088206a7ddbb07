package formulas

import "math"

// Round2 rounds to 2 decimal places (broker lot precision)
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// QuantizeLot floors a raw lot size to the nearest volumeStep multiple.
//
// The value is first rounded to 2 decimals (broker precision), then floored
// to a whole number of steps. A small epsilon absorbs float noise so that
// 0.03/0.01 quantizes to 0.03, not 0.02.
//
// Args:
//
//	lot: Raw computed lot size
//	step: Broker volume step (e.g., 0.01)
//
// Returns:
//
//	Quantized lot size, or 0 if step is not positive
func QuantizeLot(lot, step float64) float64 {
	if step <= 0 {
		return 0
	}
	rounded := Round2(lot)
	steps := math.Floor(rounded/step + 1e-9)
	return Round2(steps * step)
}

// LossPerLot calculates the USD amount lost if a 1.0 lot trade hits its stop.
//
// Formula:
//
//	ticks = |entry - stopLoss| / tickSize
//	loss  = ticks * tickValue
//
// Returns 0 when tickSize is not positive (undefined risk-per-lot).
func LossPerLot(entry, stopLoss, tickSize, tickValue float64) float64 {
	if tickSize <= 0 {
		return 0
	}
	ticks := math.Abs(entry-stopLoss) / tickSize
	return ticks * tickValue
}
