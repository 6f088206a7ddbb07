package risk

import "fmt"

// Margin safety thresholds. These are fixed policy constants, kept at the
// boundary between policy and the search loop so they can be tuned without
// touching the search itself.
const (
	// MinFreeMarginPct - predicted free margin must stay strictly above this
	// percentage of equity after the candidate order opens.
	MinFreeMarginPct = 50.0
	// MaxMarginUsagePct - predicted total margin usage must stay strictly
	// below this percentage of equity.
	MaxMarginUsagePct = 40.0
)

// marginSafe evaluates the margin safety predicate for a candidate order.
//
//	totalMargin   = existing + candidate
//	freeMarginPct = (equity - totalMargin) / equity * 100
//	usagePct      = totalMargin / equity * 100
//
// Safe iff freeMarginPct > MinFreeMarginPct and usagePct < MaxMarginUsagePct.
func marginSafe(equity, existingMarginUSD, candidateMarginUSD float64) (bool, string) {
	if equity <= 0 {
		return false, "equity is zero"
	}

	totalMargin := existingMarginUSD + candidateMarginUSD
	freeMarginPct := (equity - totalMargin) / equity * 100
	usagePct := totalMargin / equity * 100

	if freeMarginPct <= MinFreeMarginPct {
		return false, fmt.Sprintf("predicted free margin (%.2f%%) would be <= %.0f%%", freeMarginPct, MinFreeMarginPct)
	}
	if usagePct >= MaxMarginUsagePct {
		return false, fmt.Sprintf("predicted margin usage (%.2f%%) would be >= %.0f%%", usagePct, MaxMarginUsagePct)
	}

	return true, "margin safety rules passed"
}
