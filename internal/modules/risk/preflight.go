package risk

import "fmt"

// Reason strings for preflight outcomes.
const (
	reasonMaxPositions       = "Max position limit reached"
	reasonLosingSameSymbol   = "An active trade on the same symbol is losing"
	reasonOppositeProfitable = "Opposite direction trade on a profitable symbol is forbidden"
	reasonPendingReplacement = "Pending orders identified for replacement"
	reasonTotalRiskExceeded  = "Total portfolio risk exceeds cap"
	reasonPreflightPassed    = "All pre-flight checks passed"
)

// preflightResult is the outcome of the portfolio-level GO/NO-GO checks.
type preflightResult struct {
	status          Status
	reason          string
	ticketsToDelete []int64
}

// preflight runs the portfolio-level GO/NO-GO checks in fixed order; the
// first check that terminates evaluation wins.
func (e *Engine) preflight(in Input) preflightResult {
	log := e.log.With().Str("stage", "preflight").Str("symbol", in.Signal.Symbol).Logger()

	// Position limit: a global condition, so the whole portfolio pauses.
	active := in.Exposure.ActivePositions
	if len(active) >= in.Policy.MaxPositions {
		log.Warn().
			Int("active", len(active)).
			Int("max_positions", in.Policy.MaxPositions).
			Msg("Position limit reached")
		return preflightResult{status: StatusStopTrade, reason: reasonMaxPositions}
	}

	// Same-symbol active trade: averaging down on a loser and stacking the
	// opposite direction onto a winner are both forbidden.
	for _, pos := range active {
		if pos.Symbol != in.Signal.Symbol {
			continue
		}
		if pos.Profit < 0 {
			log.Warn().Float64("profit", pos.Profit).Msg("Active trade on symbol is losing")
			return preflightResult{status: StatusSkip, reason: reasonLosingSameSymbol}
		}
		if pos.Direction != in.Signal.Direction {
			log.Warn().
				Str("position_direction", string(pos.Direction)).
				Str("signal_direction", string(in.Signal.Direction)).
				Msg("Opposite direction on profitable symbol")
			return preflightResult{status: StatusSkip, reason: reasonOppositeProfitable}
		}
	}

	// Same-symbol pending orders: a superseding pending signal replaces the
	// old tickets instead of being rejected. The replaced orders leave the
	// book before the new one enters, so the total-risk check below is
	// skipped on this path.
	if in.Signal.OrderKind.IsPending() {
		var tickets []int64
		for _, order := range in.Exposure.PendingOrders {
			if order.Symbol == in.Signal.Symbol {
				tickets = append(tickets, order.Ticket)
			}
		}
		if len(tickets) > 0 {
			log.Info().
				Ints64("tickets", tickets).
				Msg("Pending orders on symbol will be replaced")
			return preflightResult{
				status:          StatusContinue,
				reason:          reasonPendingReplacement,
				ticketsToDelete: tickets,
			}
		}
	}

	// Total unified portfolio risk: existing book loss plus the new trade's
	// worst case, both as a percentage of equity.
	newTradeRiskUSD := in.Account.Equity * (in.Policy.PerTradeRiskCapPct / 100)
	totalRiskUSD := in.Exposure.Summary.TotalPotentialLossUSD + newTradeRiskUSD
	totalRiskPct := (totalRiskUSD / in.Account.Equity) * 100
	if totalRiskPct > in.Policy.TotalRiskCapPct {
		log.Warn().
			Float64("total_risk_pct", totalRiskPct).
			Float64("total_risk_cap_pct", in.Policy.TotalRiskCapPct).
			Msg("Total portfolio risk exceeds cap")
		return preflightResult{
			status: StatusStopTrade,
			reason: fmt.Sprintf("%s: %.2f%% > %.2f%%", reasonTotalRiskExceeded, totalRiskPct, in.Policy.TotalRiskCapPct),
		}
	}

	log.Debug().Float64("total_risk_pct", totalRiskPct).Msg("Pre-flight checks passed")
	return preflightResult{status: StatusContinue, reason: reasonPreflightPassed}
}
