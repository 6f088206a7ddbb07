package risk

import "github.com/quantfx/fx-risk-api/internal/domain"

// continueData carries the execution fields that only a CONTINUE decision
// exposes.
type continueData struct {
	lotSize           float64
	takeProfit        float64
	estimateProfit    float64
	estimateLoss      float64
	riskRewardBefore  *float64
	riskRewardAfter   *float64
	correlatedSymbols []string
	ticketsToDelete   []int64
}

// buildDecision assembles the uniform Decision from whichever stage
// terminated the pipeline. For any status other than CONTINUE every
// execution field stays nil and the signal direction is forced to HOLD;
// the trailing stop and technical reasoning always pass through verbatim.
func buildDecision(status Status, reason string, sig ProposedSignal, cont *continueData) Decision {
	d := Decision{
		Signal:             domain.DirectionHold,
		Status:             status,
		Symbol:             sig.Symbol,
		TrailingStopLoss:   sig.TrailingStopLoss,
		TechnicalReasoning: sig.TechnicalReasoning,
		Reason:             reason,
	}

	if status != StatusContinue || cont == nil {
		return d
	}

	orderKind := sig.OrderKind
	d.Signal = sig.Direction
	d.LotSize = f64(cont.lotSize)
	d.EntryPrice = f64(sig.EntryPrice)
	d.StopLoss = f64(sig.StopLoss)
	d.TakeProfit = f64(cont.takeProfit)
	d.OrderKind = &orderKind
	d.WinProbability = f64(sig.WinProbability)
	d.EstimateProfit = f64(cont.estimateProfit)
	d.EstimateLoss = f64(cont.estimateLoss)
	d.RiskRewardBefore = cont.riskRewardBefore
	d.RiskRewardAfter = cont.riskRewardAfter
	d.CorrelatedSymbols = cont.correlatedSymbols
	d.DeletePendingOrders = cont.ticketsToDelete
	return d
}

func f64(v float64) *float64 { return &v }
