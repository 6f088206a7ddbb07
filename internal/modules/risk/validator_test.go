package risk

import (
	"math"
	"testing"

	"github.com/quantfx/fx-risk-api/internal/domain"
)

const tol = 1e-9

func TestFinalize_PullsTakeProfitIn(t *testing.T) {
	// BUY 1.1000 / SL 1.0950 / TP 1.1100 is a 2.0 reward-to-risk trade;
	// the cap pulls the take-profit in to 1.1000 + 0.0050*1.5 = 1.1075.
	e := testEngine()
	sig := baseInput().Signal

	v := e.finalize(sig, 0.03, 500)

	if math.Abs(v.takeProfit-1.1075) > tol {
		t.Errorf("takeProfit = %v, want 1.1075", v.takeProfit)
	}
	if v.riskRewardBefore == nil || math.Abs(*v.riskRewardBefore-2.0) > tol {
		t.Errorf("riskRewardBefore = %v, want 2.0", v.riskRewardBefore)
	}
	if v.riskRewardAfter == nil || math.Abs(*v.riskRewardAfter-1.5) > tol {
		t.Errorf("riskRewardAfter = %v, want 1.5", v.riskRewardAfter)
	}
	if math.Abs(v.estimateLoss-(-15.0)) > tol {
		t.Errorf("estimateLoss = %v, want -15", v.estimateLoss)
	}
	if math.Abs(v.estimateProfit-22.5) > tol {
		t.Errorf("estimateProfit = %v, want 22.5", v.estimateProfit)
	}
}

func TestFinalize_LowRatioLeftAlone(t *testing.T) {
	// The cap is one-sided: poor ratios are reported, never improved.
	tests := []struct {
		name       string
		takeProfit float64
		wantRatio  float64
	}{
		{"Ratio exactly 1.5", 1.1075, 1.5},
		{"Ratio 1.0", 1.1050, 1.0},
		{"Ratio 0.5", 1.1025, 0.5},
	}

	e := testEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := baseInput().Signal
			sig.TakeProfit = tt.takeProfit

			v := e.finalize(sig, 0.03, 500)
			if math.Abs(v.takeProfit-tt.takeProfit) > tol {
				t.Errorf("takeProfit = %v, want untouched %v", v.takeProfit, tt.takeProfit)
			}
			if v.riskRewardAfter == nil || math.Abs(*v.riskRewardAfter-tt.wantRatio) > tol {
				t.Errorf("riskRewardAfter = %v, want %v", v.riskRewardAfter, tt.wantRatio)
			}
		})
	}
}

func TestFinalize_SellDirection(t *testing.T) {
	// SELL 1.1000 / SL 1.1050 / TP 1.0880 is 2.4 reward-to-risk; the capped
	// take-profit sits below the entry: 1.1000 - 0.0050*1.5 = 1.0925.
	e := testEngine()
	sig := ProposedSignal{
		Symbol:     "EURUSD",
		Direction:  domain.DirectionSell,
		EntryPrice: 1.1000,
		StopLoss:   1.1050,
		TakeProfit: 1.0880,
	}

	v := e.finalize(sig, 0.02, 500)
	if math.Abs(v.takeProfit-1.0925) > tol {
		t.Errorf("takeProfit = %v, want 1.0925", v.takeProfit)
	}
	if v.takeProfit >= sig.EntryPrice {
		t.Errorf("SELL take-profit %v must stay below entry %v", v.takeProfit, sig.EntryPrice)
	}
	if math.Abs(v.estimateLoss-(-10.0)) > tol {
		t.Errorf("estimateLoss = %v, want -10", v.estimateLoss)
	}
	if math.Abs(v.estimateProfit-15.0) > tol {
		t.Errorf("estimateProfit = %v, want 15", v.estimateProfit)
	}
}

func TestFinalize_DegenerateStopDistance(t *testing.T) {
	// Entry == stop-loss makes the ratio undefined; the stage must not divide
	// by zero and must leave the take-profit untouched.
	e := testEngine()
	sig := baseInput().Signal
	sig.StopLoss = sig.EntryPrice

	v := e.finalize(sig, 0.03, 0)
	if v.riskRewardBefore != nil || v.riskRewardAfter != nil {
		t.Errorf("ratios = %v/%v, want both nil for zero stop distance", v.riskRewardBefore, v.riskRewardAfter)
	}
	if v.takeProfit != sig.TakeProfit {
		t.Errorf("takeProfit = %v, want untouched %v", v.takeProfit, sig.TakeProfit)
	}
	if v.estimateProfit != 0 {
		t.Errorf("estimateProfit = %v, want 0", v.estimateProfit)
	}
}

func TestFinalize_EstimateSigns(t *testing.T) {
	e := testEngine()
	sig := baseInput().Signal

	for _, lot := range []float64{0.01, 0.03, 1.0, 25.5} {
		v := e.finalize(sig, lot, 500)
		if v.estimateLoss > 0 {
			t.Errorf("lot %v: estimateLoss = %v, must be non-positive", lot, v.estimateLoss)
		}
		if v.estimateProfit < 0 {
			t.Errorf("lot %v: estimateProfit = %v, must be non-negative", lot, v.estimateProfit)
		}
	}
}
