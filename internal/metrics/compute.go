// Package metrics computes rolling risk/return statistics over the
// equity curve produced by repeated valuation.
package metrics

import (
	"math"
	"time"

	"crypto-backtest-lab/internal/domain"
)

// minPoints is the minimum equity-curve length for statistically
// meaningful ratios. Below it every metric stays nil.
const minPoints = 4

// annualizationFactor converts daily return statistics to annual terms.
// The curve has one point per business day.
const annualizationFactor = 252

// Compute recomputes all performance metrics from the full equity curve.
// It always returns a fresh object: callers replace their metrics
// wholesale rather than patching fields from stale data.
//
// Every ratio is nil rather than 0 when the sample is degenerate (fewer
// than 4 points, or zero variance): nil signals "not yet computable",
// 0 signals "computed and is zero".
func Compute(curve []domain.EquityPoint) *domain.PerformanceMetrics {
	m := &domain.PerformanceMetrics{}
	if len(curve) < minPoints {
		return m
	}

	returns := periodReturns(curve)

	mean := computeMean(returns)
	stddev := computeStddev(returns, mean)
	if stddev > 0 {
		sharpe := mean / stddev * math.Sqrt(annualizationFactor)
		m.SharpeRatio = &sharpe
	}

	if dd := downsideDeviation(returns); dd > 0 {
		sortino := mean / dd * math.Sqrt(annualizationFactor)
		m.SortinoRatio = &sortino
	}

	maxDD, ddDate := maxDrawdown(curve)
	m.MaxDrawdown = &maxDD
	m.MaxDrawdownDate = ddDate

	return m
}

// periodReturns computes point-to-point simple returns over the curve.
// Points with a non-positive predecessor value contribute nothing.
func periodReturns(curve []domain.EquityPoint) []float64 {
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].PortfolioValue
		if prev <= 0 {
			continue
		}
		returns = append(returns, curve[i].PortfolioValue/prev-1)
	}
	return returns
}

// computeMean calculates the arithmetic mean of returns.
func computeMean(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	return sum / float64(len(returns))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(returns []float64, mean float64) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, r := range returns {
		diff := r - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// downsideDeviation is the sample standard deviation of the negative
// returns only. Returns 0 when fewer than two returns are negative.
func downsideDeviation(returns []float64) float64 {
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	return computeStddev(negative, computeMean(negative))
}

// maxDrawdown finds the largest peak-to-trough decline over the curve,
// expressed as a negative percentage, together with the trough date.
// A curve that never drops yields (0, nil).
func maxDrawdown(curve []domain.EquityPoint) (float64, *time.Time) {
	peak := curve[0].PortfolioValue
	worst := 0.0
	var worstDate *time.Time

	for i := 1; i < len(curve); i++ {
		p := curve[i]
		if p.PortfolioValue > peak {
			peak = p.PortfolioValue
			continue
		}
		if peak <= 0 {
			continue
		}
		drawdown := (p.PortfolioValue/peak - 1) * 100
		if drawdown < worst {
			worst = drawdown
			d := p.Date
			worstDate = &d
		}
	}
	return worst, worstDate
}
