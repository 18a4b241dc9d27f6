package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stocksage/internal/domain"
)

const tradingDaysPerYear = 252

// Volatility computes daily, annualized, and trailing-30-day return
// volatility in percent. Short series yield zeros rather than NaNs.
func Volatility(prices []float64) domain.VolatilityMetrics {
	returns := dailyReturns(prices)
	if len(returns) < 2 {
		return domain.VolatilityMetrics{}
	}

	daily := stat.StdDev(returns, nil) * 100
	thirty := daily
	if len(returns) > 30 {
		thirty = stat.StdDev(returns[len(returns)-30:], nil) * 100
	}
	m := domain.VolatilityMetrics{
		DailyPct:      daily,
		AnnualizedPct: daily * math.Sqrt(tradingDaysPerYear),
		ThirtyDayPct:  thirty,
	}
	if math.IsNaN(m.DailyPct) || math.IsInf(m.DailyPct, 0) {
		return domain.VolatilityMetrics{}
	}
	return m
}

func dailyReturns(prices []float64) []float64 {
	var out []float64
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}
