package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"stocksage/internal/domain"
)

// Summary condenses a price history into the figures the statistical analyst
// works from.
type Summary struct {
	Symbol       string    `json:"symbol"`
	Observations int       `json:"observations"`
	CurrentPrice float64   `json:"current_price"`
	PeriodHigh   float64   `json:"period_high"`
	PeriodLow    float64   `json:"period_low"`
	MA7          float64   `json:"ma_7"`
	MA30         float64   `json:"ma_30"`

	DailyVolPct      float64 `json:"daily_volatility_pct"`
	AnnualizedVolPct float64 `json:"annualized_volatility_pct"`
	ThirtyDayVolPct  float64 `json:"volatility_30d_pct"`

	AvgDailyReturnPct float64 `json:"avg_daily_return_pct"`
	MaxDailyReturnPct float64 `json:"max_daily_return_pct"`
	MinDailyReturnPct float64 `json:"min_daily_return_pct"`

	// Dollars per day from a least-squares line over the whole period.
	TrendSlope float64 `json:"trend_slope"`

	RSI14      float64 `json:"rsi_14"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`

	// Dates whose daily return the isolation forest scored as anomalous.
	AnomalousDates []time.Time `json:"anomalous_dates,omitempty"`
}

const tradingDaysPerYear = 252

// Compute derives the summary from a series. Indicator fields that need more
// history than is available are left at zero.
func Compute(series domain.HistoricalSeries) Summary {
	closes := series.Closes()
	s := Summary{
		Symbol:       series.Symbol,
		Observations: len(closes),
		CurrentPrice: series.LastClose(),
	}
	if len(closes) == 0 {
		return s
	}

	s.PeriodHigh = closes[0]
	s.PeriodLow = closes[0]
	for _, c := range closes {
		s.PeriodHigh = math.Max(s.PeriodHigh, c)
		s.PeriodLow = math.Min(s.PeriodLow, c)
	}
	s.MA7 = SMA(closes, 7)
	s.MA30 = SMA(closes, 30)

	returns := Returns(closes)
	if len(returns) >= 2 {
		daily := stat.StdDev(returns, nil) * 100
		s.DailyVolPct = daily
		s.AnnualizedVolPct = daily * math.Sqrt(tradingDaysPerYear)
		s.ThirtyDayVolPct = daily
		if len(returns) > 30 {
			s.ThirtyDayVolPct = stat.StdDev(returns[len(returns)-30:], nil) * 100
		}

		s.MaxDailyReturnPct = returns[0] * 100
		s.MinDailyReturnPct = returns[0] * 100
		sum := 0.0
		for _, r := range returns {
			pct := r * 100
			sum += pct
			s.MaxDailyReturnPct = math.Max(s.MaxDailyReturnPct, pct)
			s.MinDailyReturnPct = math.Min(s.MinDailyReturnPct, pct)
		}
		s.AvgDailyReturnPct = sum / float64(len(returns))
	}

	if len(closes) >= 2 {
		xs := make([]float64, len(closes))
		for i := range xs {
			xs[i] = float64(i)
		}
		_, slope := stat.LinearRegression(xs, closes, nil, false)
		s.TrendSlope = slope
	}

	if rsi := RSISeries(closes, 14); len(rsi) > 0 {
		s.RSI14 = rsi[len(rsi)-1]
	}
	if macd, signal := MACDSeries(closes, 12, 26, 9); len(macd) > 0 {
		s.MACD = macd[len(macd)-1]
		s.MACDSignal = signal[len(signal)-1]
	}

	s.AnomalousDates = AnomalousReturnDates(series)
	return s
}
