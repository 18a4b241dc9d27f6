package stats

import (
	"math"
	"testing"
	"time"

	"stocksage/internal/domain"
)

func series(n int, f func(i int) float64) domain.HistoricalSeries {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := domain.HistoricalSeries{Symbol: "AAPL"}
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, domain.PricePoint{Date: base.AddDate(0, 0, i), Close: f(i)})
	}
	return s
}

func TestComputeEmptySeries(t *testing.T) {
	s := Compute(domain.HistoricalSeries{Symbol: "AAPL"})
	if s.Observations != 0 || s.CurrentPrice != 0 {
		t.Fatalf("empty summary = %+v", s)
	}
}

func TestComputeRamp(t *testing.T) {
	s := Compute(series(60, func(i int) float64 { return 100 + float64(i) }))

	if s.CurrentPrice != 159 {
		t.Fatalf("CurrentPrice = %f", s.CurrentPrice)
	}
	if s.PeriodHigh != 159 || s.PeriodLow != 100 {
		t.Errorf("range = [%f, %f]", s.PeriodLow, s.PeriodHigh)
	}
	// MA7 over 153..159 is 156.
	if math.Abs(s.MA7-156) > 1e-9 {
		t.Errorf("MA7 = %f, want 156", s.MA7)
	}
	if math.Abs(s.MA30-144.5) > 1e-9 {
		t.Errorf("MA30 = %f, want 144.5", s.MA30)
	}
	// A straight line has slope exactly 1 dollar/day.
	if math.Abs(s.TrendSlope-1) > 1e-9 {
		t.Errorf("TrendSlope = %f, want 1", s.TrendSlope)
	}
	if s.MinDailyReturnPct <= 0 {
		t.Errorf("rising series should have positive min return, got %f", s.MinDailyReturnPct)
	}
	// Only gains: RSI pins at 100.
	if s.RSI14 != 100 {
		t.Errorf("RSI14 = %f, want 100", s.RSI14)
	}
}

func TestComputeVolatilityConsistency(t *testing.T) {
	s := Compute(series(100, func(i int) float64 { return 100 + 4*math.Sin(float64(i)) }))
	if s.DailyVolPct <= 0 {
		t.Fatalf("DailyVolPct = %f", s.DailyVolPct)
	}
	if math.Abs(s.AnnualizedVolPct-s.DailyVolPct*math.Sqrt(252)) > 1e-9 {
		t.Errorf("annualized %f does not match daily %f", s.AnnualizedVolPct, s.DailyVolPct)
	}
}

func TestSMAShortSeries(t *testing.T) {
	if got := SMA([]float64{2, 4}, 30); got != 3 {
		t.Errorf("SMA = %f, want mean of whole series", got)
	}
	if got := SMA(nil, 7); got != 0 {
		t.Errorf("SMA(nil) = %f", got)
	}
}

func TestAnomalousReturnDatesShortSeries(t *testing.T) {
	if got := AnomalousReturnDates(series(10, func(i int) float64 { return 100 })); got != nil {
		t.Errorf("expected nil for a short series, got %v", got)
	}
}

func TestAnomalousReturnDatesFlagsSpike(t *testing.T) {
	s := series(120, func(i int) float64 {
		p := 100 + 0.05*float64(i)
		if i == 80 {
			p *= 1.4 // one violent move in an otherwise quiet series
		}
		return p
	})
	dates := AnomalousReturnDates(s)
	found := false
	spike := s.Points[80].Date
	drop := s.Points[81].Date
	for _, d := range dates {
		if d.Equal(spike) || d.Equal(drop) {
			found = true
		}
	}
	if !found {
		t.Errorf("spike day not flagged; flagged dates: %v", dates)
	}
}
