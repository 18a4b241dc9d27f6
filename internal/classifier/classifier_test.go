package classifier

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

func TestProbUpInsufficientHistory(t *testing.T) {
	_, err := ProbUp(series(30, func(i int) float64 { return 100 + float64(i) }), 5, Options{})
	if err == nil {
		t.Fatal("expected error for a 30-point series")
	}
}

func TestProbUpSingleClassHistory(t *testing.T) {
	// Monotone ramp: every label is "up", so training must refuse.
	_, err := ProbUp(series(200, func(i int) float64 { return 100 + float64(i) }), 5, Options{})
	if err == nil {
		t.Fatal("expected error for single-class labels")
	}
}

func TestProbUpReturnsProbability(t *testing.T) {
	s := series(250, func(i int) float64 {
		return 100 + 0.05*float64(i) + 6*math.Sin(float64(i)/9)
	})
	p, err := ProbUp(s, 5, Options{})
	if err != nil {
		t.Fatalf("ProbUp: %v", err)
	}
	if p < 0 || p > 1 {
		t.Fatalf("probability out of range: %f", p)
	}
}

func TestProbUpRejectsBadHorizon(t *testing.T) {
	if _, err := ProbUp(series(100, func(i int) float64 { return 100 }), 0, Options{}); err == nil {
		t.Fatal("expected error for horizon 0")
	}
}

func TestFeatureRowFiniteness(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 50 + float64(i%7)
	}
	row, ok := featureRow(closes, 59)
	if !ok {
		t.Fatal("expected a feature row at the end of the series")
	}
	if len(row) != len(featureNames) {
		t.Fatalf("row has %d features, want %d", len(row), len(featureNames))
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("feature %s is not finite: %f", featureNames[i], v)
		}
	}

	if _, ok := featureRow(closes, 10); ok {
		t.Error("expected no row inside the lookback window")
	}
}
