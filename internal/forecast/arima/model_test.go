package arima

import (
	"math"
	"testing"
)

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestFitInsufficientObservations(t *testing.T) {
	if _, err := Fit([]float64{100, 101, 102}); err == nil {
		t.Fatal("expected error for a 3-point series")
	}
}

func TestForecastShortRamp(t *testing.T) {
	m, err := Fit(ramp(10, 100, 1))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	values, lower, upper, err := m.Forecast(3)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(values) != 3 || len(lower) != 3 || len(upper) != 3 {
		t.Fatalf("got %d/%d/%d points, want 3 each", len(values), len(lower), len(upper))
	}
	for i := range values {
		if lower[i] > values[i] || values[i] > upper[i] {
			t.Errorf("step %d: bounds [%f, %f] do not bracket %f", i, lower[i], upper[i], values[i])
		}
	}
	// A steadily rising series should keep rising.
	if values[0] <= 109 || values[2] <= values[0] {
		t.Errorf("forecast did not continue the trend: %v", values)
	}
}

func TestLagOrderShrinksOnShortSeries(t *testing.T) {
	m, err := Fit(ramp(10, 50, 0.5))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.Lags() >= MaxLags {
		t.Errorf("Lags = %d, expected shrinkage below %d on a 10-point series", m.Lags(), MaxLags)
	}

	m, err = Fit(ramp(200, 50, 0.5))
	if err != nil {
		t.Fatalf("Fit long: %v", err)
	}
	if m.Lags() != MaxLags {
		t.Errorf("Lags = %d, want %d on a long series", m.Lags(), MaxLags)
	}
}

func TestIntervalWidensWithHorizon(t *testing.T) {
	// Noisy series so the residual variance is nonzero.
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 100 + 0.2*float64(i) + 3*math.Sin(float64(i)*1.7)
	}
	m, err := Fit(prices)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	values, lower, upper, err := m.Forecast(10)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	prev := 0.0
	for i := range values {
		width := upper[i] - lower[i]
		if width < prev {
			t.Fatalf("interval narrowed at step %d: %f < %f", i, width, prev)
		}
		prev = width
	}
	if upper[9]-lower[9] <= upper[0]-lower[0] {
		t.Error("interval did not widen across the horizon")
	}
}

func TestForecastRejectsBadHorizon(t *testing.T) {
	m, err := Fit(ramp(30, 100, 1))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, _, _, err := m.Forecast(0); err == nil {
		t.Error("expected error for horizon 0")
	}
	if _, _, _, err := m.Forecast(-1); err == nil {
		t.Error("expected error for negative horizon")
	}
}
