package smoothing

import (
	"errors"
	"fmt"
	"math"
)

// Damped additive-trend exponential smoothing (Holt), no seasonality.
// Parameters are picked by grid search minimizing in-sample SSE.

const (
	zScore          = 1.96
	minObservations = 4
)

// Model holds the smoothed state after fitting.
type Model struct {
	alpha, beta, phi float64
	level, trend     float64
	residualStd      float64
}

// Fit runs a grid search over smoothing parameters and keeps the
// combination with the lowest one-step-ahead squared error.
func Fit(prices []float64) (*Model, error) {
	if len(prices) < minObservations {
		return nil, fmt.Errorf("insufficient observations: have %d, need %d", len(prices), minObservations)
	}

	best := &Model{}
	bestSSE := math.Inf(1)
	// Integer counters with a single division keep every candidate exactly
	// on a grid point; accumulating the step drifts after enough additions.
	for ai := 1; ai <= 19; ai++ {
		alpha := float64(ai) / 20
		for bi := 1; bi <= 19; bi++ {
			beta := float64(bi) / 20
			for pi := 40; pi <= 49; pi++ {
				phi := float64(pi) / 50
				sse, level, trend, ok := run(prices, alpha, beta, phi)
				if ok && sse < bestSSE {
					bestSSE = sse
					best.alpha, best.beta, best.phi = alpha, beta, phi
					best.level, best.trend = level, trend
				}
			}
		}
	}
	if math.IsInf(bestSSE, 1) {
		return nil, errors.New("no stable parameter combination found")
	}

	// Interval width comes straight from the spread of one-step residuals.
	n := len(prices) - 1
	best.residualStd = math.Sqrt(bestSSE / float64(n))
	return best, nil
}

func run(prices []float64, alpha, beta, phi float64) (sse, level, trend float64, ok bool) {
	level = prices[0]
	trend = prices[1] - prices[0]
	for t := 1; t < len(prices); t++ {
		fitted := level + phi*trend
		r := prices[t] - fitted
		sse += r * r

		prevLevel := level
		level = alpha*prices[t] + (1-alpha)*(prevLevel+phi*trend)
		trend = beta*(level-prevLevel) + (1-beta)*phi*trend
	}
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return 0, 0, 0, false
	}
	return sse, level, trend, true
}

// Forecast extrapolates the damped trend. Bounds are forecast ± 1.96 times
// the standard deviation of the in-sample residuals, constant across the
// horizon.
func (m *Model) Forecast(horizon int) (values, lower, upper []float64, err error) {
	if m == nil {
		return nil, nil, nil, errors.New("nil model")
	}
	if horizon <= 0 {
		return nil, nil, nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}

	values = make([]float64, horizon)
	lower = make([]float64, horizon)
	upper = make([]float64, horizon)
	half := zScore * m.residualStd
	dampSum := 0.0
	damp := 1.0
	for h := 0; h < horizon; h++ {
		damp *= m.phi
		dampSum += damp
		v := m.level + dampSum*m.trend
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, nil, errors.New("forecast is non-finite")
		}
		values[h] = v
		lower[h] = v - half
		upper[h] = v + half
	}
	return values, lower, upper, nil
}

// Params reports the selected smoothing parameters.
func (m *Model) Params() (alpha, beta, phi float64) {
	return m.alpha, m.beta, m.phi
}
