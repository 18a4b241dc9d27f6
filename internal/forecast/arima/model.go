package arima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Order is fixed at ARIMA(5,1,0): five autoregressive lags on the
// once-differenced series, no moving-average terms.
const (
	MaxLags = 5
	zScore  = 1.96 // 95% interval
)

// Small ridge term keeps the normal equations solvable on near-collinear
// series (e.g. a perfectly linear price ramp).
const ridge = 1e-6

const minObservations = 8

// Model holds a fitted autoregressive model on the differenced price series.
type Model struct {
	lags      int
	intercept float64
	phi       []float64
	sigma2    float64
	history   []float64
	lastPrice float64
}

// Fit estimates AR coefficients on the differenced series by least squares.
// The lag order shrinks below MaxLags when the series is too short to keep
// the regression overdetermined.
func Fit(prices []float64) (*Model, error) {
	if len(prices) < minObservations {
		return nil, fmt.Errorf("insufficient observations: have %d, need %d", len(prices), minObservations)
	}

	diffs := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		diffs[i-1] = prices[i] - prices[i-1]
	}

	lags := MaxLags
	for lags > 1 && len(diffs)-lags < lags+1 {
		lags--
	}
	rows := len(diffs) - lags
	if rows < 2 {
		return nil, errors.New("insufficient observations after differencing")
	}

	cols := lags + 1
	x := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for t := 0; t < rows; t++ {
		x.Set(t, 0, 1)
		for j := 0; j < lags; j++ {
			x.Set(t, j+1, diffs[lags+t-1-j])
		}
		y.SetVec(t, diffs[lags+t])
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for i := 0; i < cols; i++ {
		xtx.Set(i, i, xtx.At(i, i)+ridge)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}

	phi := make([]float64, lags)
	for i := 0; i < lags; i++ {
		phi[i] = beta.AtVec(i + 1)
	}
	m := &Model{
		lags:      lags,
		intercept: beta.AtVec(0),
		phi:       phi,
		history:   diffs,
		lastPrice: prices[len(prices)-1],
	}

	rss := 0.0
	for t := 0; t < rows; t++ {
		pred := m.intercept
		for j := 0; j < lags; j++ {
			pred += phi[j] * diffs[lags+t-1-j]
		}
		r := diffs[lags+t] - pred
		rss += r * r
	}
	dof := rows - cols
	if dof < 1 {
		dof = 1
	}
	m.sigma2 = rss / float64(dof)
	if math.IsNaN(m.sigma2) || math.IsInf(m.sigma2, 0) {
		return nil, errors.New("fit produced non-finite residual variance")
	}

	return m, nil
}

// Forecast produces horizon steps ahead with a 95% interval. Interval width
// follows the psi-weight variance of the integrated AR process.
func (m *Model) Forecast(horizon int) (values, lower, upper []float64, err error) {
	if m == nil {
		return nil, nil, nil, errors.New("nil model")
	}
	if horizon <= 0 {
		return nil, nil, nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}

	// Forecast the differenced series, cumulating back to price levels.
	diffs := append([]float64(nil), m.history...)
	values = make([]float64, horizon)
	level := m.lastPrice
	for h := 0; h < horizon; h++ {
		d := m.intercept
		for j := 0; j < m.lags; j++ {
			d += m.phi[j] * diffs[len(diffs)-1-j]
		}
		diffs = append(diffs, d)
		level += d
		values[h] = level
	}

	// Psi weights of the AR process, cumulated for the d=1 integration.
	psi := make([]float64, horizon)
	psi[0] = 1
	for j := 1; j < horizon; j++ {
		s := 0.0
		for i := 1; i <= m.lags && i <= j; i++ {
			s += m.phi[i-1] * psi[j-i]
		}
		psi[j] = s
	}
	cum := make([]float64, horizon)
	run := 0.0
	for j := 0; j < horizon; j++ {
		run += psi[j]
		cum[j] = run
	}

	lower = make([]float64, horizon)
	upper = make([]float64, horizon)
	variance := 0.0
	for h := 0; h < horizon; h++ {
		variance += m.sigma2 * cum[h] * cum[h]
		half := zScore * math.Sqrt(variance)
		if math.IsNaN(half) || math.IsInf(half, 0) {
			return nil, nil, nil, errors.New("forecast variance is non-finite")
		}
		lower[h] = values[h] - half
		upper[h] = values[h] + half
	}

	return values, lower, upper, nil
}

// Lags reports the effective AR order used by the fit.
func (m *Model) Lags() int {
	if m == nil {
		return 0
	}
	return m.lags
}
