package seasonal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Additive decomposition model in the Prophet mold: piecewise-linear trend
// with penalized changepoints, weekly and yearly Fourier seasonality, daily
// seasonality disabled. Fit is a single ridge regression.

const (
	zScore = 1.96

	changepointPrior = 0.05
	maxChangepoints  = 25
	changepointRange = 0.8

	weeklyOrder  = 3
	yearlyOrder  = 10
	weeklyPeriod = 7.0
	yearlyPeriod = 365.25

	minObservations = 10
)

// Model holds the fitted coefficients and the time scale of the training data.
type Model struct {
	coef         []float64
	changepoints []float64
	origin       time.Time
	span         float64
	n            int
	residualStd  float64
}

// Fit regresses closes on trend, changepoint, and Fourier features. Dates
// must be ordered; gaps (weekends, holidays) are handled naturally because
// features are functions of the calendar date.
func Fit(dates []time.Time, prices []float64) (*Model, error) {
	if len(dates) != len(prices) {
		return nil, fmt.Errorf("dates/prices length mismatch: %d vs %d", len(dates), len(prices))
	}
	n := len(prices)
	if n < minObservations {
		return nil, fmt.Errorf("insufficient observations: have %d, need %d", n, minObservations)
	}

	origin := dates[0]
	span := dates[n-1].Sub(origin).Hours() / 24
	if span <= 0 {
		return nil, errors.New("series spans no time")
	}

	ncp := n / 4
	if ncp > maxChangepoints {
		ncp = maxChangepoints
	}
	changepoints := make([]float64, ncp)
	for i := range changepoints {
		changepoints[i] = changepointRange * float64(i+1) / float64(ncp+1)
	}

	m := &Model{changepoints: changepoints, origin: origin, span: span, n: n}
	cols := m.featureCount()

	x := mat.NewDense(n, cols, nil)
	y := mat.NewVecDense(n, nil)
	row := make([]float64, cols)
	for i := 0; i < n; i++ {
		m.features(dates[i], row)
		x.SetRow(i, row)
		y.SetVec(i, prices[i])
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 0; j < cols; j++ {
		xtx.Set(j, j, xtx.At(j, j)+m.penalty(j))
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve ridge system: %w", err)
	}
	m.coef = make([]float64, cols)
	for j := 0; j < cols; j++ {
		m.coef[j] = beta.AtVec(j)
	}

	rss := 0.0
	for i := 0; i < n; i++ {
		m.features(dates[i], row)
		pred := 0.0
		for j := 0; j < cols; j++ {
			pred += m.coef[j] * row[j]
		}
		r := prices[i] - pred
		rss += r * r
	}
	m.residualStd = math.Sqrt(rss / float64(n))
	if math.IsNaN(m.residualStd) || math.IsInf(m.residualStd, 0) {
		return nil, errors.New("fit produced non-finite residuals")
	}
	return m, nil
}

// Forecast evaluates the fitted curve at the given future dates. Bounds widen
// with the horizon to reflect growing trend uncertainty.
func (m *Model) Forecast(futureDates []time.Time) (values, lower, upper []float64, err error) {
	if m == nil {
		return nil, nil, nil, errors.New("nil model")
	}
	if len(futureDates) == 0 {
		return nil, nil, nil, errors.New("no forecast dates given")
	}

	values = make([]float64, len(futureDates))
	lower = make([]float64, len(futureDates))
	upper = make([]float64, len(futureDates))
	row := make([]float64, m.featureCount())
	for i, d := range futureDates {
		m.features(d, row)
		v := 0.0
		for j, c := range m.coef {
			v += c * row[j]
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, nil, errors.New("forecast is non-finite")
		}
		half := zScore * m.residualStd * math.Sqrt(1+float64(i+1)/float64(m.n))
		values[i] = v
		lower[i] = v - half
		upper[i] = v + half
	}
	return values, lower, upper, nil
}

func (m *Model) featureCount() int {
	return 2 + len(m.changepoints) + 2*weeklyOrder + 2*yearlyOrder
}

// features fills row with [1, t, hinge(t-s_j)..., weekly Fourier, yearly
// Fourier] for the given calendar date. t is days since origin scaled by the
// training span, so changepoint locations stay in (0,1).
func (m *Model) features(date time.Time, row []float64) {
	days := date.Sub(m.origin).Hours() / 24
	t := days / m.span

	row[0] = 1
	row[1] = t
	k := 2
	for _, s := range m.changepoints {
		if t > s {
			row[k] = t - s
		} else {
			row[k] = 0
		}
		k++
	}
	for order := 1; order <= weeklyOrder; order++ {
		arg := 2 * math.Pi * float64(order) * days / weeklyPeriod
		row[k] = math.Sin(arg)
		row[k+1] = math.Cos(arg)
		k += 2
	}
	for order := 1; order <= yearlyOrder; order++ {
		arg := 2 * math.Pi * float64(order) * days / yearlyPeriod
		row[k] = math.Sin(arg)
		row[k+1] = math.Cos(arg)
		k += 2
	}
}

// penalty returns the ridge weight for coefficient j. Changepoint deltas get
// the strongest shrinkage (inverse of the changepoint prior), seasonal terms
// a mild one, intercept and base slope almost none.
func (m *Model) penalty(j int) float64 {
	switch {
	case j < 2:
		return 1e-8
	case j < 2+len(m.changepoints):
		return 1.0 / changepointPrior
	default:
		return 1.0
	}
}
