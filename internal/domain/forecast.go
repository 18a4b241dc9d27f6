package domain

import "time"

// PricePoint is one observed closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// HistoricalSeries is an ordered sequence of closing prices, strictly
// increasing by date. The forecasting core receives it by value and never
// mutates it.
type HistoricalSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

func (s HistoricalSeries) Len() int { return len(s.Points) }

// Closes returns the closing prices in date order.
func (s HistoricalSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Dates returns the observation dates in order.
func (s HistoricalSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// LastClose returns the most recent observed price, or 0 for an empty series.
func (s HistoricalSeries) LastClose() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Close
}

// Model labels reported in forecast output.
const (
	ModelARIMA     = "ARIMA(5,1,0)"
	ModelSmoothing = "Holt-Winters (Additive Trend)"
	ModelSeasonal  = "Seasonal Decomposition"
)

// ModelStatus distinguishes a missing model from a model that blew up.
type ModelStatus string

const (
	StatusOK          ModelStatus = "ok"
	StatusUnavailable ModelStatus = "unavailable"
	StatusFailed      ModelStatus = "failed"
)

// ModelForecast is one model's point forecast with interval bounds.
// Values, Lower, and Upper always share the same length (the horizon).
type ModelForecast struct {
	Model  string    `json:"model"`
	Values []float64 `json:"forecast_values"`
	Lower  []float64 `json:"lower_bound"`
	Upper  []float64 `json:"upper_bound"`
}

// ModelResult is the outcome of asking one forecaster for a forecast:
// a forecast, "library not present", or a fit failure with its reason.
type ModelResult struct {
	Model    string        `json:"model"`
	Status   ModelStatus   `json:"status"`
	Forecast ModelForecast `json:"forecast,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

func OKResult(f ModelForecast) ModelResult {
	return ModelResult{Model: f.Model, Status: StatusOK, Forecast: f}
}

func UnavailableResult(model string) ModelResult {
	return ModelResult{Model: model, Status: StatusUnavailable, Reason: "model not available"}
}

func FailedResult(model, reason string) ModelResult {
	return ModelResult{Model: model, Status: StatusFailed, Reason: reason}
}

// EnsembleForecast is the weighted blend of the surviving model forecasts.
// Weights are post-renormalization and sum to 1.0.
type EnsembleForecast struct {
	Values     []float64 `json:"forecast_values"`
	Lower      []float64 `json:"lower_bound"`
	Upper      []float64 `json:"upper_bound"`
	ModelsUsed []string  `json:"models_used"`
	Weights    []float64 `json:"weights"`
}

// PointSummary describes the ensemble at a single future day.
type PointSummary struct {
	Prediction        float64 `json:"prediction"`
	Lower             float64 `json:"lower"`
	Upper             float64 `json:"upper"`
	ExpectedReturnPct float64 `json:"expected_return_pct"`
	ReturnLabel       string  `json:"expected_return"`
	RangeLabel        string  `json:"range"`
}

// ForecastSummary is the derived human-facing summary. When every model
// failed, Failed is true and the numeric fields fall back to CurrentPrice
// with zero returns.
type ForecastSummary struct {
	CurrentPrice float64      `json:"current_price"`
	NextDay      PointSummary `json:"next_day"`
	DayN         PointSummary `json:"day_n"`
	ModelsUsed   []string     `json:"models_used"`
	Confidence   string       `json:"confidence"`
	Failed       bool         `json:"failed"`
}

// VolatilityMetrics are simple return-volatility figures for a series.
type VolatilityMetrics struct {
	DailyPct      float64 `json:"daily_volatility"`
	AnnualizedPct float64 `json:"annualized_volatility"`
	ThirtyDayPct  float64 `json:"30d_volatility"`
}

// ForecastResult is the complete output of one forecasting run.
type ForecastResult struct {
	Symbol       string            `json:"symbol"`
	CurrentPrice float64           `json:"current_price"`
	HorizonDays  int               `json:"forecast_days"`
	FutureDates  []time.Time       `json:"future_dates"`
	Models       []ModelResult     `json:"models"`
	Ensemble     *EnsembleForecast `json:"ensemble,omitempty"`
	EnsembleErr  string            `json:"ensemble_error,omitempty"`
	Summary      ForecastSummary   `json:"summary"`
	Volatility   VolatilityMetrics `json:"volatility"`
}
