package forecast

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
	"stocksage/internal/forecast/arima"
	"stocksage/internal/forecast/seasonal"
	"stocksage/internal/forecast/smoothing"
)

// Forecaster runs the individual models over a price history and blends them.
// It is stateless between calls; every Run refits all models from scratch.
type Forecaster struct {
	horizon         int
	seasonalEnabled bool
	tracer          trace.Tracer
}

// NewForecaster builds a forecaster for the given horizon. seasonalEnabled is
// resolved once at startup from config; when false the seasonal model reports
// unavailable instead of failed.
func NewForecaster(horizonDays int, seasonalEnabled bool) *Forecaster {
	if horizonDays <= 0 {
		horizonDays = 10
	}
	return &Forecaster{
		horizon:         horizonDays,
		seasonalEnabled: seasonalEnabled,
		tracer:          otel.Tracer("forecast"),
	}
}

// Horizon reports the configured forecast length in days.
func (f *Forecaster) Horizon() int { return f.horizon }

// Run fits all models sequentially and returns the complete result. Model
// failures are contained as FailedResult entries; Run itself never errors.
func (f *Forecaster) Run(ctx context.Context, series domain.HistoricalSeries) domain.ForecastResult {
	_, span := f.tracer.Start(ctx, "forecast.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("symbol", series.Symbol),
		attribute.Int("observations", series.Len()),
		attribute.Int("horizon_days", f.horizon),
	)

	closes := series.Closes()
	futureDates := futureDates(series, f.horizon)

	result := domain.ForecastResult{
		Symbol:       series.Symbol,
		CurrentPrice: series.LastClose(),
		HorizonDays:  f.horizon,
		FutureDates:  futureDates,
		Models: []domain.ModelResult{
			f.runARIMA(closes),
			f.runSmoothing(closes),
			f.runSeasonal(series, futureDates),
		},
	}

	ens, err := Combine(result.Models)
	if err != nil {
		result.EnsembleErr = err.Error()
	} else {
		result.Ensemble = ens
	}
	result.Summary = Summarize(ens, result.CurrentPrice)
	result.Volatility = Volatility(closes)

	span.SetAttributes(attribute.Int("models_used", len(result.Summary.ModelsUsed)))
	return result
}

func (f *Forecaster) runARIMA(closes []float64) domain.ModelResult {
	m, err := arima.Fit(closes)
	if err != nil {
		return domain.FailedResult(domain.ModelARIMA, err.Error())
	}
	values, lower, upper, err := m.Forecast(f.horizon)
	if err != nil {
		return domain.FailedResult(domain.ModelARIMA, err.Error())
	}
	return domain.OKResult(domain.ModelForecast{
		Model: domain.ModelARIMA, Values: values, Lower: lower, Upper: upper,
	})
}

func (f *Forecaster) runSmoothing(closes []float64) domain.ModelResult {
	m, err := smoothing.Fit(closes)
	if err != nil {
		return domain.FailedResult(domain.ModelSmoothing, err.Error())
	}
	values, lower, upper, err := m.Forecast(f.horizon)
	if err != nil {
		return domain.FailedResult(domain.ModelSmoothing, err.Error())
	}
	return domain.OKResult(domain.ModelForecast{
		Model: domain.ModelSmoothing, Values: values, Lower: lower, Upper: upper,
	})
}

func (f *Forecaster) runSeasonal(series domain.HistoricalSeries, futureDates []time.Time) domain.ModelResult {
	if !f.seasonalEnabled {
		return domain.UnavailableResult(domain.ModelSeasonal)
	}
	m, err := seasonal.Fit(series.Dates(), series.Closes())
	if err != nil {
		return domain.FailedResult(domain.ModelSeasonal, err.Error())
	}
	values, lower, upper, err := m.Forecast(futureDates)
	if err != nil {
		return domain.FailedResult(domain.ModelSeasonal, err.Error())
	}
	return domain.OKResult(domain.ModelForecast{
		Model: domain.ModelSeasonal, Values: values, Lower: lower, Upper: upper,
	})
}

// futureDates extends the series by horizon consecutive calendar days.
func futureDates(series domain.HistoricalSeries, horizon int) []time.Time {
	last := time.Now().UTC().Truncate(24 * time.Hour)
	if series.Len() > 0 {
		last = series.Points[series.Len()-1].Date
	}
	out := make([]time.Time, horizon)
	for i := 0; i < horizon; i++ {
		out[i] = last.AddDate(0, 0, i+1)
	}
	return out
}
