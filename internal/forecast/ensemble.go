package forecast

import (
	"errors"
	"fmt"

	"stocksage/internal/domain"
)

var (
	// ErrNoModelAvailable means every forecaster either failed or was disabled.
	ErrNoModelAvailable = errors.New("no forecasting model produced a usable forecast")
	// ErrModelUnavailable marks a model disabled by configuration.
	ErrModelUnavailable = errors.New("model not available")
)

// Nominal blend weights. Renormalized over whichever models actually produced
// a forecast; a model is never excluded for quality, only for absence.
var nominalWeights = map[string]float64{
	domain.ModelARIMA:     0.4,
	domain.ModelSmoothing: 0.3,
	domain.ModelSeasonal:  0.3,
}

// Combine blends the surviving model forecasts element-wise using the
// renormalized nominal weights. Results are taken in the order given, so the
// ensemble's ModelsUsed ordering is deterministic.
func Combine(results []domain.ModelResult) (*domain.EnsembleForecast, error) {
	var survivors []domain.ModelResult
	total := 0.0
	horizon := -1
	for _, r := range results {
		if r.Status != domain.StatusOK {
			continue
		}
		w, known := nominalWeights[r.Model]
		if !known {
			return nil, fmt.Errorf("no nominal weight for model %q", r.Model)
		}
		n := len(r.Forecast.Values)
		if n == 0 || len(r.Forecast.Lower) != n || len(r.Forecast.Upper) != n {
			return nil, fmt.Errorf("model %q forecast arrays are inconsistent", r.Model)
		}
		if horizon == -1 {
			horizon = n
		} else if n != horizon {
			return nil, fmt.Errorf("model %q horizon %d does not match %d", r.Model, n, horizon)
		}
		survivors = append(survivors, r)
		total += w
	}
	if len(survivors) == 0 {
		return nil, ErrNoModelAvailable
	}

	ens := &domain.EnsembleForecast{
		Values:     make([]float64, horizon),
		Lower:      make([]float64, horizon),
		Upper:      make([]float64, horizon),
		ModelsUsed: make([]string, 0, len(survivors)),
		Weights:    make([]float64, 0, len(survivors)),
	}
	for _, r := range survivors {
		w := nominalWeights[r.Model] / total
		ens.ModelsUsed = append(ens.ModelsUsed, r.Model)
		ens.Weights = append(ens.Weights, w)
		for i := 0; i < horizon; i++ {
			ens.Values[i] += w * r.Forecast.Values[i]
			ens.Lower[i] += w * r.Forecast.Lower[i]
			ens.Upper[i] += w * r.Forecast.Upper[i]
		}
	}
	return ens, nil
}
