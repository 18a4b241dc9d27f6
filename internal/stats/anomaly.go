package stats

import (
	"time"

	"github.com/narumiruna/go-iforest/pkg/iforest"

	"stocksage/internal/domain"
)

// Isolation-forest scores above this mark a daily return as anomalous.
const anomalyScoreThreshold = 0.6

const minAnomalyObservations = 30

// AnomalousReturnDates flags the dates whose daily return an isolation
// forest scores as outliers. Short series return nil; the forest needs some
// mass to be meaningful.
func AnomalousReturnDates(series domain.HistoricalSeries) []time.Time {
	closes := series.Closes()
	returns := Returns(closes)
	if len(returns) < minAnomalyObservations {
		return nil
	}

	samples := make([][]float64, len(returns))
	for i, r := range returns {
		samples[i] = []float64{r}
	}
	forest := iforest.New()
	forest.Fit(samples)
	scores := forest.Score(samples)

	var dates []time.Time
	for i, score := range scores {
		if score > anomalyScoreThreshold {
			// returns[i] belongs to the (i+1)-th observation.
			dates = append(dates, series.Points[i+1].Date)
		}
	}
	return dates
}
