package forecast

import (
	"fmt"
	"math"

	"stocksage/internal/domain"
)

// Summarize derives the human-facing summary from the ensemble. When the
// ensemble failed entirely the summary degrades to the current price with
// zero returns, and Failed lets callers label the run accordingly.
func Summarize(ens *domain.EnsembleForecast, currentPrice float64) domain.ForecastSummary {
	if ens == nil || len(ens.Values) == 0 {
		flat := pointSummary(currentPrice, currentPrice, currentPrice, currentPrice)
		return domain.ForecastSummary{
			CurrentPrice: currentPrice,
			NextDay:      flat,
			DayN:         flat,
			ModelsUsed:   []string{},
			Confidence:   "Low",
			Failed:       true,
		}
	}

	n := len(ens.Values)
	confidence := "Low"
	if len(ens.ModelsUsed) >= 2 {
		confidence = "Medium"
	}
	return domain.ForecastSummary{
		CurrentPrice: currentPrice,
		NextDay:      pointSummary(currentPrice, ens.Values[0], ens.Lower[0], ens.Upper[0]),
		DayN:         pointSummary(currentPrice, ens.Values[n-1], ens.Lower[n-1], ens.Upper[n-1]),
		ModelsUsed:   ens.ModelsUsed,
		Confidence:   confidence,
	}
}

func pointSummary(currentPrice, prediction, lower, upper float64) domain.PointSummary {
	returnPct := 0.0
	if currentPrice != 0 {
		returnPct = (prediction - currentPrice) / currentPrice * 100
	}
	if math.IsNaN(returnPct) || math.IsInf(returnPct, 0) {
		returnPct = 0
	}
	return domain.PointSummary{
		Prediction:        prediction,
		Lower:             lower,
		Upper:             upper,
		ExpectedReturnPct: returnPct,
		ReturnLabel:       fmt.Sprintf("%+.2f%%", returnPct),
		RangeLabel:        fmt.Sprintf("$%.2f - $%.2f", lower, upper),
	}
}
