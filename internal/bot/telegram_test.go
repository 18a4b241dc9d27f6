package bot

import (
	"strings"
	"testing"
	"time"

	"stocksage/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	StartTelegramBot(nil, nil, nil)
}

func TestSymbolArg(t *testing.T) {
	if _, msg := symbolArg(nil, "/price AAPL"); !strings.Contains(msg, "Usage:") {
		t.Errorf("missing usage message: %q", msg)
	}
	if _, msg := symbolArg([]string{"DOGE"}, "/price AAPL"); !strings.Contains(msg, "Unknown symbol") {
		t.Errorf("missing unknown-symbol message: %q", msg)
	}
	symbol, msg := symbolArg([]string{"aapl"}, "/price AAPL")
	if symbol != "AAPL" || msg != "" {
		t.Errorf("symbolArg = %q, %q", symbol, msg)
	}
}

func TestFormatQuote(t *testing.T) {
	msg := formatQuote(&domain.Quote{
		Symbol:         "AAPL",
		CompanyName:    "Apple Inc.",
		Price:          231.59,
		DayChange:      -1.2,
		DayChangePct:   -0.52,
		FiftyTwoWkLow:  164.08,
		FiftyTwoWkHigh: 237.23,
	})
	for _, want := range []string{"AAPL", "Apple Inc.", "$231.59", "-0.52%", "$164.08 - $237.23"} {
		if !strings.Contains(msg, want) {
			t.Errorf("quote message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatForecast(t *testing.T) {
	msg := formatForecast(domain.ForecastResult{
		Symbol:      "MSFT",
		HorizonDays: 10,
		Summary: domain.ForecastSummary{
			CurrentPrice: 420,
			NextDay:      domain.PointSummary{Prediction: 421, ReturnLabel: "+0.24%"},
			DayN:         domain.PointSummary{Prediction: 428, ReturnLabel: "+1.90%"},
			ModelsUsed:   []string{domain.ModelARIMA, domain.ModelSmoothing},
			Confidence:   "Medium",
		},
	})
	for _, want := range []string{"MSFT", "$421.00", "+1.90%", "Medium", domain.ModelARIMA} {
		if !strings.Contains(msg, want) {
			t.Errorf("forecast message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatForecastFailed(t *testing.T) {
	msg := formatForecast(domain.ForecastResult{
		Symbol:  "AAPL",
		Summary: domain.ForecastSummary{Failed: true},
	})
	if !strings.Contains(msg, "no prediction available") {
		t.Errorf("failed forecast message: %q", msg)
	}
}

func TestFormatReportTruncates(t *testing.T) {
	msg := formatReport(&domain.AnalystReport{
		Symbol:          "AAPL",
		GeneratedAt:     time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		CurrentPrice:    231.59,
		Recommendation:  domain.RecommendationHold,
		DirectionProbUp: 0.55,
		Synthesis:       strings.Repeat("x", 5000),
	})
	if len(msg) > 4096 {
		t.Fatalf("message length %d exceeds Telegram limit", len(msg))
	}
	if !strings.Contains(msg, "HOLD") || !strings.Contains(msg, "2026-08-25") {
		t.Errorf("report message: %q", msg[:120])
	}
}
