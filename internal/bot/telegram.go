package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"stocksage/internal/domain"
)

// QuoteSource serves quotes and history for the bot commands.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetHistory(ctx context.Context, symbol string, days int) (domain.HistoricalSeries, error)
}

// ForecastSource runs the model ensemble on demand.
type ForecastSource interface {
	Run(ctx context.Context, series domain.HistoricalSeries) domain.ForecastResult
}

// ReportSource serves the latest persisted analyst report.
type ReportSource interface {
	LatestReport(ctx context.Context, symbol string) (*domain.AnalystReport, error)
}

func StartTelegramBot(market QuoteSource, forecaster ForecastSource, reports ReportSource) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/price", func(c tele.Context) error {
		symbol, errMsg := symbolArg(c.Args(), "/price AAPL")
		if errMsg != "" {
			return c.Send(errMsg)
		}
		quote, err := market.GetQuote(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching quote for %s: %v", symbol, err))
		}
		return c.Send(formatQuote(quote))
	})

	b.Handle("/forecast", func(c tele.Context) error {
		symbol, errMsg := symbolArg(c.Args(), "/forecast AAPL")
		if errMsg != "" {
			return c.Send(errMsg)
		}
		series, err := market.GetHistory(context.Background(), symbol, 365)
		if err != nil || series.Len() == 0 {
			return c.Send(fmt.Sprintf("No price history for %s", symbol))
		}
		result := forecaster.Run(context.Background(), series)
		return c.Send(formatForecast(result))
	})

	b.Handle("/report", func(c tele.Context) error {
		symbol, errMsg := symbolArg(c.Args(), "/report AAPL")
		if errMsg != "" {
			return c.Send(errMsg)
		}
		report, err := reports.LatestReport(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("No report for %s yet. POST /api/analyze/%s to run one.", symbol, symbol))
		}
		return c.Send(formatReport(report))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func symbolArg(args []string, usage string) (string, string) {
	supported := strings.Join(domain.SupportedSymbols, ", ")
	if len(args) == 0 {
		return "", fmt.Sprintf("Usage: %s\nSupported: %s", usage, supported)
	}
	symbol := strings.ToUpper(args[0])
	if !domain.IsSupported(symbol) {
		return "", fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, supported)
	}
	return symbol, ""
}

func formatQuote(q *domain.Quote) string {
	return fmt.Sprintf(
		"%s (%s)\nPrice: $%.2f\nDay Change: %+.2f (%+.2f%%)\n52w Range: $%.2f - $%.2f",
		q.Symbol, q.CompanyName, q.Price, q.DayChange, q.DayChangePct, q.FiftyTwoWkLow, q.FiftyTwoWkHigh,
	)
}

func formatForecast(r domain.ForecastResult) string {
	s := r.Summary
	if s.Failed {
		return fmt.Sprintf("%s: all forecasting models failed, no prediction available", r.Symbol)
	}
	return fmt.Sprintf(
		"%s forecast (%d days)\nCurrent: $%.2f\nNext day: $%.2f (%s)\nDay %d: $%.2f (%s)\nModels: %s\nConfidence: %s",
		r.Symbol, r.HorizonDays,
		s.CurrentPrice,
		s.NextDay.Prediction, s.NextDay.ReturnLabel,
		r.HorizonDays, s.DayN.Prediction, s.DayN.ReturnLabel,
		strings.Join(s.ModelsUsed, ", "),
		s.Confidence,
	)
}

func formatReport(r *domain.AnalystReport) string {
	return fmt.Sprintf(
		"%s analyst report (%s)\nRecommendation: %s\nPrice: $%.2f\nP(up): %.0f%%\n\n%s",
		r.Symbol, r.GeneratedAt.Format("2006-01-02"),
		r.Recommendation, r.CurrentPrice, r.DirectionProbUp*100,
		truncate(r.Synthesis, 2000),
	)
}

// Telegram caps messages at 4096 chars; keep synthesis well under it.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
