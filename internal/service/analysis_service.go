package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/classifier"
	"stocksage/internal/domain"
	"stocksage/internal/stats"
)

// Forecaster runs the model ensemble over a price history.
type Forecaster interface {
	Run(ctx context.Context, series domain.HistoricalSeries) domain.ForecastResult
	Horizon() int
}

// MarketData is the slice of MarketService the analysis pipeline needs.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetHistory(ctx context.Context, symbol string, days int) (domain.HistoricalSeries, error)
	RefreshBars(ctx context.Context, symbol string, days int) error
}

// NewsSource fetches recent articles for a symbol.
type NewsSource interface {
	FetchNews(ctx context.Context, symbol string, maxItems int, lookback time.Duration) ([]domain.NewsItem, error)
}

// Agents runs the analyst prompts.
type Agents interface {
	AnalyzeNews(ctx context.Context, symbol string, items []domain.NewsItem) string
	AnalyzeStatistics(ctx context.Context, symbol string, summary stats.Summary, forecast domain.ForecastResult) string
	AnalyzeFundamentals(ctx context.Context, symbol string, quote domain.Quote, summary stats.Summary) string
	Synthesize(ctx context.Context, symbol, newsAnalysis, statisticalAnalysis, financialAnalysis string) (string, domain.Recommendation)
}

// ReportStore persists completed reports.
type ReportStore interface {
	Save(ctx context.Context, report *domain.AnalystReport) error
	Latest(ctx context.Context, symbol string) (*domain.AnalystReport, error)
}

// ReportRenderer writes a report to disk and returns the output path.
type ReportRenderer interface {
	Render(report *domain.AnalystReport) (string, error)
}

// AnalysisOptions carry the tunables resolved from config at startup.
type AnalysisOptions struct {
	HistoryDays     int
	NewsMaxArticles int
	NewsLookback    time.Duration
}

// AnalysisService orchestrates a full analysis run: refresh data, run the
// forecasting ensemble, run the analyst agents, persist, render.
type AnalysisService struct {
	tracer     trace.Tracer
	market     MarketData
	news       NewsSource
	agents     Agents
	forecaster Forecaster
	reports    ReportStore
	renderer   ReportRenderer
	opts       AnalysisOptions

	// Hook for tests; defaults to classifier.ProbUp.
	probUp func(series domain.HistoricalSeries, horizon int, opts classifier.Options) (float64, error)
}

func NewAnalysisService(
	tracer trace.Tracer,
	market MarketData,
	news NewsSource,
	agents Agents,
	forecaster Forecaster,
	reports ReportStore,
	renderer ReportRenderer,
	opts AnalysisOptions,
) *AnalysisService {
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 365
	}
	if opts.NewsMaxArticles <= 0 {
		opts.NewsMaxArticles = 10
	}
	if opts.NewsLookback <= 0 {
		opts.NewsLookback = 7 * 24 * time.Hour
	}
	return &AnalysisService{
		tracer:     tracer,
		market:     market,
		news:       news,
		agents:     agents,
		forecaster: forecaster,
		reports:    reports,
		renderer:   renderer,
		opts:       opts,
		probUp:     classifier.ProbUp,
	}
}

// Analyze runs the full pipeline for one symbol and returns the report.
// Optional stages (news, classifier, persistence, rendering) degrade with a
// log line; only missing price history fails the run.
func (s *AnalysisService) Analyze(ctx context.Context, symbol string) (*domain.AnalystReport, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	if !domain.IsSupported(symbol) {
		return nil, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	if err := s.market.RefreshBars(ctx, symbol, s.opts.HistoryDays); err != nil {
		log.Printf("bar refresh failed for %s, using stored data: %v", symbol, err)
	}
	series, err := s.market.GetHistory(ctx, symbol, s.opts.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", symbol, err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil {
		log.Printf("quote fetch failed for %s, deriving from last close: %v", symbol, err)
		quote = &domain.Quote{
			Symbol:      symbol,
			CompanyName: domain.CompanyName(symbol),
			Price:       series.LastClose(),
		}
	}

	forecast := s.forecaster.Run(ctx, series)
	summary := stats.Compute(series)

	probUp := 0.5
	if p, err := s.probUp(series, s.forecaster.Horizon(), classifier.Options{}); err != nil {
		log.Printf("direction classifier skipped for %s: %v", symbol, err)
	} else {
		probUp = p
	}

	items, err := s.news.FetchNews(ctx, symbol, s.opts.NewsMaxArticles, s.opts.NewsLookback)
	if err != nil {
		log.Printf("news fetch failed for %s: %v", symbol, err)
		items = nil
	}

	newsAnalysis := s.agents.AnalyzeNews(ctx, symbol, items)
	statisticalAnalysis := s.agents.AnalyzeStatistics(ctx, symbol, summary, forecast)
	financialAnalysis := s.agents.AnalyzeFundamentals(ctx, symbol, *quote, summary)
	synthesis, recommendation := s.agents.Synthesize(ctx, symbol, newsAnalysis, statisticalAnalysis, financialAnalysis)

	report := &domain.AnalystReport{
		Symbol:              symbol,
		GeneratedAt:         time.Now().UTC(),
		CurrentPrice:        quote.Price,
		NewsAnalysis:        newsAnalysis,
		StatisticalAnalysis: statisticalAnalysis,
		FinancialAnalysis:   financialAnalysis,
		Synthesis:           synthesis,
		Recommendation:      recommendation,
		DirectionProbUp:     probUp,
		Forecast:            &forecast,
	}

	if s.reports != nil {
		if err := s.reports.Save(ctx, report); err != nil {
			log.Printf("report persist failed for %s: %v", symbol, err)
		}
	}
	if s.renderer != nil {
		if path, err := s.renderer.Render(report); err != nil {
			log.Printf("report render failed for %s: %v", symbol, err)
		} else {
			log.Printf("Report for %s written to %s", symbol, path)
		}
	}

	span.SetAttributes(attribute.String("recommendation", string(recommendation)))
	return report, nil
}

// AnalyzeAll runs Analyze for every symbol sequentially. Failures are logged
// and do not stop the batch.
func (s *AnalysisService) AnalyzeAll(ctx context.Context, symbols []string) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze-all")
	defer span.End()

	for _, symbol := range symbols {
		if _, err := s.Analyze(ctx, symbol); err != nil {
			log.Printf("analysis failed for %s: %v", symbol, err)
		}
	}
}

// LatestReport returns the newest persisted report for a symbol.
func (s *AnalysisService) LatestReport(ctx context.Context, symbol string) (*domain.AnalystReport, error) {
	if s.reports == nil {
		return nil, fmt.Errorf("report store not configured")
	}
	return s.reports.Latest(ctx, symbol)
}
