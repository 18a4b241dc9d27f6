package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
)

// MarketAPI is the slice of the market service the HTTP layer uses.
type MarketAPI interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetQuotes(ctx context.Context) ([]*domain.Quote, error)
	GetHistory(ctx context.Context, symbol string, days int) (domain.HistoricalSeries, error)
}

// ForecastAPI produces a forecast for a price series.
type ForecastAPI interface {
	Run(ctx context.Context, series domain.HistoricalSeries) domain.ForecastResult
	Horizon() int
}

// AnalysisAPI runs and retrieves analyst reports.
type AnalysisAPI interface {
	Analyze(ctx context.Context, symbol string) (*domain.AnalystReport, error)
	LatestReport(ctx context.Context, symbol string) (*domain.AnalystReport, error)
}

type Handler struct {
	tracer     trace.Tracer
	market     MarketAPI
	forecaster ForecastAPI
	analysis   AnalysisAPI
	startedAt  time.Time
}

func New(tracer trace.Tracer, market MarketAPI, forecaster ForecastAPI, analysis AnalysisAPI) *Handler {
	return &Handler{
		tracer:     tracer,
		market:     market,
		forecaster: forecaster,
		analysis:   analysis,
		startedAt:  time.Now().UTC(),
	}
}

// RegisterRoutes wires the endpoints. The /api group is guarded by the API
// key middleware; /health stays open for probes.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/quotes", h.GetAllQuotes)
	api.GET("/quotes/:symbol", h.GetQuote)
	api.GET("/history/:symbol", h.GetHistory)
	api.GET("/forecast/:symbol", h.GetForecast)
	api.POST("/analyze/:symbol", h.Analyze)
	api.GET("/reports/:symbol", h.GetLatestReport)
}
