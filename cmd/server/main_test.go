package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/bot"
	"stocksage/internal/config"
	"stocksage/internal/domain"
	"stocksage/internal/job"
	"stocksage/internal/llm"
	"stocksage/internal/service"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
}

func stubServerDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewProvider := newYahooProviderFunc
	origNewNews := newNewsProviderFunc
	origNewLLM := newLLMClientFunc
	origStartPoller := startPollerFunc
	origStartAnalysisJob := startAnalysisJobFunc
	origStartTelegram := startTelegramBotFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			RedisURL:      "",
			DatabaseURL:   "",
			Symbols:       []string{"AAPL"},
			ForecastDays:  10,
			QuotePollSecs: 1,
		}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newYahooProviderFunc = func(trace.Tracer) service.StockProvider { return stubStockProvider{} }
	newNewsProviderFunc = func(trace.Tracer) service.NewsSource { return stubNewsSource{} }
	newLLMClientFunc = func(context.Context, *config.Config, trace.Tracer) llm.Client { return stubLLM{} }
	startPollerFunc = func(*job.QuotePoller, context.Context) {}
	startAnalysisJobFunc = func(*job.AnalysisJob, context.Context) {}
	startTelegramBotFunc = func(bot.QuoteSource, bot.ForecastSource, bot.ReportSource) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(*http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(*http.Server, context.Context) error { return nil }

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newYahooProviderFunc = origNewProvider
		newNewsProviderFunc = origNewNews
		newLLMClientFunc = origNewLLM
		startPollerFunc = origStartPoller
		startAnalysisJobFunc = origStartAnalysisJob
		startTelegramBotFunc = origStartTelegram
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}
}

type stubStockProvider struct{}

func (stubStockProvider) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return &domain.Quote{Symbol: symbol, Price: 1}, nil
}

func (stubStockProvider) FetchDailyBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error) {
	return []domain.Bar{}, nil
}

type stubNewsSource struct{}

func (stubNewsSource) FetchNews(ctx context.Context, symbol string, maxItems int, lookback time.Duration) ([]domain.NewsItem, error) {
	return nil, nil
}

type stubLLM struct{}

func (stubLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "stub", nil
}

func (stubLLM) Available(ctx context.Context) bool { return true }

func (stubLLM) Name() string { return "stub" }
