package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/analyst"
	"stocksage/internal/bot"
	"stocksage/internal/cache"
	"stocksage/internal/config"
	"stocksage/internal/db"
	"stocksage/internal/forecast"
	"stocksage/internal/handler"
	"stocksage/internal/job"
	"stocksage/internal/llm"
	"stocksage/internal/provider"
	"stocksage/internal/report"
	"stocksage/internal/repository"
	"stocksage/internal/service"
	"stocksage/pkg/tracing"

	_ "stocksage/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newBarRepoFunc       = repository.NewBarRepository
	newReportRepoFunc    = repository.NewReportRepository
	newYahooProviderFunc = func(tracer trace.Tracer) service.StockProvider {
		return provider.NewYahooProvider(tracer)
	}
	newNewsProviderFunc = func(tracer trace.Tracer) service.NewsSource {
		return provider.NewNewsProvider(tracer)
	}
	newLLMClientFunc       = selectLLMClient
	newMarketServiceFunc   = service.NewMarketService
	newAnalysisServiceFunc = service.NewAnalysisService
	newQuotePollerFunc     = job.NewQuotePoller
	newAnalysisJobFunc     = job.NewAnalysisJob
	startPollerFunc        = func(p *job.QuotePoller, ctx context.Context) { go p.Start(ctx) }
	startAnalysisJobFunc   = func(j *job.AnalysisJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// selectLLMClient prefers the local Ollama daemon and falls back to the
// OpenAI API when Ollama is unreachable and a key is configured.
func selectLLMClient(ctx context.Context, cfg *config.Config, tracer trace.Tracer) llm.Client {
	ollama := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.LLMTemperature, cfg.LLMMaxTokens, tracer)
	if ollama.Available(ctx) {
		log.Printf("Using Ollama model %s at %s", cfg.OllamaModel, cfg.OllamaBaseURL)
		return ollama
	}
	if cfg.OpenAIAPIKey != "" {
		log.Printf("Ollama unreachable, falling back to OpenAI model %s", cfg.OpenAIModel)
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTemperature, cfg.LLMMaxTokens, tracer)
	}
	log.Println("No LLM backend reachable, analyst agents will emit fallback summaries")
	return ollama
}

// @title           Stocksage API
// @version         1.0
// @description     Stock analysis service: market data, forecasting ensemble, and LLM analyst reports.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	barRepo := newBarRepoFunc(db.Pool, tracer)
	reportRepo := newReportRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := barRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run bar migrations: %v", err)
		}
		if err := reportRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run report migrations: %v", err)
		}
	}

	// Providers and services
	yahoo := newYahooProviderFunc(tracer)
	news := newNewsProviderFunc(tracer)
	marketService := newMarketServiceFunc(tracer, yahoo, barRepo, cache.Client, cfg.Symbols)

	llmClient := newLLMClientFunc(ctx, cfg, tracer)
	agents := analyst.NewService(tracer, llmClient)

	forecaster := forecast.NewForecaster(cfg.ForecastDays, cfg.SeasonalModelEnabled)
	renderer := report.NewRenderer(cfg.ReportOutputDir)

	analysisService := newAnalysisServiceFunc(
		tracer, marketService, news, agents, forecaster, reportRepo, renderer,
		service.AnalysisOptions{
			HistoryDays:     cfg.HistoryDays,
			NewsMaxArticles: cfg.NewsMaxArticles,
			NewsLookback:    time.Duration(cfg.NewsLookbackDays) * 24 * time.Hour,
		},
	)

	// Background jobs (stopped by ctx cancel)
	poller := newQuotePollerFunc(tracer, marketService, cfg.Symbols, cfg.QuotePollSecs, cfg.HistoryDays)
	startPollerFunc(poller, ctx)

	analysisJob := newAnalysisJobFunc(tracer, analysisService, cfg.Symbols, cfg.AnalysisHourUTC)
	startAnalysisJobFunc(analysisJob, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(marketService, forecaster, analysisService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, marketService, forecaster, analysisService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("stocksage"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
