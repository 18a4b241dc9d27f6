package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/ssh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/config"
	"stocksage/internal/repository"
	"stocksage/internal/service"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps()
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

func stubSSHDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origNewBarRepo := newBarRepoFunc
	origNewReportRepo := newReportRepoFunc
	origNewSSHUserRepo := newSSHUserRepoFunc
	origNewProvider := newYahooProviderFunc
	origNewMarketService := newMarketServiceFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			RedisURL:       "",
			DatabaseURL:    "",
			Symbols:        []string{"AAPL"},
			ForecastDays:   10,
			SSHPort:        2222,
			SSHHostKeyPath: ".ssh/test_key",
		}
	}
	initPostgresFunc = func(context.Context) {}
	initRedisFunc = func(context.Context) {}
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newBarRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.BarRepository {
		return nil
	}
	newReportRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.ReportRepository {
		return nil
	}
	newSSHUserRepoFunc = func(repository.PgxPool, trace.Tracer) *repository.SSHUserRepository {
		return nil
	}
	newYahooProviderFunc = func(trace.Tracer) service.StockProvider { return nil }
	newMarketServiceFunc = func(
		trace.Tracer,
		service.StockProvider,
		service.BarStore,
		service.RedisClient,
		[]string,
	) *service.MarketService {
		return nil
	}
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		return nil, nil
	}
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		newBarRepoFunc = origNewBarRepo
		newReportRepoFunc = origNewReportRepo
		newSSHUserRepoFunc = origNewSSHUserRepo
		newYahooProviderFunc = origNewProvider
		newMarketServiceFunc = origNewMarketService
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}
