package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
)

const quoteCacheTTL = 60 * time.Second

// StockProvider fetches market data from the upstream API.
type StockProvider interface {
	FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error)
}

// BarStore persists and serves daily bars.
type BarStore interface {
	UpsertBars(ctx context.Context, bars []domain.Bar) error
	GetBars(ctx context.Context, symbol string, limit int) ([]domain.Bar, error)
	GetSeries(ctx context.Context, symbol string, days int) (domain.HistoricalSeries, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// MarketService orchestrates quote and bar fetching, caching, and retrieval.
type MarketService struct {
	tracer   trace.Tracer
	provider StockProvider
	repo     BarStore
	redis    RedisClient
	symbols  []string
}

func NewMarketService(
	tracer trace.Tracer,
	provider StockProvider,
	repo BarStore,
	redisClient RedisClient,
	symbols []string,
) *MarketService {
	if len(symbols) == 0 {
		symbols = domain.SupportedSymbols
	}
	return &MarketService{
		tracer:   tracer,
		provider: provider,
		repo:     repo,
		redis:    redisClient,
		symbols:  symbols,
	}
}

// Symbols returns the tickers this service tracks.
func (s *MarketService) Symbols() []string {
	return append([]string(nil), s.symbols...)
}

// GetQuote returns the latest quote for a symbol, cache first.
func (s *MarketService) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-quote")
	defer span.End()

	if !domain.IsSupported(symbol) {
		return nil, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	if s.redis != nil {
		cached, err := s.getQuoteCache(ctx, symbol)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	quote, err := s.provider.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		_ = s.setQuoteCache(ctx, quote)
	}
	return quote, nil
}

// GetQuotes returns quotes for every tracked symbol. A symbol whose fetch
// fails is skipped with a log line rather than failing the whole set.
func (s *MarketService) GetQuotes(ctx context.Context) ([]*domain.Quote, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-quotes")
	defer span.End()

	var quotes []*domain.Quote
	for _, symbol := range s.symbols {
		quote, err := s.GetQuote(ctx, symbol)
		if err != nil {
			log.Printf("quote fetch failed for %s: %v", symbol, err)
			continue
		}
		quotes = append(quotes, quote)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no quotes available")
	}
	return quotes, nil
}

// GetHistory returns the closing-price series for the trailing days window,
// backfilling from the provider when the store is empty.
func (s *MarketService) GetHistory(ctx context.Context, symbol string, days int) (domain.HistoricalSeries, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-history")
	defer span.End()

	if !domain.IsSupported(symbol) {
		return domain.HistoricalSeries{}, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	series, err := s.repo.GetSeries(ctx, symbol, days)
	if err != nil {
		return domain.HistoricalSeries{}, err
	}
	if series.Len() > 0 {
		return series, nil
	}

	if err := s.RefreshBars(ctx, symbol, days); err != nil {
		return domain.HistoricalSeries{}, err
	}
	return s.repo.GetSeries(ctx, symbol, days)
}

// RefreshBars fetches the trailing daily bars from the provider and upserts
// them into the store.
func (s *MarketService) RefreshBars(ctx context.Context, symbol string, days int) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-bars")
	defer span.End()

	bars, err := s.provider.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertBars(ctx, bars); err != nil {
		return fmt.Errorf("upsert bars for %s: %w", symbol, err)
	}
	log.Printf("Refreshed %d daily bars for %s", len(bars), symbol)
	return nil
}

// RefreshQuotes fetches fresh quotes for all tracked symbols and caches them.
func (s *MarketService) RefreshQuotes(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-quotes")
	defer span.End()

	refreshed := 0
	for _, symbol := range s.symbols {
		quote, err := s.provider.FetchQuote(ctx, symbol)
		if err != nil {
			log.Printf("quote refresh failed for %s: %v", symbol, err)
			continue
		}
		if s.redis != nil {
			if err := s.setQuoteCache(ctx, quote); err != nil {
				log.Printf("redis cache write error for %s: %v", symbol, err)
			}
		}
		refreshed++
	}
	log.Printf("Refreshed quotes for %d symbols", refreshed)
	return nil
}

func (s *MarketService) setQuoteCache(ctx context.Context, quote *domain.Quote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "quote:"+quote.Symbol, data, quoteCacheTTL).Err()
}

func (s *MarketService) getQuoteCache(ctx context.Context, symbol string) (*domain.Quote, error) {
	data, err := s.redis.Get(ctx, "quote:"+symbol).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var quote domain.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}
