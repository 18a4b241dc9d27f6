package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// QuotePoller runs background goroutines that keep quotes and daily bars fresh.
type QuotePoller struct {
	tracer       trace.Tracer
	market       MarketRefresher
	symbols      []string
	pollInterval time.Duration
	historyDays  int
}

type MarketRefresher interface {
	RefreshQuotes(ctx context.Context) error
	RefreshBars(ctx context.Context, symbol string, days int) error
}

func NewQuotePoller(tracer trace.Tracer, market MarketRefresher, symbols []string, pollIntervalSecs, historyDays int) *QuotePoller {
	if historyDays <= 0 {
		historyDays = 365
	}
	return &QuotePoller{
		tracer:       tracer,
		market:       market,
		symbols:      symbols,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		historyDays:  historyDays,
	}
}

// Start launches the polling goroutines. Blocks until ctx is cancelled.
func (p *QuotePoller) Start(ctx context.Context) {
	log.Println("Quote poller starting...")

	// Quotes every pollInterval (default 60s)
	go p.pollLoop(ctx, "quotes", p.pollInterval, func(ctx context.Context) error {
		return p.market.RefreshQuotes(ctx)
	})

	// Daily bars: one symbol every 30 minutes, round-robin. Bars only change
	// once a trading day, so this keeps the store warm without hammering Yahoo.
	go p.pollBars(ctx)

	<-ctx.Done()
	log.Println("Quote poller stopped")
}

func (p *QuotePoller) pollLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	// Run immediately on start
	if err := fn(ctx); err != nil {
		log.Printf("poller %s initial run error: %v", name, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("poller %s error: %v", name, err)
			}
		}
	}
}

func (p *QuotePoller) pollBars(ctx context.Context) {
	// Wait a bit before starting to stagger API calls with the quote poller
	select {
	case <-ctx.Done():
		return
	case <-time.After(10 * time.Second):
	}

	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	symbolIndex := 0

	// Run immediately
	p.refreshNextBars(ctx, &symbolIndex)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshNextBars(ctx, &symbolIndex)
		}
	}
}

func (p *QuotePoller) refreshNextBars(ctx context.Context, symbolIndex *int) {
	if len(p.symbols) == 0 {
		return
	}
	symbol := p.symbols[*symbolIndex%len(p.symbols)]
	*symbolIndex++

	if err := p.market.RefreshBars(ctx, symbol, p.historyDays); err != nil {
		log.Printf("bar refresh error for %s: %v", symbol, err)
	}
}
