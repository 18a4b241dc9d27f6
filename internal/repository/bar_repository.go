package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
)

const createBarsTable = `
CREATE TABLE IF NOT EXISTS bars (
    symbol  TEXT        NOT NULL,
    date    TIMESTAMPTZ NOT NULL,
    open    NUMERIC     NOT NULL,
    high    NUMERIC     NOT NULL,
    low     NUMERIC     NOT NULL,
    close   NUMERIC     NOT NULL,
    volume  NUMERIC     NOT NULL,
    PRIMARY KEY (symbol, date)
);

CREATE INDEX IF NOT EXISTS idx_bars_symbol_date
    ON bars (symbol, date DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type BarRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewBarRepository(pool PgxPool, tracer trace.Tracer) *BarRepository {
	return &BarRepository{pool: pool, tracer: tracer}
}

func (r *BarRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "bar-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createBarsTable)
	return err
}

func (r *BarRepository) UpsertBars(ctx context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "bar-repo.upsert-bars")
	defer span.End()

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(
			`INSERT INTO bars (symbol, date, open, high, low, close, volume)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (symbol, date) DO UPDATE SET
			     open = EXCLUDED.open,
			     high = EXCLUDED.high,
			     low = EXCLUDED.low,
			     close = EXCLUDED.close,
			     volume = EXCLUDED.volume`,
			b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetBars returns up to limit daily bars, oldest first.
func (r *BarRepository) GetBars(ctx context.Context, symbol string, limit int) ([]domain.Bar, error) {
	_, span := r.tracer.Start(ctx, "bar-repo.get-bars")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT symbol, date, open, high, low, close, volume
		 FROM (
		     SELECT symbol, date, open, high, low, close, volume
		     FROM bars
		     WHERE symbol = $1
		     ORDER BY date DESC
		     LIMIT $2
		 ) recent
		 ORDER BY date ASC`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Date = b.Date.UTC()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// GetSeries returns the closing-price series for the trailing days window,
// oldest first, ready for the forecasting core.
func (r *BarRepository) GetSeries(ctx context.Context, symbol string, days int) (domain.HistoricalSeries, error) {
	bars, err := r.GetBars(ctx, symbol, days)
	if err != nil {
		return domain.HistoricalSeries{}, err
	}
	series := domain.HistoricalSeries{Symbol: symbol}
	for _, b := range bars {
		series.Points = append(series.Points, domain.PricePoint{Date: b.Date, Close: b.Close})
	}
	return series, nil
}

// LatestDate returns the newest stored bar date for the symbol, or the zero
// time when no bars exist.
func (r *BarRepository) LatestDate(ctx context.Context, symbol string) (time.Time, error) {
	_, span := r.tracer.Start(ctx, "bar-repo.latest-date")
	defer span.End()

	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(date) FROM bars WHERE symbol = $1`, symbol,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return latest.UTC(), nil
}
