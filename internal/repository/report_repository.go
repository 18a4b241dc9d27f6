package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
)

const createReportsTable = `
CREATE TABLE IF NOT EXISTS analyst_reports (
    id                   BIGSERIAL PRIMARY KEY,
    symbol               TEXT        NOT NULL,
    generated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    current_price        NUMERIC     NOT NULL,
    news_analysis        TEXT        NOT NULL,
    statistical_analysis TEXT        NOT NULL,
    financial_analysis   TEXT        NOT NULL,
    synthesis            TEXT        NOT NULL,
    recommendation       TEXT        NOT NULL,
    direction_prob_up    NUMERIC     NOT NULL DEFAULT 0.5,
    forecast             JSONB
);

CREATE INDEX IF NOT EXISTS idx_analyst_reports_symbol_time
    ON analyst_reports (symbol, generated_at DESC);
`

// ErrReportNotFound is returned when no report exists for a symbol.
var ErrReportNotFound = errors.New("report not found")

type ReportRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewReportRepository(pool PgxPool, tracer trace.Tracer) *ReportRepository {
	return &ReportRepository{pool: pool, tracer: tracer}
}

func (r *ReportRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "report-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createReportsTable)
	return err
}

// Save persists a report and fills in its ID and GeneratedAt.
func (r *ReportRepository) Save(ctx context.Context, report *domain.AnalystReport) error {
	_, span := r.tracer.Start(ctx, "report-repo.save")
	defer span.End()

	var forecastJSON []byte
	if report.Forecast != nil {
		var err error
		forecastJSON, err = json.Marshal(report.Forecast)
		if err != nil {
			return fmt.Errorf("marshal forecast: %w", err)
		}
	}

	var generatedAt time.Time
	err := r.pool.QueryRow(ctx,
		`INSERT INTO analyst_reports
		     (symbol, current_price, news_analysis, statistical_analysis,
		      financial_analysis, synthesis, recommendation, direction_prob_up, forecast)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, generated_at`,
		report.Symbol, report.CurrentPrice, report.NewsAnalysis, report.StatisticalAnalysis,
		report.FinancialAnalysis, report.Synthesis, string(report.Recommendation),
		report.DirectionProbUp, forecastJSON,
	).Scan(&report.ID, &generatedAt)
	if err != nil {
		return err
	}
	report.GeneratedAt = generatedAt.UTC()
	return nil
}

// Latest returns the newest report for a symbol.
func (r *ReportRepository) Latest(ctx context.Context, symbol string) (*domain.AnalystReport, error) {
	_, span := r.tracer.Start(ctx, "report-repo.latest")
	defer span.End()

	reports, err := r.query(ctx,
		`SELECT id, symbol, generated_at, current_price, news_analysis, statistical_analysis,
		        financial_analysis, synthesis, recommendation, direction_prob_up, forecast
		 FROM analyst_reports
		 WHERE symbol = $1
		 ORDER BY generated_at DESC
		 LIMIT 1`,
		symbol,
	)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrReportNotFound
	}
	return reports[0], nil
}

// List returns reports matching the filter, newest first.
func (r *ReportRepository) List(ctx context.Context, filter domain.ReportFilter) ([]*domain.AnalystReport, error) {
	_, span := r.tracer.Start(ctx, "report-repo.list")
	defer span.End()

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if filter.Symbol != "" {
		return r.query(ctx,
			`SELECT id, symbol, generated_at, current_price, news_analysis, statistical_analysis,
			        financial_analysis, synthesis, recommendation, direction_prob_up, forecast
			 FROM analyst_reports
			 WHERE symbol = $1
			 ORDER BY generated_at DESC
			 LIMIT $2`,
			filter.Symbol, limit,
		)
	}
	return r.query(ctx,
		`SELECT id, symbol, generated_at, current_price, news_analysis, statistical_analysis,
		        financial_analysis, synthesis, recommendation, direction_prob_up, forecast
		 FROM analyst_reports
		 ORDER BY generated_at DESC
		 LIMIT $1`,
		limit,
	)
}

func (r *ReportRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.AnalystReport, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.AnalystReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*domain.AnalystReport, error) {
	var report domain.AnalystReport
	var rec string
	var forecastJSON []byte
	if err := row.Scan(
		&report.ID, &report.Symbol, &report.GeneratedAt, &report.CurrentPrice,
		&report.NewsAnalysis, &report.StatisticalAnalysis, &report.FinancialAnalysis,
		&report.Synthesis, &rec, &report.DirectionProbUp, &forecastJSON,
	); err != nil {
		return nil, err
	}
	report.GeneratedAt = report.GeneratedAt.UTC()
	report.Recommendation = domain.Recommendation(rec)
	if len(forecastJSON) > 0 {
		var f domain.ForecastResult
		if err := json.Unmarshal(forecastJSON, &f); err != nil {
			return nil, fmt.Errorf("unmarshal forecast: %w", err)
		}
		report.Forecast = &f
	}
	return &report, nil
}
