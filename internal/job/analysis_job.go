package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// AnalysisJob runs the full analyst pipeline for every tracked symbol once a
// day at a fixed UTC hour.
type AnalysisJob struct {
	tracer  trace.Tracer
	runner  AnalysisRunner
	symbols []string
	hourUTC int

	now func() time.Time
}

type AnalysisRunner interface {
	AnalyzeAll(ctx context.Context, symbols []string)
}

func NewAnalysisJob(tracer trace.Tracer, runner AnalysisRunner, symbols []string, hourUTC int) *AnalysisJob {
	if hourUTC < 0 || hourUTC > 23 {
		hourUTC = 6
	}
	return &AnalysisJob{
		tracer:  tracer,
		runner:  runner,
		symbols: symbols,
		hourUTC: hourUTC,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start blocks until ctx is cancelled, running the batch at each scheduled
// time.
func (j *AnalysisJob) Start(ctx context.Context) {
	log.Printf("Analysis job scheduled daily at %02d:00 UTC", j.hourUTC)

	for {
		wait := j.untilNextRun()
		select {
		case <-ctx.Done():
			log.Println("Analysis job stopped")
			return
		case <-time.After(wait):
		}

		j.runOnce(ctx)
	}
}

func (j *AnalysisJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "analysis-job.run")
	defer span.End()

	start := j.now()
	log.Printf("Analysis job starting for %d symbols", len(j.symbols))
	j.runner.AnalyzeAll(ctx, j.symbols)
	log.Printf("Analysis job finished in %s", j.now().Sub(start).Round(time.Second))
}

// untilNextRun returns the duration until the next scheduled hour, always
// strictly positive so a completed run never re-triggers the same slot.
func (j *AnalysisJob) untilNextRun() time.Duration {
	now := j.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), j.hourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
