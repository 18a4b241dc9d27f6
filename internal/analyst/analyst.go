package analyst

import (
	"context"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
	"stocksage/internal/llm"
	"stocksage/internal/stats"
)

// Service runs the analyst agents. Each agent is a system prompt plus a
// prompt builder; all of them share one LLM backend. A failing backend
// degrades to fallback prose instead of failing the run.
type Service struct {
	tracer trace.Tracer
	llm    llm.Client
}

func NewService(tracer trace.Tracer, client llm.Client) *Service {
	return &Service{tracer: tracer, llm: client}
}

// Backend names the LLM behind the agents, for logs and report footers.
func (s *Service) Backend() string {
	return s.llm.Name()
}

// AnalyzeNews runs the news analyst over recent articles.
func (s *Service) AnalyzeNews(ctx context.Context, symbol string, items []domain.NewsItem) string {
	ctx, span := s.tracer.Start(ctx, "analyst.news")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("articles", len(items)))

	return s.generate(ctx, span, "news analyst",
		newsAnalystSystemPrompt, BuildNewsPrompt(symbol, items),
		"News analysis is unavailable: the language model did not respond.")
}

// AnalyzeStatistics runs the statistical expert over the numeric summary and
// forecast digest.
func (s *Service) AnalyzeStatistics(ctx context.Context, symbol string, summary stats.Summary, forecast domain.ForecastResult) string {
	ctx, span := s.tracer.Start(ctx, "analyst.statistics")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	prompt := BuildStatisticsPrompt(symbol, summary, FormatForecastDigest(forecast))
	return s.generate(ctx, span, "statistical expert",
		statisticalExpertSystemPrompt, prompt,
		"Statistical analysis is unavailable: the language model did not respond.")
}

// AnalyzeFundamentals runs the financial expert over the quote and summary.
func (s *Service) AnalyzeFundamentals(ctx context.Context, symbol string, quote domain.Quote, summary stats.Summary) string {
	ctx, span := s.tracer.Start(ctx, "analyst.fundamentals")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	return s.generate(ctx, span, "financial expert",
		financialExpertSystemPrompt, BuildFundamentalsPrompt(symbol, quote, summary),
		"Fundamental analysis is unavailable: the language model did not respond.")
}

// Synthesize combines the three expert analyses into a final recommendation.
// The recommendation is parsed out of the reply; an unparseable or missing
// reply yields HOLD.
func (s *Service) Synthesize(ctx context.Context, symbol, newsAnalysis, statisticalAnalysis, financialAnalysis string) (string, domain.Recommendation) {
	ctx, span := s.tracer.Start(ctx, "analyst.synthesize")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	prompt := BuildSynthesisPrompt(symbol, newsAnalysis, statisticalAnalysis, financialAnalysis)
	text := s.generate(ctx, span, "investment synthesizer",
		synthesizerSystemPrompt, prompt,
		"Synthesis is unavailable: the language model did not respond. Defaulting to HOLD.")

	rec := ParseRecommendation(text)
	span.SetAttributes(attribute.String("recommendation", string(rec)))
	return text, rec
}

func (s *Service) generate(ctx context.Context, span trace.Span, agent, systemPrompt, prompt, fallback string) string {
	reply, err := s.llm.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		span.RecordError(err)
		log.Printf("%s failed: %v", agent, err)
		return fallback
	}
	if strings.TrimSpace(reply) == "" {
		log.Printf("%s returned an empty reply", agent)
		return fallback
	}
	return reply
}

// ParseRecommendation extracts BUY/HOLD/SELL from the synthesizer's reply.
// It prefers an explicit "RECOMMENDATION:" line and otherwise falls back to
// the first verdict word found anywhere in the text.
func ParseRecommendation(text string) domain.Recommendation {
	upper := strings.ToUpper(text)
	for _, line := range strings.Split(upper, "\n") {
		if !strings.Contains(line, "RECOMMENDATION") {
			continue
		}
		if rec, ok := findVerdict(line); ok {
			return rec
		}
	}
	if rec, ok := findVerdict(upper); ok {
		return rec
	}
	return domain.RecommendationHold
}

func findVerdict(s string) (domain.Recommendation, bool) {
	best := -1
	var verdict domain.Recommendation
	for _, rec := range []domain.Recommendation{domain.RecommendationBuy, domain.RecommendationHold, domain.RecommendationSell} {
		if idx := strings.Index(s, string(rec)); idx >= 0 && (best == -1 || idx < best) {
			best = idx
			verdict = rec
		}
	}
	return verdict, best >= 0
}
