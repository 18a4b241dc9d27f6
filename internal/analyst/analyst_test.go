package analyst

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
	"stocksage/internal/stats"
)

type stubLLM struct {
	reply      string
	err        error
	lastSystem string
	lastPrompt string
}

func (s *stubLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastPrompt = userPrompt
	return s.reply, s.err
}

func (s *stubLLM) Available(ctx context.Context) bool { return true }
func (s *stubLLM) Name() string                       { return "stub/test" }

func newTestService(stub *stubLLM) *Service {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	return NewService(tracer, stub)
}

func TestAnalyzeNewsIncludesArticles(t *testing.T) {
	stub := &stubLLM{reply: "SENTIMENT: Bullish"}
	svc := newTestService(stub)

	items := []domain.NewsItem{{
		Title:       "Apple ships new thing",
		Source:      "Newswire",
		PublishedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}}
	got := svc.AnalyzeNews(context.Background(), "AAPL", items)
	if got != "SENTIMENT: Bullish" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(stub.lastPrompt, "Apple ships new thing") {
		t.Error("prompt should contain the article title")
	}
	if !strings.Contains(stub.lastSystem, "News Analyst") {
		t.Error("system prompt should identify the news analyst")
	}
}

func TestAnalyzeNewsFallbackOnError(t *testing.T) {
	svc := newTestService(&stubLLM{err: errors.New("connection refused")})
	got := svc.AnalyzeNews(context.Background(), "AAPL", nil)
	if !strings.Contains(got, "unavailable") {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestAnalyzeStatisticsCarriesMetrics(t *testing.T) {
	stub := &stubLLM{reply: "TREND ANALYSIS: upward"}
	svc := newTestService(stub)

	summary := stats.Summary{Symbol: "MSFT", CurrentPrice: 401.5, MA7: 399.1, MA30: 380}
	svc.AnalyzeStatistics(context.Background(), "MSFT", summary, domain.ForecastResult{
		HorizonDays: 10,
		Summary: domain.ForecastSummary{
			ModelsUsed: []string{domain.ModelARIMA},
			Confidence: "Low",
			NextDay:    domain.PointSummary{Prediction: 402, ReturnLabel: "+0.12%", RangeLabel: "$398.00 - $406.00"},
			DayN:       domain.PointSummary{Prediction: 405, ReturnLabel: "+0.87%", RangeLabel: "$390.00 - $420.00"},
		},
	})
	if !strings.Contains(stub.lastPrompt, "$401.50") {
		t.Error("prompt should contain the current price")
	}
	if !strings.Contains(stub.lastPrompt, "ARIMA") {
		t.Error("prompt should contain the forecast digest")
	}
}

func TestSynthesizeParsesRecommendation(t *testing.T) {
	stub := &stubLLM{reply: "RECOMMENDATION: BUY\nCONFIDENCE LEVEL: Medium\nSUMMARY: looks fine"}
	svc := newTestService(stub)

	text, rec := svc.Synthesize(context.Background(), "GOOGL", "news", "stats", "financials")
	if rec != domain.RecommendationBuy {
		t.Fatalf("rec = %s, want BUY", rec)
	}
	if !strings.Contains(text, "CONFIDENCE LEVEL") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(stub.lastPrompt, "=== NEWS ANALYST ===") {
		t.Error("synthesis prompt should embed the expert sections")
	}
}

func TestSynthesizeDefaultsToHoldOnFailure(t *testing.T) {
	svc := newTestService(&stubLLM{err: errors.New("boom")})
	_, rec := svc.Synthesize(context.Background(), "GOOGL", "a", "b", "c")
	if rec != domain.RecommendationHold {
		t.Fatalf("rec = %s, want HOLD", rec)
	}
}

func TestParseRecommendation(t *testing.T) {
	cases := []struct {
		text string
		want domain.Recommendation
	}{
		{"RECOMMENDATION: SELL\nbecause reasons", domain.RecommendationSell},
		{"recommendation: buy", domain.RecommendationBuy},
		{"RECOMMENDATION: [HOLD]", domain.RecommendationHold},
		// No labeled line: first verdict word wins.
		{"I would buy this, not sell it", domain.RecommendationBuy},
		{"nothing to see here", domain.RecommendationHold},
		// HOLD appears before SELL on the labeled line.
		{"RECOMMENDATION: HOLD (leaning SELL)", domain.RecommendationHold},
	}
	for _, tc := range cases {
		if got := ParseRecommendation(tc.text); got != tc.want {
			t.Errorf("ParseRecommendation(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}
