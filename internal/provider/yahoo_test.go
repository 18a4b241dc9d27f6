package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const chartPayload = `{
  "chart": {
    "result": [{
      "meta": {
        "symbol": "AAPL",
        "regularMarketPrice": 232.5,
        "chartPreviousClose": 230.0,
        "regularMarketVolume": 51000000,
        "fiftyTwoWeekHigh": 260.1,
        "fiftyTwoWeekLow": 164.08
      },
      "timestamp": [1755561600, 1755648000, 1755734400],
      "indicators": {
        "quote": [{
          "open":   [230.1, null, 231.8],
          "high":   [233.0, null, 234.2],
          "low":    [229.5, null, 230.9],
          "close":  [231.0, null, 232.5],
          "volume": [48000000, null, 51000000]
        }]
      }
    }],
    "error": null
  }
}`

func newTestYahoo(url string) *YahooProvider {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = url
	p.limiter = NewRateLimiter(100, time.Millisecond)
	return p
}

func TestFetchDailyBarsSkipsNulls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "Mozilla/5.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		fmt.Fprint(w, chartPayload)
	}))
	defer srv.Close()

	bars, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "AAPL", 365)
	if err != nil {
		t.Fatalf("FetchDailyBars: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 (null bar skipped)", len(bars))
	}
	if bars[0].Close != 231.0 || bars[1].Close != 232.5 {
		t.Errorf("closes = %f, %f", bars[0].Close, bars[1].Close)
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Error("bars should be oldest first")
	}
	if bars[0].Symbol != "AAPL" {
		t.Errorf("symbol = %s", bars[0].Symbol)
	}
}

func TestFetchQuoteFromMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartPayload)
	}))
	defer srv.Close()

	q, err := newTestYahoo(srv.URL).FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if q.Price != 232.5 || q.PreviousClose != 230.0 {
		t.Errorf("quote = %+v", q)
	}
	if q.DayChange != 2.5 {
		t.Errorf("DayChange = %f", q.DayChange)
	}
	if q.CompanyName != "Apple Inc." {
		t.Errorf("CompanyName = %q", q.CompanyName)
	}
	if q.FiftyTwoWkHigh != 260.1 {
		t.Errorf("FiftyTwoWkHigh = %f", q.FiftyTwoWkHigh)
	}
}

func TestFetchDailyBarsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	if _, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "ZZZZ", 30); err == nil {
		t.Fatal("expected error from chart error field")
	}
}

func TestFetchDailyBarsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "AAPL", 30); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestRangeForDays(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{5, "5d"},
		{30, "1mo"},
		{90, "3mo"},
		{180, "6mo"},
		{365, "1y"},
		{500, "2y"},
		{0, "5y"},
	}
	for _, tc := range cases {
		if got := rangeForDays(tc.days); got != tc.want {
			t.Errorf("rangeForDays(%d) = %s, want %s", tc.days, got, tc.want)
		}
	}
}
