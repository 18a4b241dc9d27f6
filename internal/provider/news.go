package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
)

const googleNewsBaseURL = "https://news.google.com"

// NewsProvider fetches recent articles about a stock from the Google News
// RSS search feed.
type NewsProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewNewsProvider(tracer trace.Tracer) *NewsProvider {
	return &NewsProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: googleNewsBaseURL,
		tracer:  tracer,
	}
}

// FetchNews returns up to maxItems articles about the symbol published within
// lookback. Items come back newest-first, as the feed orders them.
func (p *NewsProvider) FetchNews(ctx context.Context, symbol string, maxItems int, lookback time.Duration) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "news.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	if maxItems <= 0 {
		maxItems = 10
	}
	query := fmt.Sprintf("%s %s stock", symbol, domain.CompanyName(symbol))
	feedURL := fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		p.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("news fetch error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				PubDate     string `xml:"pubDate"`
				Source      string `xml:"source"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decode rss payload: %w", err)
	}

	cutoff := time.Time{}
	if lookback > 0 {
		cutoff = time.Now().UTC().Add(-lookback)
	}

	items := make([]domain.NewsItem, 0, maxItems)
	for _, row := range rss.Channel.Items {
		if len(items) >= maxItems {
			break
		}
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt := parseRSSDate(row.PubDate)
		if !cutoff.IsZero() && !publishedAt.IsZero() && publishedAt.Before(cutoff) {
			continue
		}
		items = append(items, domain.NewsItem{
			Symbol:      symbol,
			Title:       title,
			URL:         sanitizeText(row.Link, 500),
			Source:      sanitizeText(row.Source, 120),
			Summary:     sanitizeText(htmlStrip(row.Description), 420),
			PublishedAt: publishedAt,
		})
	}
	span.SetAttributes(attribute.Int("articles", len(items)))
	return items, nil
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func sanitizeText(in string, maxLen int) string {
	out := strings.TrimSpace(in)
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
