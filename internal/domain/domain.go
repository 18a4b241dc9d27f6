package domain

import "time"

// NewsItem is a single news article about a stock.
type NewsItem struct {
	Symbol      string    `json:"symbol"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}

// Recommendation is the synthesizer's final verdict for a stock.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "BUY"
	RecommendationHold Recommendation = "HOLD"
	RecommendationSell Recommendation = "SELL"
)

func (r Recommendation) IsValid() bool {
	switch r {
	case RecommendationBuy, RecommendationHold, RecommendationSell:
		return true
	}
	return false
}

// AnalystReport is one complete analysis run for a symbol: the prose produced
// by each agent, the forecast summary, and the final recommendation.
type AnalystReport struct {
	ID                  int64           `json:"id"`
	Symbol              string          `json:"symbol"`
	GeneratedAt         time.Time       `json:"generated_at"`
	CurrentPrice        float64         `json:"current_price"`
	NewsAnalysis        string          `json:"news_analysis"`
	StatisticalAnalysis string          `json:"statistical_analysis"`
	FinancialAnalysis   string          `json:"financial_analysis"`
	Synthesis           string          `json:"synthesis"`
	Recommendation      Recommendation  `json:"recommendation"`
	DirectionProbUp     float64         `json:"direction_prob_up"`
	Forecast            *ForecastResult `json:"forecast,omitempty"`
}

// ReportFilter narrows report lookups.
type ReportFilter struct {
	Symbol string
	Limit  int
}

// SSHUser is an authorized user of the SSH dashboard.
type SSHUser struct {
	ID          int64
	Username    string
	Fingerprint string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}
