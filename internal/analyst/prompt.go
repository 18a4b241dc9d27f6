package analyst

import (
	"fmt"
	"strings"
	"time"

	"stocksage/internal/domain"
	"stocksage/internal/stats"
)

const newsAnalystSystemPrompt = `You are a News Analyst specializing in financial markets and stock analysis.

Your role:
- Analyze recent news articles about a company/stock
- Identify positive, negative, and neutral news
- Assess the potential impact on stock price
- Highlight any major events, announcements, or concerns
- Provide a clear sentiment summary (Bullish/Bearish/Neutral)

Be concise, factual, and focus on actionable insights.
Avoid speculation - stick to what the news actually says.`

const statisticalExpertSystemPrompt = `You are a Statistical Expert specializing in time series analysis and stock price forecasting.

Your role:
- Analyze historical stock price data
- Identify trends, patterns, and volatility
- Interpret statistical metrics
- Provide data-driven predictions
- Assess the reliability of forecasts

Be precise, use statistical terminology correctly, and always acknowledge uncertainty.
Focus on what the data shows, not speculation.`

const financialExpertSystemPrompt = `You are a Financial Expert specializing in fundamental analysis and company valuation.

Your role:
- Analyze company fundamentals (P/E ratio, market cap, sector performance)
- Evaluate the company's competitive position
- Assess financial health and growth potential
- Consider industry trends and market conditions
- Provide a long-term investment perspective

Be thorough, use financial metrics correctly, and consider both quantitative and qualitative factors.
Balance optimism with realistic assessment.`

const synthesizerSystemPrompt = `You are an Investment Strategist who synthesizes multiple expert opinions to provide clear, actionable investment recommendations.

Your role:
- Review analyses from News Analyst, Statistical Expert, and Financial Expert
- Identify agreements and conflicts between analyses
- Weigh different factors (short-term vs long-term, technical vs fundamental)
- Provide a clear BUY/HOLD/SELL recommendation
- Assign a confidence level to your recommendation
- Explain the key reasoning behind your decision

Be decisive but honest about uncertainty. Consider both risk and opportunity.
Remember: This is for educational purposes - always include appropriate disclaimers.`

// FormatNews renders articles the way the news analyst expects them.
func FormatNews(items []domain.NewsItem) string {
	if len(items) == 0 {
		return "No recent news articles found."
	}
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item.Title)
		if !item.PublishedAt.IsZero() {
			fmt.Fprintf(&sb, "   Published: %s\n", item.PublishedAt.UTC().Format(time.RFC822))
		}
		if item.Source != "" {
			fmt.Fprintf(&sb, "   Source: %s\n", item.Source)
		}
		if item.Summary != "" {
			fmt.Fprintf(&sb, "   %s\n", item.Summary)
		}
	}
	return sb.String()
}

func BuildNewsPrompt(symbol string, items []domain.NewsItem) string {
	return fmt.Sprintf(`Analyze the following recent news about %s:

%s
Provide your analysis in the following format:

SENTIMENT: [Bullish/Bearish/Neutral]

KEY POSITIVE NEWS:
- [List positive developments]

KEY NEGATIVE NEWS:
- [List concerns or challenges]

MAJOR EVENTS:
- [List any significant announcements or events]

IMPACT ASSESSMENT:
[Brief assessment of how this news might impact the stock]

SUMMARY:
[2-3 sentence summary of the overall news landscape]`, symbol, FormatNews(items))
}

// FormatStatistics renders the numeric summary shown to the statistical expert.
func FormatStatistics(s stats.Summary) string {
	var sb strings.Builder
	sb.WriteString("STATISTICAL METRICS:\n")
	fmt.Fprintf(&sb, "- Current Price: $%.2f\n", s.CurrentPrice)
	fmt.Fprintf(&sb, "- 7-Day Moving Average: $%.2f\n", s.MA7)
	fmt.Fprintf(&sb, "- 30-Day Moving Average: $%.2f\n", s.MA30)
	fmt.Fprintf(&sb, "- Volatility (Std Dev of Returns): %.2f%%\n", s.DailyVolPct)
	fmt.Fprintf(&sb, "- Annualized Volatility: %.2f%%\n", s.AnnualizedVolPct)
	fmt.Fprintf(&sb, "- Average Daily Return: %.2f%%\n", s.AvgDailyReturnPct)
	fmt.Fprintf(&sb, "- Max Daily Return: %.2f%%\n", s.MaxDailyReturnPct)
	fmt.Fprintf(&sb, "- Min Daily Return: %.2f%%\n", s.MinDailyReturnPct)
	fmt.Fprintf(&sb, "- Trend: %s (slope: %.4f)\n", trendLabel(s.TrendSlope), s.TrendSlope)
	fmt.Fprintf(&sb, "- Price Range: $%.2f - $%.2f\n", s.PeriodLow, s.PeriodHigh)
	fmt.Fprintf(&sb, "- RSI (14): %.1f\n", s.RSI14)
	if len(s.AnomalousDates) > 0 {
		dates := make([]string, len(s.AnomalousDates))
		for i, d := range s.AnomalousDates {
			dates[i] = d.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "- Anomalous Return Days: %s\n", strings.Join(dates, ", "))
	}
	return sb.String()
}

func trendLabel(slope float64) string {
	switch {
	case slope > 0:
		return "Upward"
	case slope < 0:
		return "Downward"
	default:
		return "Flat"
	}
}

func BuildStatisticsPrompt(symbol string, summary stats.Summary, forecastDigest string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the following statistical data for %s:\n\n", symbol)
	sb.WriteString(FormatStatistics(summary))
	if forecastDigest != "" {
		sb.WriteString("\nModel Forecast Digest:\n")
		sb.WriteString(forecastDigest)
		sb.WriteString("\n")
	}
	sb.WriteString(`
Provide your analysis in the following format:

TREND ANALYSIS:
[Describe the overall trend - is it bullish, bearish, or sideways?]

VOLATILITY ASSESSMENT:
[Comment on the price volatility - is it high, low, stable?]

MOVING AVERAGES:
[Interpret the relationship between current price and moving averages]

PRICE PREDICTION (NEXT 7 DAYS):
[Based on the statistical patterns, provide a cautious prediction]
[Include confidence level: High/Medium/Low]

STATISTICAL INSIGHTS:
[Key takeaways from the data]

RISK ASSESSMENT:
[Comment on the risk based on volatility and trends]`)
	return sb.String()
}

// FormatForecastDigest condenses a forecast run for the statistical expert.
func FormatForecastDigest(res domain.ForecastResult) string {
	var sb strings.Builder
	if res.Summary.Failed {
		sb.WriteString("All forecasting models failed; no quantitative forecast is available.\n")
		return sb.String()
	}
	fmt.Fprintf(&sb, "- Models Used: %s (confidence: %s)\n",
		strings.Join(res.Summary.ModelsUsed, ", "), res.Summary.Confidence)
	fmt.Fprintf(&sb, "- Next Day: $%.2f (%s, range %s)\n",
		res.Summary.NextDay.Prediction, res.Summary.NextDay.ReturnLabel, res.Summary.NextDay.RangeLabel)
	fmt.Fprintf(&sb, "- Day %d: $%.2f (%s, range %s)\n",
		res.HorizonDays, res.Summary.DayN.Prediction, res.Summary.DayN.ReturnLabel, res.Summary.DayN.RangeLabel)
	return sb.String()
}

func BuildFundamentalsPrompt(symbol string, quote domain.Quote, summary stats.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Provide a fundamental analysis for %s based on the following data:\n\n", symbol)
	fmt.Fprintf(&sb, "Company: %s\n", domain.CompanyName(symbol))
	fmt.Fprintf(&sb, "Current Price: $%.2f (day change %+.2f%%)\n", quote.Price, quote.DayChangePct)
	if quote.FiftyTwoWkHigh > 0 {
		fmt.Fprintf(&sb, "52-Week Range: $%.2f - $%.2f\n", quote.FiftyTwoWkLow, quote.FiftyTwoWkHigh)
	}
	if quote.Volume > 0 {
		fmt.Fprintf(&sb, "Volume: %.0f\n", quote.Volume)
	}
	fmt.Fprintf(&sb, "Period Price Range: $%.2f - $%.2f over %d sessions\n",
		summary.PeriodLow, summary.PeriodHigh, summary.Observations)
	sb.WriteString(`
Provide your analysis in the following format:

COMPANY OVERVIEW:
[Brief description of what the company does and its market position]

VALUATION ANALYSIS:
[Is the stock overvalued, undervalued, or fairly valued?]

SECTOR & INDUSTRY POSITION:
[Comment on the sector health and company's competitive position]

FINANCIAL HEALTH:
[Assess the company's financial strength based on available metrics]

GROWTH POTENTIAL:
[Evaluate short-term and long-term growth prospects]

COMPETITIVE ADVANTAGES:
[Identify key strengths or moats]

RISKS & CONCERNS:
[Highlight potential risks or challenges]

INVESTMENT THESIS:
[Summarize the case for/against investing in this stock]`)
	return sb.String()
}

func BuildSynthesisPrompt(symbol, newsAnalysis, statisticalAnalysis, financialAnalysis string) string {
	return fmt.Sprintf(`You are evaluating whether to BUY, HOLD, or SELL %s.

Here are the expert analyses:

=== NEWS ANALYST ===
%s

=== STATISTICAL EXPERT ===
%s

=== FINANCIAL EXPERT ===
%s

======================

Based on these three expert opinions, provide your synthesis in the following format:

RECOMMENDATION: [BUY / HOLD / SELL]
CONFIDENCE LEVEL: [High / Medium / Low]
TIME HORIZON: [Short-term (1-3 months) / Medium-term (3-12 months) / Long-term (1+ years)]

KEY SUPPORTING FACTORS:
- [List 3-5 main reasons supporting your recommendation]

KEY RISK FACTORS:
- [List 3-5 main risks or concerns]

CONSENSUS ANALYSIS:
[Where do the experts agree? Where do they disagree?]

INVESTMENT STRATEGY:
[Specific advice - e.g., entry points, position sizing, stop-loss levels]

SUMMARY:
[2-3 sentence executive summary of your recommendation]

DISCLAIMER:
This analysis is for educational purposes only and should not be considered financial advice. Always conduct your own research and consult with a qualified financial advisor before making investment decisions.`,
		symbol, newsAnalysis, statisticalAnalysis, financialAnalysis)
}
