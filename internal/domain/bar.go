package domain

import "time"

// Bar represents a single daily OHLCV bar for a stock.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote represents the latest market snapshot for a stock.
type Quote struct {
	Symbol          string  `json:"symbol"`
	CompanyName     string  `json:"company_name"`
	Price           float64 `json:"price"`
	PreviousClose   float64 `json:"previous_close"`
	DayChange       float64 `json:"day_change"`
	DayChangePct    float64 `json:"day_change_pct"`
	FiftyTwoWkHigh  float64 `json:"fifty_two_wk_high"`
	FiftyTwoWkLow   float64 `json:"fifty_two_wk_low"`
	Volume          float64 `json:"volume"`
	LastUpdatedUnix int64   `json:"last_updated_unix"`
}

// StockNames maps tracked ticker symbols to company names.
var StockNames = map[string]string{
	"GOOGL": "Alphabet Inc.",
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"AMZN":  "Amazon.com Inc.",
	"NVDA":  "NVIDIA Corporation",
	"META":  "Meta Platforms Inc.",
	"TSLA":  "Tesla Inc.",
}

// SupportedSymbols lists the tickers analyzed by default.
var SupportedSymbols = []string{"GOOGL", "MSFT", "AAPL"}

// IsSupported reports whether symbol is a known ticker.
func IsSupported(symbol string) bool {
	_, ok := StockNames[symbol]
	return ok
}

// CompanyName returns the display name for a ticker, falling back to the
// ticker itself for symbols outside StockNames.
func CompanyName(symbol string) string {
	if name, ok := StockNames[symbol]; ok {
		return name
	}
	return symbol
}
