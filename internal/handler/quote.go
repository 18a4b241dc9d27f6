package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"stocksage/internal/domain"
)

// GetQuote godoc
// @Summary      Get current quote for a stock
// @Description  Returns the latest price, day change, volume, and 52-week range
// @Tags         quotes
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL, MSFT)"
// @Success      200  {object}  domain.Quote
// @Failure      400  {object}  map[string]string
// @Router       /api/quotes/{symbol} [get]
func (h *Handler) GetQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if !domain.IsSupported(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported symbol: " + symbol,
			"supported_symbols": domain.SupportedSymbols,
		})
		return
	}

	quote, err := h.market.GetQuote(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetAllQuotes godoc
// @Summary      Get current quotes for all tracked stocks
// @Description  Returns latest cached quotes for every tracked ticker
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/quotes [get]
func (h *Handler) GetAllQuotes(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-all-quotes")
	defer span.End()

	quotes, err := h.market.GetQuotes(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// GetHistory godoc
// @Summary      Get historical daily closes
// @Description  Returns the daily closing-price series for a ticker
// @Tags         quotes
// @Produce      json
// @Param        symbol  path   string  true   "Ticker symbol (e.g., AAPL, MSFT)"
// @Param        days    query  int     false  "Trailing window in days (default 365, max 1825)"  default(365)
// @Success      200  {object}  domain.HistoricalSeries
// @Failure      400  {object}  map[string]string
// @Router       /api/history/{symbol} [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if !domain.IsSupported(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported symbol: " + symbol,
			"supported_symbols": domain.SupportedSymbols,
		})
		return
	}

	days := 365
	if d := c.Query("days"); d != "" {
		if n, err := strconv.Atoi(d); err == nil && n > 0 && n <= 1825 {
			days = n
		}
	}

	series, err := h.market.GetHistory(ctx, symbol, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, series)
}
