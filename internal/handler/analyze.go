package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"stocksage/internal/domain"
)

// Analyze godoc
// @Summary      Run a full analysis for a stock
// @Description  Refreshes market data, runs the forecasting ensemble and the
// @Description  analyst agents, persists the report, and returns it
// @Tags         analysis
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL, MSFT)"
// @Success      200  {object}  domain.AnalystReport
// @Failure      400  {object}  map[string]string
// @Router       /api/analyze/{symbol} [post]
func (h *Handler) Analyze(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
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

	report, err := h.analysis.Analyze(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetLatestReport godoc
// @Summary      Get the most recent analyst report for a stock
// @Tags         analysis
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL, MSFT)"
// @Success      200  {object}  domain.AnalystReport
// @Failure      404  {object}  map[string]string
// @Router       /api/reports/{symbol} [get]
func (h *Handler) GetLatestReport(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-latest-report")
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

	report, err := h.analysis.LatestReport(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no report for " + symbol})
		return
	}

	c.JSON(http.StatusOK, report)
}
