package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"stocksage/internal/domain"
)

// GetForecast godoc
// @Summary      Get a price forecast for a stock
// @Description  Runs the model ensemble over the stored history and returns
// @Description  per-model forecasts, the weighted blend, and a summary
// @Tags         forecast
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL, MSFT)"
// @Success      200  {object}  domain.ForecastResult
// @Failure      400  {object}  map[string]string
// @Router       /api/forecast/{symbol} [get]
func (h *Handler) GetForecast(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-forecast")
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

	series, err := h.market.GetHistory(ctx, symbol, 365)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if series.Len() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no price history for " + symbol})
		return
	}

	result := h.forecaster.Run(ctx, series)
	c.JSON(http.StatusOK, result)
}
