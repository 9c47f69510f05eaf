package http

import (
	"net/http"

	"golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TickerHandler serves the ticker tape.
type TickerHandler struct {
	tickerService service.TickerService
	logger        *logger.Logger
}

// NewTickerHandler creates a new TickerHandler.
func NewTickerHandler(tickerService service.TickerService, logger *logger.Logger) *TickerHandler {
	return &TickerHandler{tickerService: tickerService, logger: logger}
}

// RegisterRoutes registers the ticker routes to the Echo group.
func (h *TickerHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/tickers", h.Tape)
}

// Tape godoc
// @Summary Ticker tape
// @Description Price and daily change of the default tickers
// @Tags tickers
// @Produce  json
// @Success 200 {array} dto.TickerQuote
// @Failure 500 {object} dto.ErrorResponse
// @Router /tickers [get]
func (h *TickerHandler) Tape(c echo.Context) error {
	ctx := c.Request().Context()
	tape, err := h.tickerService.Tape(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to build ticker tape", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to load tickers"})
	}
	return c.JSON(http.StatusOK, tape)
}
