package http

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"golang-stock-scanner/internal/indicator"
	"golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/pkg/logger"

	"github.com/labstack/echo/v4"
)

var exchangePattern = regexp.MustCompile(`^[A-Za-z]{1,10}$`)

// ScanHandler handles HTTP requests for ticker scans.
type ScanHandler struct {
	scanService service.ScanService
	logger      *logger.Logger
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scanService service.ScanService, logger *logger.Logger) *ScanHandler {
	return &ScanHandler{scanService: scanService, logger: logger}
}

// RegisterRoutes registers the scan routes to the Echo group.
func (h *ScanHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/scan/:ticker", h.Scan)
	g.GET("/profiles", h.Profiles)
}

// Scan godoc
// @Summary Scan a ticker
// @Description Extract the indicators of a ticker from its quote page and score them
// @Tags scan
// @Produce  json
// @Param   ticker    path   string true  "Ticker symbol"
// @Param   exchange  query  string false "Exchange code" default(BVMF)
// @Param   refresh   query  bool   false "Ignore the cached result"
// @Success 200 {object} dto.ScanResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /scan/{ticker} [get]
func (h *ScanHandler) Scan(c echo.Context) error {
	exchange := c.QueryParam("exchange")
	if exchange != "" && !exchangePattern.MatchString(exchange) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid exchange"})
	}

	refresh := false
	if raw := c.QueryParam("refresh"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid refresh flag"})
		}
		refresh = parsed
	}

	ctx := c.Request().Context()
	result, err := h.scanService.Scan(ctx, c.Param("ticker"), exchange, refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTicker) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid ticker"})
		}
		var extErr *indicator.ExtractionError
		if errors.As(err, &extErr) {
			h.logger.WarnContext(ctx, "Scan failed", logger.ErrorField(err), logger.StringField("ticker", extErr.Ticker))
			if extErr.StatusCode == http.StatusNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Ticker not found on the quote source"})
			}
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		h.logger.ErrorContext(ctx, "Scan failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// Profiles godoc
// @Summary List scoring profiles
// @Description List the available scoring profiles and the active one
// @Tags scan
// @Produce  json
// @Success 200 {object} dto.ProfilesResponse
// @Router /profiles [get]
func (h *ScanHandler) Profiles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scanService.Profiles())
}
