package http

import (
	"net/http"

	"golang-stock-scanner/internal/scanner/service"
	"golang-stock-scanner/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SearchHandler handles HTTP requests for ticker search.
type SearchHandler struct {
	searchService service.SearchService
	logger        *logger.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService service.SearchService, logger *logger.Logger) *SearchHandler {
	return &SearchHandler{searchService: searchService, logger: logger}
}

// RegisterRoutes registers the search routes to the Echo group.
func (h *SearchHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
}

// Search godoc
// @Summary Search tickers
// @Description Case-insensitive substring search over ticker and company name
// @Tags search
// @Produce  json
// @Param   q  query  string false "Search term"
// @Success 200 {array} dto.Suggestion
// @Failure 500 {object} dto.ErrorResponse
// @Router /search [get]
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	suggestions, err := h.searchService.Search(ctx, c.QueryParam("q"))
	if err != nil {
		h.logger.ErrorContext(ctx, "Search failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Search failed"})
	}
	return c.JSON(http.StatusOK, suggestions)
}
