package http

import (
	"errors"
	"net/http"
	"strconv"

	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/internal/server/repository"
	"tw-stock-dashboard/internal/server/service"
	"tw-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler handles HTTP requests for per-stock data.
type StockHandler struct {
	catalogService  service.CatalogService
	marketService   service.MarketService
	analyzerService service.AnalyzerService
	logger          *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(catalogService service.CatalogService, marketService service.MarketService, analyzerService service.AnalyzerService, logger *logger.Logger) *StockHandler {
	return &StockHandler{
		catalogService:  catalogService,
		marketService:   marketService,
		analyzerService: analyzerService,
		logger:          logger,
	}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.SearchStock)
	g.GET("/:code", h.GetStock)
	g.GET("/:code/institutional", h.GetInstitutional)
	g.POST("/:code/analysis", h.Analyze)
	g.GET("/:code/analysis/history", h.GetAnalysisHistory)
}

// SearchStock resolves a free-text query to a canonical instrument code.
func (h *StockHandler) SearchStock(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing query parameter 'q'"})
	}

	instrument, err := h.catalogService.Resolve(c.Request().Context(), query)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(http.StatusOK, dto.SearchResponse{Code: instrument.Code, Name: instrument.Name})
}

// GetStock returns the aggregated snapshot for one stock.
func (h *StockHandler) GetStock(c echo.Context) error {
	snapshot, err := h.marketService.GetSnapshot(c.Request().Context(), c.Param("code"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// GetInstitutional returns recent institutional flow records for one stock.
func (h *StockHandler) GetInstitutional(c echo.Context) error {
	flows, err := h.marketService.GetInstitutional(c.Request().Context(), c.Param("code"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, flows)
}

// Analyze runs (or serves the cached) AI analysis for one stock.
func (h *StockHandler) Analyze(c echo.Context) error {
	result, err := h.analyzerService.Analyze(c.Request().Context(), c.Param("code"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetAnalysisHistory returns past persisted analyses for one stock.
func (h *StockHandler) GetAnalysisHistory(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	analyses, err := h.analyzerService.History(c.Request().Context(), c.Param("code"), limit)
	if err != nil {
		h.logger.Error("Failed to get analysis history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get analysis history"})
	}
	return c.JSON(http.StatusOK, analyses)
}

func (h *StockHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInstrumentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Instrument not found"})
	case errors.Is(err, repository.ErrNoData):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No data available"})
	default:
		h.logger.Error("Upstream request failed", logger.ErrorField(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Upstream request failed"})
	}
}
