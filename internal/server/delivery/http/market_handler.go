package http

import (
	"errors"
	"net/http"

	"tw-stock-dashboard/internal/server/dto"
	"tw-stock-dashboard/internal/server/repository"
	"tw-stock-dashboard/internal/server/service"
	"tw-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler handles HTTP requests for the market overview.
type MarketHandler struct {
	marketService service.MarketService
	logger        *logger.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketService service.MarketService, logger *logger.Logger) *MarketHandler {
	return &MarketHandler{marketService: marketService, logger: logger}
}

// RegisterRoutes registers the market routes to the Echo group.
func (h *MarketHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/indices", h.GetIndices)
}

// GetIndices returns the dashboard index snapshots.
func (h *MarketHandler) GetIndices(c echo.Context) error {
	indices, err := h.marketService.GetIndices(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoData) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No data available"})
		}
		h.logger.Error("Failed to get market indices", logger.ErrorField(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "Upstream request failed"})
	}
	return c.JSON(http.StatusOK, dto.IndicesResponse{Indices: indices})
}
