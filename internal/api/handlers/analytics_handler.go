package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplyflow/internal/service"
)

type AnalyticsHandler struct {
	service *service.ReplenishmentService
}

func NewAnalyticsHandler(service *service.ReplenishmentService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) GetABC(c *gin.Context) {
	result, err := h.service.ClassifyABC(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to classify inventory")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) GetInventory(c *gin.Context) {
	topN := parsePositiveIntWithDefault(c.Query("top"), 10)

	overview, err := h.service.InventoryOverview(c.Request.Context(), topN)
	if err != nil {
		writeError(c, err, "failed to build inventory overview")
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetForecast projects demand for product_id, or for the whole active
// catalog when product_id is omitted. days and seed are optional.
func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	days := parseNonNegativeInt(c.Query("days"))
	seed := parseSeed(c.Query("seed"))

	if productID := strings.TrimSpace(c.Query("product_id")); productID != "" {
		series, err := h.service.Forecast(c.Request.Context(), productID, days, seed)
		if err != nil {
			writeError(c, err, "failed to forecast demand")
			return
		}
		c.JSON(http.StatusOK, series)
		return
	}

	all, err := h.service.ForecastCatalog(c.Request.Context(), days, seed)
	if err != nil {
		writeError(c, err, "failed to forecast demand")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(all),
		"forecasts": all,
	})
}
