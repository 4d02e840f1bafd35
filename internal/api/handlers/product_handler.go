package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/service"
)

type ProductHandler struct {
	service *service.ReplenishmentService
}

func NewProductHandler(service *service.ReplenishmentService) *ProductHandler {
	return &ProductHandler{service: service}
}

type stockUpdateRequest struct {
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"`
}

// GetDecision returns the replenishment decision for one product
func (h *ProductHandler) GetDecision(c *gin.Context) {
	candidate, err := h.service.Evaluate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to evaluate product")
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// UpdateStock adds or subtracts stock
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	var req stockUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	op := domain.StockOperation(strings.ToLower(strings.TrimSpace(req.Operation)))
	if op != domain.StockAdd && op != domain.StockSubtract {
		c.JSON(http.StatusBadRequest, gin.H{"error": "operation must be add or subtract"})
		return
	}

	item, err := h.service.AdjustStock(c.Request.Context(), c.Param("id"), op, req.Quantity)
	if err != nil {
		writeError(c, err, "failed to update stock")
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetReorderAlerts runs a reorder check on demand
func (h *ProductHandler) GetReorderAlerts(c *gin.Context) {
	candidates, err := h.service.CheckReorderPoints(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to check reorder points")
		return
	}
	if candidates == nil {
		candidates = []domain.ReorderCandidate{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(candidates),
		"items": candidates,
	})
}
