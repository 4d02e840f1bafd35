package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplyflow/internal/service"
)

type SupplierHandler struct {
	service *service.ReplenishmentService
}

func NewSupplierHandler(service *service.ReplenishmentService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

// GetPerformance lists suppliers ranked by performance score
func (h *SupplierHandler) GetPerformance(c *gin.Context) {
	suppliers, err := h.service.SupplierPerformance(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to fetch supplier performance")
		return
	}

	c.JSON(http.StatusOK, suppliers)
}
