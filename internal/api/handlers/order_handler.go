package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/repository"
	"github.com/andresuchdata/supplyflow/internal/service"
)

type OrderHandler struct {
	service *service.ReplenishmentService
}

func NewOrderHandler(service *service.ReplenishmentService) *OrderHandler {
	return &OrderHandler{service: service}
}

type autoReorderRequest struct {
	Origin string `json:"origin"`
}

type receiveRequest struct {
	DeliveredAt *time.Time `json:"delivered_at"`
}

// AutoReorder creates one plan per supplier for every product at or below its reorder point
func (h *OrderHandler) AutoReorder(c *gin.Context) {
	var req autoReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	origin := domain.OriginAutoGenerated
	switch domain.PlanOrigin(strings.TrimSpace(req.Origin)) {
	case "", domain.OriginAutoGenerated:
	case domain.OriginManual:
		origin = domain.OriginManual
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin must be manual or auto-generated"})
		return
	}

	plans, err := h.service.PlanAutoReorder(c.Request.Context(), origin)
	if err != nil {
		writeError(c, err, "failed to create reorder plans")
		return
	}

	if len(plans) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "no products need reordering",
			"count":   0,
			"orders":  plans,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "reorder plans created",
		"count":   len(plans),
		"orders":  plans,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	plan, err := h.service.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ListOrders supports supplier_id, status, origin, limit and offset filters
func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := repository.PlanFilter{
		SupplierID: strings.TrimSpace(c.Query("supplier_id")),
		Status:     domain.PlanStatus(strings.TrimSpace(c.Query("status"))),
		Origin:     domain.PlanOrigin(strings.TrimSpace(c.Query("origin"))),
		Limit:      parsePositiveIntWithDefault(c.Query("limit"), repository.DefaultPlanLimit),
		Offset:     parseNonNegativeInt(c.Query("offset")),
	}

	plans, err := h.service.ListPlans(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err, "failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(plans),
		"orders": plans,
	})
}

// ReceiveOrder books the delivery of a plan. delivered_at is optional; when
// present it feeds the supplier's on-time rate.
func (h *OrderHandler) ReceiveOrder(c *gin.Context) {
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.service.ReceivePlan(c.Request.Context(), c.Param("id"), req.DeliveredAt)
	if err != nil {
		writeError(c, err, "failed to receive order")
		return
	}

	c.JSON(http.StatusOK, plan)
}
