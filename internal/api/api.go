package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andresuchdata/supplyflow/internal/api/handlers"
	"github.com/andresuchdata/supplyflow/internal/api/middleware"
	"github.com/andresuchdata/supplyflow/internal/service"
)

type Services struct {
	Replenishment *service.ReplenishmentService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Replenishment != nil {
		svc := services.Replenishment

		productHandler := handlers.NewProductHandler(svc)
		productGroup := apiGroup.Group("/products")
		{
			productGroup.GET("/alerts/reorder", productHandler.GetReorderAlerts)
			productGroup.GET("/:id/decision", productHandler.GetDecision)
			productGroup.PATCH("/:id/stock", productHandler.UpdateStock)
		}

		orderHandler := handlers.NewOrderHandler(svc)
		orderGroup := apiGroup.Group("/orders")
		{
			orderGroup.GET("", orderHandler.ListOrders)
			orderGroup.POST("/auto-reorder", orderHandler.AutoReorder)
			orderGroup.GET("/:id", orderHandler.GetOrder)
			orderGroup.POST("/:id/receive", orderHandler.ReceiveOrder)
		}

		analyticsHandler := handlers.NewAnalyticsHandler(svc)
		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/abc", analyticsHandler.GetABC)
			analyticsGroup.GET("/inventory", analyticsHandler.GetInventory)
			analyticsGroup.GET("/forecast", analyticsHandler.GetForecast)
		}

		supplierHandler := handlers.NewSupplierHandler(svc)
		apiGroup.GET("/suppliers/performance", supplierHandler.GetPerformance)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
