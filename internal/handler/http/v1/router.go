package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршруты для работы с отчетами о бедствиях
	reports := api.Group("/reports", APIKeyAuthMiddleware(h.cfg, h.logger))
	{
		reports.POST("", h.createReport)
		reports.GET("", h.listReports)
		reports.GET("/nearby", h.getNearbyReports)
		reports.GET("/user/:userID", h.getUserReports)
		reports.GET("/:id", h.getReport)
		reports.PUT("/:id/status", h.updateStatus)
	}

	// Маршрут статистики для дашборда
	api.GET("/dashboard/stats", APIKeyAuthMiddleware(h.cfg, h.logger), h.getStats)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
