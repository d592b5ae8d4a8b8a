package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/disaster_report_bot/internal/alert"
	"github.com/shenikar/disaster_report_bot/internal/config"
	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/shenikar/disaster_report_bot/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	reportService service.ReportService
	alerts        alert.Publisher
	logger        *logrus.Logger
	validate      *validator.Validate
	cfg           *config.Config
}

func NewHandler(reportService service.ReportService, alerts alert.Publisher, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		reportService: reportService,
		alerts:        alerts,
		logger:        logger,
		validate:      validator.New(),
		cfg:           cfg,
	}
}

// @Summary Create a new disaster report
// @Description Create a disaster report directly, bypassing the chat dialog. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param report body CreateReportRequest true "Report creation request"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [post]
func (h *Handler) createReport(c *gin.Context) {
	var input CreateReportRequest
	log := h.logger.WithField("method", "createReport")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Тип проверяется по закрытому списку; oneof в теге не покрывает Emergency
	if _, ok := models.ParseDisasterType(input.DisasterType); !ok && input.DisasterType != string(models.DisasterEmergency) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown disaster type"})
		return
	}

	model := DTOToReportModel(input)
	if err := h.reportService.CreateReport(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create report in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	// Для критических отчетов запускается экстренное оповещение;
	// его сбой не влияет на результат создания
	if model.Severity == models.SeverityCritical {
		if err := h.alerts.Publish(c.Request.Context(), alert.NewEvent(model)); err != nil {
			log.WithError(err).WithField("report_id", model.ID).Error("Failed to publish critical alert")
		}
	}

	c.JSON(http.StatusCreated, ModelToReportResponse(model))
}

// @Summary Get a list of reports
// @Description Get reports with optional severity, disaster type and status filters. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param severity query string false "Severity filter"
// @Param disaster_type query string false "Disaster type filter"
// @Param status query string false "Status filter"
// @Param limit query int false "Maximum number of reports" default(50)
// @Success 200 {object} ReportListResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [get]
func (h *Handler) listReports(c *gin.Context) {
	log := h.logger.WithField("method", "listReports")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	filters := service.ListFilters{
		Severity: models.Severity(c.Query("severity")),
		Type:     models.DisasterType(c.Query("disaster_type")),
		Status:   models.ReportStatus(c.Query("status")),
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), filters, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ReportListResponse{
		Reports: ModelsToReportResponses(reports),
		Count:   len(reports),
	})
}

// @Summary Get reports near a location
// @Description Get reports within a radius (km) of a point, filtered by great-circle distance. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lat query number true "Center latitude"
// @Param lng query number true "Center longitude"
// @Param radius query number false "Radius in kilometers" default(10)
// @Success 200 {object} NearbyResponse
// @Failure 400 {object} map[string]string "Missing or invalid coordinates"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/nearby [get]
func (h *Handler) getNearbyReports(c *gin.Context) {
	log := h.logger.WithField("method", "getNearbyReports")

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng parameters are required"})
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "10"), 64)
	if err != nil || radius <= 0 {
		radius = 10
	}

	reports, err := h.reportService.NearbyReports(c.Request.Context(), lat, lng, radius, 0)
	if err != nil {
		log.WithError(err).Error("Failed to search nearby reports in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, NearbyResponse{
		Reports:  ModelsToReportResponses(reports),
		Count:    len(reports),
		Center:   CenterDTO{Lat: lat, Lng: lng},
		RadiusKm: radius,
	})
}

// @Summary Get reports of a user
// @Description Get the most recent reports submitted by a user. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param userID path string true "User ID"
// @Param limit query int false "Maximum number of reports" default(10)
// @Success 200 {array} ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/user/{userID} [get]
func (h *Handler) getUserReports(c *gin.Context) {
	log := h.logger.WithField("method", "getUserReports")
	userID := c.Param("userID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	reports, err := h.reportService.GetUserReports(c.Request.Context(), userID, limit)
	if err != nil {
		log.WithError(err).Error("Failed to get user reports from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToReportResponses(reports))
}

// @Summary Get report by ID
// @Description Get a single report by its public ID. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id} [get]
func (h *Handler) getReport(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getReport").WithField("id", id)

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		log.WithError(err).Error("Failed to get report from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Update report status
// @Description Update the processing status of a report. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid request body or status value"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id}/status [put]
func (h *Handler) updateStatus(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "updateStatus").WithField("id", id)

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, _ := models.ParseReportStatus(input.Status)
	report, err := h.reportService.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		log.WithError(err).Error("Failed to update report status in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Get dashboard statistics
// @Description Get aggregated report statistics for the dashboard. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /dashboard/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.reportService.DashboardStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsToResponse(stats))
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
