package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	alert_mocks "github.com/shenikar/disaster_report_bot/internal/alert/mocks"
	"github.com/shenikar/disaster_report_bot/internal/config"
	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/shenikar/disaster_report_bot/internal/service"
	"github.com/shenikar/disaster_report_bot/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*Handler, *mocks.MockReportService, *alert_mocks.MockPublisher, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockReportService(ctrl)
	mockAlerts := alert_mocks.NewMockPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, mockAlerts, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, mockService, mockAlerts, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var authHeader = map[string]string{"X-API-Key": "test-api-key"}

func TestCreateReport_Success(t *testing.T) {
	_, mockService, mockAlerts, router := newTestHandler(t)
	reqBody := CreateReportRequest{
		UserID:       "42",
		Username:     "alice",
		DisasterType: "Flood",
		Severity:     "High",
		Latitude:     12.9,
		Longitude:    77.6,
		Description:  "street flooded",
	}

	mockService.EXPECT().
		CreateReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, report *models.Report) error {
			assert.Equal(t, "42", report.UserID)
			assert.Equal(t, models.DisasterFlood, report.Type)
			assert.Equal(t, models.StatusPending, report.Status)
			assert.Equal(t, "API", report.Source)
			return nil
		}).Times(1)
	// High не публикует оповещение
	mockAlerts.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), authHeader)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ReportResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Flood", resp.DisasterType)
}

func TestCreateReport_CriticalPublishesAlert(t *testing.T) {
	_, mockService, mockAlerts, router := newTestHandler(t)
	reqBody := CreateReportRequest{
		UserID:       "42",
		DisasterType: "Fire",
		Severity:     "Critical",
		Latitude:     12.9,
		Longitude:    77.6,
	}

	mockService.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	mockAlerts.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), authHeader)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateReport_Unauthorized(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBufferString(`{}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = makeRequest(router, "POST", "/api/v1/reports", bytes.NewBufferString(`{}`), map[string]string{"X-API-Key": "wrong-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateReport_InvalidJSON(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBufferString(`{"user_id": "42"`), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCreateReport_UnknownDisasterType(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	reqBody := CreateReportRequest{
		UserID:       "42",
		DisasterType: "Meteor",
		Severity:     "High",
		Latitude:     12.9,
		Longitude:    77.6,
	}

	mockService.EXPECT().CreateReport(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/reports", bytes.NewBuffer(bodyBytes), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown disaster type")
}

func TestListReports_WithFilters(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	expected := []*models.Report{
		{ID: "AB12CD34", Type: models.DisasterFlood, Severity: models.SeverityHigh, Status: models.StatusPending},
	}

	mockService.EXPECT().
		ListReports(gomock.Any(), service.ListFilters{
			Severity: models.SeverityHigh,
			Type:     models.DisasterFlood,
		}, 5).
		Return(expected, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/reports?severity=High&disaster_type=Flood&limit=5", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReportListResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "AB12CD34", resp.Reports[0].ID)
}

func TestGetNearbyReports_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	expected := []*models.Report{
		{ID: "NEAR0001", Latitude: 55.76, Longitude: 37.62},
	}

	mockService.EXPECT().
		NearbyReports(gomock.Any(), 55.75, 37.61, 5.0, 0).
		Return(expected, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/reports/nearby?lat=55.75&lng=37.61&radius=5", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp NearbyResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, 55.75, resp.Center.Lat)
	assert.Equal(t, 5.0, resp.RadiusKm)
}

func TestGetNearbyReports_MissingCoordinates(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().NearbyReports(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/reports/nearby?lat=55.75", nil, authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "lat and lng parameters are required")
}

func TestGetUserReports_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	expected := []*models.Report{
		{ID: "AB12CD34", UserID: "42"},
		{ID: "EF56AB78", UserID: "42"},
	}

	mockService.EXPECT().
		GetUserReports(gomock.Any(), "42", 10).
		Return(expected, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/reports/user/42", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []*ReportResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
}

func TestGetReport_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	expected := &models.Report{ID: "AB12CD34", Type: models.DisasterFire}

	mockService.EXPECT().
		GetReport(gomock.Any(), "AB12CD34").
		Return(expected, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/reports/AB12CD34", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReportResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", resp.ID)
}

func TestGetReport_NotFound(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		GetReport(gomock.Any(), "MISSING1").
		Return(nil, service.ErrReportNotFound).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/reports/MISSING1", nil, authHeader)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "report not found")
}

func TestUpdateStatus_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	updated := &models.Report{ID: "AB12CD34", Status: models.StatusResolved}

	mockService.EXPECT().
		UpdateStatus(gomock.Any(), "AB12CD34", models.StatusResolved).
		Return(updated, nil).
		Times(1)

	w := makeRequest(router, "PUT", "/api/v1/reports/AB12CD34/status", bytes.NewBufferString(`{"status": "Resolved"}`), authHeader)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ReportResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "Resolved", resp.Status)
}

func TestUpdateStatus_InvalidValue(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "PUT", "/api/v1/reports/AB12CD34/status", bytes.NewBufferString(`{"status": "Archived"}`), authHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStats_Success(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)
	stats := &service.Stats{
		TotalReports:    3,
		PendingReports:  2,
		CriticalReports: 1,
		DisasterTypes:   map[string]int{"Flood": 3},
		SeverityBreakdown: map[string]int{
			"Low": 0, "Medium": 0, "High": 2, "Critical": 1,
		},
		RecentReports: []*models.Report{{ID: "AB12CD34"}},
	}

	mockService.EXPECT().
		DashboardStats(gomock.Any()).
		Return(stats, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/dashboard/stats", nil, authHeader)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalReports)
	assert.Equal(t, 1, resp.CriticalReports)
	assert.Len(t, resp.RecentReports, 1)
}

func TestGetStats_ServiceError(t *testing.T) {
	_, mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		DashboardStats(gomock.Any()).
		Return(nil, fmt.Errorf("db down")).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/dashboard/stats", nil, authHeader)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthCheck_NoAuthRequired(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
