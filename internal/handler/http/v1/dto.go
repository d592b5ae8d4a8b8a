package v1

import (
	"time"
)

// AttachmentDTO - ссылка на вложение отчета
// @Description Ссылка на вложение отчета
type AttachmentDTO struct {
	FileID   string `json:"file_id" validate:"required"`
	FileType string `json:"file_type,omitempty"`
}

// CreateReportRequest DTO для прямого создания отчета через API
// @Description DTO для прямого создания отчета
type CreateReportRequest struct {
	UserID       string          `json:"user_id" validate:"required"`
	Username     string          `json:"username,omitempty"`
	DisasterType string          `json:"disaster_type" validate:"required"`
	Severity     string          `json:"severity" validate:"required,oneof=Low Medium High Critical"`
	Latitude     float64         `json:"latitude" validate:"required,latitude"`
	Longitude    float64         `json:"longitude" validate:"required,longitude"`
	Description  string          `json:"description,omitempty"`
	Attachments  []AttachmentDTO `json:"attachments,omitempty" validate:"max=10,dive"`
}

// UpdateStatusRequest DTO для смены статуса отчета
// @Description DTO для смены статуса отчета
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending 'In Progress' Resolved Cancelled"`
}

// ReportResponse DTO для ответа с информацией об отчете
// @Description DTO для ответа с информацией об отчете
type ReportResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Username     string          `json:"username"`
	DisasterType string          `json:"disaster_type"`
	Severity     string          `json:"severity"`
	Latitude     float64         `json:"latitude"`
	Longitude    float64         `json:"longitude"`
	Description  string          `json:"description,omitempty"`
	Attachments  []AttachmentDTO `json:"attachments"`
	Status       string          `json:"status"`
	Source       string          `json:"source"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ReportListResponse DTO для списка отчетов
// @Description DTO для списка отчетов
type ReportListResponse struct {
	Reports []*ReportResponse `json:"reports"`
	Count   int               `json:"count"`
}

// NearbyResponse DTO для поиска отчетов рядом с точкой
// @Description DTO для поиска отчетов рядом с точкой
type NearbyResponse struct {
	Reports  []*ReportResponse `json:"reports"`
	Count    int               `json:"count"`
	Center   CenterDTO         `json:"center"`
	RadiusKm float64           `json:"radius_km"`
}

// CenterDTO - центр поиска
type CenterDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StatsResponse DTO для ответа со статистикой дашборда
// @Description DTO для ответа со статистикой дашборда
type StatsResponse struct {
	TotalReports      int               `json:"total_reports"`
	PendingReports    int               `json:"pending_reports"`
	ResolvedReports   int               `json:"resolved_reports"`
	CriticalReports   int               `json:"critical_reports"`
	DisasterTypes     map[string]int    `json:"disaster_types"`
	SeverityBreakdown map[string]int    `json:"severity_breakdown"`
	RecentReports     []*ReportResponse `json:"recent_reports"`
}
