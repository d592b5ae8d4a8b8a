package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DisasterType - тип бедствия (закрытый список)
type DisasterType string

const (
	DisasterEarthquake DisasterType = "Earthquake"
	DisasterFlood      DisasterType = "Flood"
	DisasterFire       DisasterType = "Fire"
	DisasterLandslide  DisasterType = "Landslide"
	DisasterCyclone    DisasterType = "Cyclone"
	DisasterAccident   DisasterType = "Accident"
	DisasterMedical    DisasterType = "Medical Emergency"
	DisasterOther      DisasterType = "Other"
	// DisasterEmergency проставляется автоматически при экстренном сценарии
	DisasterEmergency DisasterType = "Emergency"
)

// DisasterTypes - список типов, доступных пользователю при выборе
var DisasterTypes = []DisasterType{
	DisasterEarthquake, DisasterFlood, DisasterFire, DisasterLandslide,
	DisasterCyclone, DisasterAccident, DisasterMedical, DisasterOther,
}

// ParseDisasterType проверяет значение по списку выбора (Emergency пользователю недоступен)
func ParseDisasterType(s string) (DisasterType, bool) {
	for _, dt := range DisasterTypes {
		if strings.EqualFold(string(dt), s) {
			return dt, true
		}
	}
	return "", false
}

// Severity - уровень серьезности инцидента
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

var SeverityLevels = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func ParseSeverity(s string) (Severity, bool) {
	for _, sev := range SeverityLevels {
		if strings.EqualFold(string(sev), s) {
			return sev, true
		}
	}
	return "", false
}

// ReportStatus - статус обработки отчета
type ReportStatus string

const (
	StatusPending    ReportStatus = "Pending"
	StatusInProgress ReportStatus = "In Progress"
	StatusResolved   ReportStatus = "Resolved"
	StatusCancelled  ReportStatus = "Cancelled"
)

var ReportStatuses = []ReportStatus{StatusPending, StatusInProgress, StatusResolved, StatusCancelled}

func ParseReportStatus(s string) (ReportStatus, bool) {
	for _, st := range ReportStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// Attachment - ссылка на вложение из чата (файл не скачивается на нашу сторону)
type Attachment struct {
	FileID   string `json:"file_id"`
	FileType string `json:"file_type,omitempty"`
}

// Report - финализированный отчет о бедствии. После создания не изменяется,
// кроме поля Status (через UpdateStatus в репозитории).
type Report struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Username    string       `json:"username"`
	Type        DisasterType `json:"disaster_type"`
	Severity    Severity     `json:"severity"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Description string       `json:"description"`
	Attachments []Attachment `json:"attachments"`
	Status      ReportStatus `json:"status"`
	Source      string       `json:"source"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewReportID генерирует короткий публичный идентификатор отчета
// (первые 8 символов UUID в верхнем регистре, как в исходном коллекторе)
func NewReportID() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

// ValidCoordinates проверяет диапазоны широты и долготы
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Validate проверяет, что отчет собран корректно, независимо от того,
// каким путем он был построен
func (r *Report) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("report id is empty")
	}
	if r.UserID == "" {
		return fmt.Errorf("report user id is empty")
	}
	if _, ok := ParseDisasterType(string(r.Type)); !ok && r.Type != DisasterEmergency {
		return fmt.Errorf("unknown disaster type %q", r.Type)
	}
	if _, ok := ParseSeverity(string(r.Severity)); !ok {
		return fmt.Errorf("unknown severity %q", r.Severity)
	}
	if !ValidCoordinates(r.Latitude, r.Longitude) {
		return fmt.Errorf("coordinates out of range: %f, %f", r.Latitude, r.Longitude)
	}
	if _, ok := ParseReportStatus(string(r.Status)); !ok {
		return fmt.Errorf("unknown status %q", r.Status)
	}
	return nil
}
