package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrReportNotFound возвращается, когда отчет с указанным ID отсутствует
var ErrReportNotFound = errors.New("report not found")

// ListFilters - необязательные фильтры списка отчетов; пустое значение = без фильтра.
// Фильтры комбинируются через AND.
type ListFilters struct {
	Severity models.Severity
	Type     models.DisasterType
	Status   models.ReportStatus
}

// Stats - агрегированная статистика для дашборда
type Stats struct {
	TotalReports      int              `json:"total_reports"`
	PendingReports    int              `json:"pending_reports"`
	ResolvedReports   int              `json:"resolved_reports"`
	CriticalReports   int              `json:"critical_reports"`
	DisasterTypes     map[string]int   `json:"disaster_types"`
	SeverityBreakdown map[string]int   `json:"severity_breakdown"`
	RecentReports     []*models.Report `json:"recent_reports"`
}

// ReportRepository определяет контракт для работы с бд отчетов
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	GetByUser(ctx context.Context, userID string, limit int) ([]*models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
	List(ctx context.Context, filters ListFilters, limit int) ([]*models.Report, error)
	GetReportFromCache(ctx context.Context, id string) (*models.Report, error)
	SetReportCache(ctx context.Context, report *models.Report) error
	InvalidateReportCache(ctx context.Context, id string) error
}

// ReportService определяет контракт для бизнес-логики работы с отчетами
type ReportService interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	GetUserReports(ctx context.Context, userID string, limit int) ([]*models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
	ListReports(ctx context.Context, filters ListFilters, limit int) ([]*models.Report, error)
	NearbyReports(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*models.Report, error)
	DashboardStats(ctx context.Context) (*Stats, error)
}

type reportService struct {
	repo   ReportRepository
	logger *logrus.Logger
}

func NewReportService(repo ReportRepository, logger *logrus.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

// CreateReport сохраняет финализированный отчет в коллекторе
func (s *reportService) CreateReport(ctx context.Context, report *models.Report) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "CreateReport",
		"report_id": report.ID,
		"user_id":   report.UserID,
	})
	log.Info("Attempting to create a new report")

	// Повторная проверка корректности перед записью
	if err := report.Validate(); err != nil {
		log.WithError(err).Error("Report failed validation")
		return fmt.Errorf("service: invalid report: %w", err)
	}

	if err := s.repo.Create(ctx, report); err != nil {
		log.WithError(err).Error("Failed to create report in repository")
		return fmt.Errorf("service: could not create report: %w", err)
	}

	log.WithField("severity", report.Severity).Info("Report created successfully")
	return nil
}

// GetReport получает отчет по публичному ID, сперва пробуя кеш
func (s *reportService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "GetReport",
		"report_id": id,
	})

	cached, err := s.repo.GetReportFromCache(ctx, id)
	if err != nil {
		// Промах или сбой кеша не фатален, идем в бд
		log.WithError(err).Warn("Failed to read report from cache")
	}
	if cached != nil {
		log.Debug("Report served from cache")
		return cached, nil
	}

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			return nil, err
		}
		log.WithError(err).Error("Failed to get report from repository")
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}

	if err := s.repo.SetReportCache(ctx, report); err != nil {
		log.WithError(err).Warn("Failed to cache report")
	}
	return report, nil
}

// GetUserReports возвращает последние отчеты пользователя
func (s *reportService) GetUserReports(ctx context.Context, userID string, limit int) ([]*models.Report, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "GetUserReports",
		"user_id": userID,
	})

	reports, err := s.repo.GetByUser(ctx, userID, limit)
	if err != nil {
		log.WithError(err).Error("Failed to get user reports from repository")
		return nil, fmt.Errorf("service: could not get user reports: %w", err)
	}
	return reports, nil
}

// UpdateStatus меняет статус обработки отчета
func (s *reportService) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "UpdateStatus",
		"report_id": id,
		"status":    status,
	})
	log.Info("Attempting to update report status")

	if _, ok := models.ParseReportStatus(string(status)); !ok {
		return nil, fmt.Errorf("service: unknown status %q", status)
	}

	report, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			log.Warn("Attempted to update status of a non-existent report")
			return nil, err
		}
		log.WithError(err).Error("Failed to update report status in repository")
		return nil, fmt.Errorf("service: could not update report status: %w", err)
	}

	if err := s.repo.InvalidateReportCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate report cache")
	}

	log.Info("Report status updated successfully")
	return report, nil
}

// ListReports возвращает отчеты с необязательными фильтрами
func (s *reportService) ListReports(ctx context.Context, filters ListFilters, limit int) ([]*models.Report, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "ListReports",
	})

	reports, err := s.repo.List(ctx, filters, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}
	return reports, nil
}

// NearbyReports возвращает отчеты в радиусе radiusKm от точки.
// Фильтрация по большому кругу выполняется на стороне приложения,
// как в исходном коллекторе.
func (s *reportService) NearbyReports(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*models.Report, error) {
	if !models.ValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("service: center coordinates out of range")
	}
	if radiusKm <= 0 {
		radiusKm = 10
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "NearbyReports",
		"radius":  radiusKm,
	})

	reports, err := s.repo.List(ctx, ListFilters{}, 0)
	if err != nil {
		log.WithError(err).Error("Failed to list reports for nearby search")
		return nil, fmt.Errorf("service: could not search nearby reports: %w", err)
	}

	nearby := make([]*models.Report, 0)
	for _, r := range reports {
		if haversineKm(lat, lng, r.Latitude, r.Longitude) <= radiusKm {
			nearby = append(nearby, r)
			if limit > 0 && len(nearby) >= limit {
				break
			}
		}
	}

	log.WithField("count", len(nearby)).Info("Nearby search completed")
	return nearby, nil
}

// DashboardStats собирает агрегированную статистику по всем отчетам
func (s *reportService) DashboardStats(ctx context.Context) (*Stats, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "DashboardStats",
	})

	reports, err := s.repo.List(ctx, ListFilters{}, 0)
	if err != nil {
		log.WithError(err).Error("Failed to list reports for stats")
		return nil, fmt.Errorf("service: could not collect stats: %w", err)
	}

	stats := &Stats{
		DisasterTypes: make(map[string]int),
		SeverityBreakdown: map[string]int{
			string(models.SeverityLow):      0,
			string(models.SeverityMedium):   0,
			string(models.SeverityHigh):     0,
			string(models.SeverityCritical): 0,
		},
		RecentReports: []*models.Report{},
	}

	stats.TotalReports = len(reports)
	for _, r := range reports {
		switch r.Status {
		case models.StatusPending:
			stats.PendingReports++
		case models.StatusResolved:
			stats.ResolvedReports++
		}
		if r.Severity == models.SeverityCritical {
			stats.CriticalReports++
		}
		stats.DisasterTypes[string(r.Type)]++
		if _, ok := stats.SeverityBreakdown[string(r.Severity)]; ok {
			stats.SeverityBreakdown[string(r.Severity)]++
		}
	}

	// Список из репозитория упорядочен по created_at DESC
	if len(reports) > 5 {
		stats.RecentReports = reports[:5]
	} else {
		stats.RecentReports = reports
	}

	return stats, nil
}

// haversineKm вычисляет расстояние между двумя точками в километрах
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
