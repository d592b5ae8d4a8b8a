package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/shenikar/disaster_report_bot/internal/service"
)

const reportCacheTTL = 5 * time.Minute

type ReportRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewReportRepository(db *pgxpool.Pool, redisClient *redis.Client) service.ReportRepository {
	return &ReportRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Create создает новую запись об отчете в бд
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	attachments, err := json.Marshal(report.Attachments)
	if err != nil {
		return fmt.Errorf("failed to marshal attachments: %w", err)
	}

	query := `
		INSERT INTO reports (id, user_id, username, disaster_type, severity, latitude, longitude, description, attachments, status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at, updated_at;
	`
	err = r.db.QueryRow(ctx, query,
		report.ID,
		report.UserID,
		report.Username,
		report.Type,
		report.Severity,
		report.Latitude,
		report.Longitude,
		report.Description,
		attachments,
		report.Status,
		report.Source,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

const reportColumns = `
			id,
			user_id,
			username,
			disaster_type,
			severity,
			latitude,
			longitude,
			description,
			attachments,
			status,
			source,
			created_at,
			updated_at`

func scanReport(row pgx.Row) (*models.Report, error) {
	report := &models.Report{}
	var attachments []byte
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.Username,
		&report.Type,
		&report.Severity,
		&report.Latitude,
		&report.Longitude,
		&report.Description,
		&attachments,
		&report.Status,
		&report.Source,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attachments, &report.Attachments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
	}
	return report, nil
}

// GetByID возвращает отчет по его публичному ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports WHERE id = $1;`, reportColumns)

	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, service.ErrReportNotFound)
		}
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}
	return report, nil
}

// GetByUser возвращает последние отчеты пользователя
func (r *ReportRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.Report, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`, reportColumns)

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// UpdateStatus устанавливает новый статус обработки отчета
func (r *ReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	query := fmt.Sprintf(`
		UPDATE reports SET
			status = $1,
			updated_at = NOW()
		WHERE id = $2
		RETURNING %s;
	`, reportColumns)

	report, err := scanReport(r.db.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, service.ErrReportNotFound)
		}
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}
	return report, nil
}

// List возвращает отчеты с необязательными фильтрами, новые первыми
func (r *ReportRepository) List(ctx context.Context, filters service.ListFilters, limit int) ([]*models.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM reports`, reportColumns)
	args := make([]any, 0, 4)

	where := ""
	addFilter := func(column, value string) {
		args = append(args, value)
		if where == "" {
			where = fmt.Sprintf(" WHERE %s = $%d", column, len(args))
		} else {
			where += fmt.Sprintf(" AND %s = $%d", column, len(args))
		}
	}
	if filters.Severity != "" {
		addFilter("severity", string(filters.Severity))
	}
	if filters.Type != "" {
		addFilter("disaster_type", string(filters.Type))
	}
	if filters.Status != "" {
		addFilter("status", string(filters.Status))
	}

	query += where + " ORDER BY created_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	query += ";"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

func collectReports(rows pgx.Rows) ([]*models.Report, error) {
	reports := make([]*models.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return reports, nil
}

// GetReportFromCache пытается получить отчет из Redis
func (r *ReportRepository) GetReportFromCache(ctx context.Context, id string) (*models.Report, error) {
	key := fmt.Sprintf("report:%s", id)
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report from cache: %w", err)
	}

	report := &models.Report{}
	if err := json.Unmarshal(val, report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report from cache: %w", err)
	}
	return report, nil
}

// SetReportCache сохраняет отчет в Redis
func (r *ReportRepository) SetReportCache(ctx context.Context, report *models.Report) error {
	key := fmt.Sprintf("report:%s", report.ID)
	val, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, val, reportCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set report in cache: %w", err)
	}
	return nil
}

// InvalidateReportCache удаляет отчет из Redis кэша
func (r *ReportRepository) InvalidateReportCache(ctx context.Context, id string) error {
	key := fmt.Sprintf("report:%s", id)
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report cache: %w", err)
	}
	return nil
}
