package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_report_bot/internal/models"
)

const (
	alertQueueKey = "alert_events"
)

// Event - структура данных экстренного оповещения
type Event struct {
	AlertID      string              `json:"alert_id"`
	ReportID     string              `json:"report_id"`
	AlertType    string              `json:"alert_type"`
	DisasterType models.DisasterType `json:"disaster_type"`
	Severity     models.Severity     `json:"severity"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
	Description  string              `json:"description,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewEvent собирает событие оповещения из финализированного отчета
func NewEvent(report *models.Report) Event {
	return Event{
		AlertID:      uuid.New().String(),
		ReportID:     report.ID,
		AlertType:    "Critical Disaster Report",
		DisasterType: report.Type,
		Severity:     report.Severity,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		Description:  report.Description,
		CreatedAt:    time.Now().UTC(),
	}
}

// Publisher - интерфейс для публикации оповещений
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher - реализация Publisher, использующая Redis
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish публикует событие оповещения в очередь Redis
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	// Используем LPUSH для добавления события в левую часть списка (очереди)
	if err := p.redisClient.LPush(ctx, alertQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert event to Redis: %w", err)
	}
	return nil
}
