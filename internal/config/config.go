package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram Config
	TelegramToken  string        `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL string        `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	SendTimeout    time.Duration `env:"TELEGRAM_SEND_TIMEOUT" envDefault:"5s"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Session Config
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"15m"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`

	// Submission Config
	SubmitTimeout time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"5s"`

	// Alert Webhook Config
	AlertWebhookURL string        `env:"ALERT_WEBHOOK_URL"`
	AlertSecret     string        `env:"ALERT_WEBHOOK_SECRET"`
	AlertTimeout    time.Duration `env:"ALERT_TIMEOUT" envDefault:"5s"`
	AlertMaxRetries int           `env:"ALERT_MAX_RETRIES" envDefault:"3"`
	AlertBaseDelay  time.Duration `env:"ALERT_BASE_DELAY" envDefault:"1s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		TelegramToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIURL:       getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		SendTimeout:          getEnvAsDuration("TELEGRAM_SEND_TIMEOUT", 5*time.Second),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 15*time.Minute),
		SessionSweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		SubmitTimeout:        getEnvAsDuration("SUBMIT_TIMEOUT", 5*time.Second),
		AlertWebhookURL:      os.Getenv("ALERT_WEBHOOK_URL"),
		AlertSecret:          os.Getenv("ALERT_WEBHOOK_SECRET"),
		AlertTimeout:         getEnvAsDuration("ALERT_TIMEOUT", 5*time.Second),
		AlertMaxRetries:      getEnvAsInt("ALERT_MAX_RETRIES", 3),
		AlertBaseDelay:       getEnvAsDuration("ALERT_BASE_DELAY", time.Second),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
