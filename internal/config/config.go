package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	TelegramToken         string
	MongoDBURI            string
	CalendarID            string
	GoogleCredentialsFile string
	VenuesJSON            string

	SyncPeriod         time.Duration
	SyncBatch          int
	TrainListLimit     int
	AttendeesListLimit int

	AmplitudeAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FeedbackFrom string
	FeedbackTo   []string

	Environment string
	LogLevel    string
}

func LoadConfig() (*Config, error) {
	syncPeriod, err := getEnvInt("SYNC_PERIOD_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	syncBatch, err := getEnvInt("SYNC_BATCH", 10)
	if err != nil {
		return nil, err
	}
	trainLimit, err := getEnvInt("TRAIN_LIST_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	attendeesLimit, err := getEnvInt("ATTENDEES_LIST_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	smtpPort, err := getEnvInt("SMTP_PORT", 465)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                  getEnvWithDefault("PORT", "8080"),
		TelegramToken:         os.Getenv("TOKEN"),
		MongoDBURI:            os.Getenv("MONGODB_URI"),
		CalendarID:            os.Getenv("CALENDAR_ID"),
		GoogleCredentialsFile: getEnvWithDefault("CALENDAR_ACCESS_FILE", "credentials.json"),
		VenuesJSON:            os.Getenv("VENUES"),
		SyncPeriod:            time.Duration(syncPeriod) * time.Second,
		SyncBatch:             syncBatch,
		TrainListLimit:        trainLimit,
		AttendeesListLimit:    attendeesLimit,
		AmplitudeAPIKey:       os.Getenv("AMPLITUDE_API_KEY"),
		SMTPHost:              getEnvWithDefault("SMTP_HOST", "smtp.yandex.ru"),
		SMTPPort:              smtpPort,
		SMTPUsername:          os.Getenv("SMTP_USERNAME"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		FeedbackTo:            splitList(os.Getenv("FEEDBACK_TO")),
		Environment:           getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:              getEnvWithDefault("LOG_LEVEL", "info"),
	}
	cfg.FeedbackFrom = getEnvWithDefault("FEEDBACK_FROM", cfg.SMTPUsername)

	// Validate required fields
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TOKEN is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.CalendarID == "" {
		return nil, fmt.Errorf("CALENDAR_ID is required")
	}
	if cfg.VenuesJSON == "" {
		return nil, fmt.Errorf("VENUES is required")
	}
	if cfg.SyncPeriod <= 0 {
		return nil, fmt.Errorf("SYNC_PERIOD_SECONDS must be positive")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// FeedbackEnabled reports whether the feedback mail sink is configured.
func (c *Config) FeedbackEnabled() bool {
	return c.SMTPUsername != "" && c.SMTPPassword != "" && len(c.FeedbackTo) > 0
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %v", key, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
