package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	MySQL    MySQLConfig
	Log      LogConfig
	Chapa    ChapaConfig
	SMTP     SMTPConfig
	Payments PaymentsConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type ChapaConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	ReturnURL   string
	HTTPTimeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type PaymentsConfig struct {
	DefaultCurrency       string
	ReconcileStaleAfter   time.Duration
	JobBatchSize          int32
	NotificationQueueSize int
}

type JobsConfig struct {
	ReconcileInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "travel-payments-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Chapa: ChapaConfig{
			SecretKey:   getEnv("CHAPA_SECRET_KEY", ""),
			BaseURL:     getEnv("CHAPA_BASE_URL", "https://api.chapa.co/v1"),
			CallbackURL: getEnv("CHAPA_CALLBACK_URL", ""),
			ReturnURL:   getEnv("CHAPA_RETURN_URL", ""),
			HTTPTimeout: getSecondsEnv("CHAPA_HTTP_TIMEOUT_SECONDS", 30*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getIntEnv("SMTP_PORT", 465),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			Sender:   getEnv("SMTP_SENDER", "payments@zementravel.example"),
		},
		Payments: PaymentsConfig{
			DefaultCurrency:       getEnv("PAYMENTS_DEFAULT_CURRENCY", "ETB"),
			ReconcileStaleAfter:   getMinutesEnv("PAYMENTS_RECONCILE_STALE_AFTER_MINUTES", 15*time.Minute),
			JobBatchSize:          int32(getIntEnv("PAYMENTS_JOB_BATCH_SIZE", 100)),
			NotificationQueueSize: getIntEnv("PAYMENTS_NOTIFICATION_QUEUE_SIZE", 256),
		},
		Jobs: JobsConfig{
			ReconcileInterval: getMinutesEnv("PAYMENTS_RECONCILE_INTERVAL_MINUTES", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
