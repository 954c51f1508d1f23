package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Chapa     ChapaConfig
	Email     EmailConfig
	Notify    NotifyConfig
	RabbitMQ  RabbitMQConfig
	Reconcile ReconcileConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

// DSN builds a libpq-style connection string understood by pgx.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// ChapaConfig carries the gateway credential. An empty SecretKey is allowed at
// startup and reported when a payment call is attempted.
type ChapaConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Currency      string
	ReturnURL     string
	CallbackURL   string
	Title         string
	Timeout       time.Duration
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type NotifyConfig struct {
	Driver      string // memory | rabbitmq
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type ReconcileConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
	Workers    int
}

// LoadConfig reads the optional env file at path and overlays the process
// environment on top of it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "travel-booking")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("CHAPA_BASE_URL", "https://api.chapa.co")
	v.SetDefault("CHAPA_CURRENCY", "ETB")
	v.SetDefault("CHAPA_RETURN_URL", "http://localhost:8080/api/payment/verify")
	v.SetDefault("CHAPA_TITLE", "Travel Booking")
	v.SetDefault("CHAPA_TIMEOUT", 10*time.Second)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "no-reply@travel-booking.local")
	v.SetDefault("NOTIFY_DRIVER", "memory")
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 100)
	v.SetDefault("NOTIFY_SEND_TIMEOUT", 30*time.Second)
	v.SetDefault("RABBITMQ_QUEUE", "email_jobs")
	v.SetDefault("RECONCILE_INTERVAL", 15*time.Minute)
	// Older than a checkout session, so a guest still paying is never swept to failed.
	v.SetDefault("RECONCILE_STALE_AFTER", 24*time.Hour)
	v.SetDefault("RECONCILE_BATCH", 50)
	v.SetDefault("RECONCILE_WORKERS", 5)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		Chapa: ChapaConfig{
			BaseURL:       v.GetString("CHAPA_BASE_URL"),
			SecretKey:     v.GetString("CHAPA_SECRET"),
			WebhookSecret: v.GetString("CHAPA_WEBHOOK_SECRET"),
			Currency:      v.GetString("CHAPA_CURRENCY"),
			ReturnURL:     v.GetString("CHAPA_RETURN_URL"),
			CallbackURL:   v.GetString("CHAPA_CALLBACK_URL"),
			Title:         v.GetString("CHAPA_TITLE"),
			Timeout:       v.GetDuration("CHAPA_TIMEOUT"),
		},
		Email: EmailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
			From:     v.GetString("EMAIL_FROM"),
		},
		Notify: NotifyConfig{
			Driver:      v.GetString("NOTIFY_DRIVER"),
			Workers:     v.GetInt("NOTIFY_WORKERS"),
			QueueSize:   v.GetInt("NOTIFY_QUEUE_SIZE"),
			SendTimeout: v.GetDuration("NOTIFY_SEND_TIMEOUT"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		Reconcile: ReconcileConfig{
			Interval:   v.GetDuration("RECONCILE_INTERVAL"),
			StaleAfter: v.GetDuration("RECONCILE_STALE_AFTER"),
			BatchSize:  v.GetInt("RECONCILE_BATCH"),
			Workers:    v.GetInt("RECONCILE_WORKERS"),
		},
	}

	return config, nil
}
