package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Database
	DatabaseURL string

	// Detection
	MaxTextLength int // Maximum detection input length in bytes

	// Predefined keyword sets
	SetsDir string // Directory of YAML set files, hot-reloaded; "" = built-ins only

	// Notification dispatch
	KafkaBrokers string // Comma-separated broker list; "" disables Kafka dispatch
	KafkaTopic   string

	// Rate limiting
	RedisURL string // Optional Redis backing for the rate limiter

	// Admin surface
	AdminToken  string // Shared bearer token for admin routes; "" disables the check
	CORSOrigins string // Comma-separated allowed origins

	// Email alerts (optional, for deployments without a broker consumer)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "none", "starttls", or "tls"
	AlertEmails  string // Comma-separated recipients for crisis alert emails
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:           getEnv("ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/crisiswatch?sslmode=disable"),
		MaxTextLength: getEnvInt("MAX_TEXT_LENGTH", 5000),
		SetsDir:       getEnv("SETS_DIR", ""),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "crisiswatch-events"),
		RedisURL:      getEnv("REDIS_URL", ""),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", ""),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "CrisisWatch"),
		SMTPTLS:       getEnv("SMTP_TLS", "starttls"),
		AlertEmails:   getEnv("ALERT_EMAILS", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Brokers returns the Kafka broker list, or nil when dispatch is disabled.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	return strings.Split(c.KafkaBrokers, ",")
}

// IsEmailEnabled returns true if SMTP is configured for crisis alerts.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != "" && c.AlertEmails != ""
}

// AlertRecipients returns the alert email recipient list.
func (c *Config) AlertRecipients() []string {
	if c.AlertEmails == "" {
		return nil
	}
	parts := strings.Split(c.AlertEmails, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
