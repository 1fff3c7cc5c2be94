package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// UploadConfig holds attachment upload and retention settings.
type UploadConfig struct {
	// MaxSizeBytes is the largest accepted upload.
	MaxSizeBytes int64
	// RetentionHours is how long attachments are kept before the sweep deletes them.
	RetentionHours int
	// CleanupIntervalMinutes is how often the retention sweep runs.
	CleanupIntervalMinutes int
}

// ScrapeConfig holds settings for URL content extraction.
type ScrapeConfig struct {
	TimeoutSec      int
	MaxContentBytes int64
	UserAgent       string
}

// LLMConfig holds settings shared by all LLM provider clients.
// API keys are read from OPENAI_API_KEY / ANTHROPIC_API_KEY by the provider
// clients themselves and intentionally do not pass through this struct.
type LLMConfig struct {
	RequestTimeoutSec int
	MaxRetries        int
	RetryDelayMs      int
	// SummaryModel is the fixed model used for attachment summarization.
	SummaryModel string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port         string
	AllowOrigins string
	TemplateDir  string
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Upload       UploadConfig
	Scrape       ScrapeConfig
	LLM          LLMConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:         getEnv("PORT", "8080"),
		AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		TemplateDir:  getEnv("TEMPLATE_DIR", "data/templates"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			MaxSizeBytes:           getEnvInt64("UPLOAD_MAX_SIZE_BYTES", 10*1024*1024),
			RetentionHours:         getEnvInt("UPLOAD_RETENTION_HOURS", 24),
			CleanupIntervalMinutes: getEnvInt("UPLOAD_CLEANUP_INTERVAL_MIN", 60),
		},
		Scrape: ScrapeConfig{
			TimeoutSec:      getEnvInt("SCRAPE_TIMEOUT_SEC", 30),
			MaxContentBytes: getEnvInt64("SCRAPE_MAX_CONTENT_BYTES", 1024*1024),
			UserAgent:       getEnv("SCRAPE_USER_AGENT", "Mozilla/5.0 (compatible; ProposalBot/1.0)"),
		},
		LLM: LLMConfig{
			RequestTimeoutSec: getEnvInt("LLM_REQUEST_TIMEOUT_SEC", 120),
			MaxRetries:        getEnvInt("LLM_MAX_RETRIES", 3),
			RetryDelayMs:      getEnvInt("LLM_RETRY_DELAY_MS", 2000),
			SummaryModel:      getEnv("LLM_SUMMARY_MODEL", "gpt-4o-mini"),
		},
	}
}

// Retention returns the attachment retention window as a duration.
func (u UploadConfig) Retention() time.Duration {
	return time.Duration(u.RetentionHours) * time.Hour
}

// CleanupInterval returns the sweep interval as a duration.
func (u UploadConfig) CleanupInterval() time.Duration {
	return time.Duration(u.CleanupIntervalMinutes) * time.Minute
}

// Origins splits the configured CORS origins into a trimmed slice.
func (a *AppConfig) Origins() []string {
	parts := strings.Split(a.AllowOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
