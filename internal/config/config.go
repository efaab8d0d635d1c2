package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	Backend BackendConfig
	CORS    CORSConfig
	Batch   BatchConfig
	Webhook WebhookConfig
	Email   EmailConfig
	Archive ArchiveConfig
	Watch   WatchConfig
}

// EmailConfig holds job summary email settings.
type EmailConfig struct {
	Provider    string   `mapstructure:"provider"`
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	FromName    string   `mapstructure:"from_name"`
	Recipients  []string `mapstructure:"recipients"`
}

// BatchConfig holds batch orchestrator settings.
type BatchConfig struct {
	Concurrency     int      `mapstructure:"concurrency"`
	DefaultPatterns []string `mapstructure:"default_patterns"`
}

// WebhookConfig holds outbound event delivery settings.
type WebhookConfig struct {
	URLs           []string `mapstructure:"urls"`
	Secret         string   `mapstructure:"secret"`
	Events         []string `mapstructure:"events"`
	RetryCount     int      `mapstructure:"retry_count"`
	RetryDelaySecs int      `mapstructure:"retry_delay_secs"`
	TimeoutSecs    int      `mapstructure:"timeout_secs"`
}

// ArchiveConfig toggles the Postgres result archive.
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// WatchConfig holds hot-folder settings used by the CLI watch command.
type WatchConfig struct {
	Dirs           []string `mapstructure:"dirs"`
	TaskKind       string   `mapstructure:"task_kind"`
	Patterns       []string `mapstructure:"patterns"`
	DebounceMillis int      `mapstructure:"debounce_millis"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single generation provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	Endpoint     string `mapstructure:"endpoint"`
}

// BackendConfig holds generation backend settings with provider fallback.
type BackendConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`

	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	Temperature       float64 `mapstructure:"temperature"`
	CallTimeoutSecs   int     `mapstructure:"call_timeout_secs"`
}

// Providers returns the configured providers in fallback order.
func (b *BackendConfig) Providers() []*ProviderConfig {
	var out []*ProviderConfig
	for _, p := range []*ProviderConfig{&b.Primary, &b.Secondary, &b.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
	ExportPrefix  string `mapstructure:"export_prefix"`
}

// Enabled reports whether a bucket is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the DOCVISION_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCVISION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_mb", 20)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docvision")
	v.SetDefault("db.password", "docvision_secret")
	v.SetDefault("db.name", "docvision_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults (empty bucket disables object storage)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)
	v.SetDefault("s3.export_prefix", "exports")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Backend defaults
	v.SetDefault("backend.primary.provider", "claude")
	v.SetDefault("backend.primary.api_key", "")
	v.SetDefault("backend.primary.default_model", "")
	v.SetDefault("backend.primary.timeout_secs", 120)
	v.SetDefault("backend.primary.endpoint", "")
	v.SetDefault("backend.secondary.provider", "")
	v.SetDefault("backend.secondary.api_key", "")
	v.SetDefault("backend.secondary.default_model", "")
	v.SetDefault("backend.secondary.timeout_secs", 120)
	v.SetDefault("backend.secondary.endpoint", "")
	v.SetDefault("backend.tertiary.provider", "")
	v.SetDefault("backend.tertiary.api_key", "")
	v.SetDefault("backend.tertiary.default_model", "")
	v.SetDefault("backend.tertiary.timeout_secs", 120)
	v.SetDefault("backend.tertiary.endpoint", "")
	v.SetDefault("backend.requests_per_second", 2.0)
	v.SetDefault("backend.burst", 4)
	v.SetDefault("backend.max_tokens", 4096)
	v.SetDefault("backend.temperature", 0.1)
	v.SetDefault("backend.call_timeout_secs", 180)

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.default_patterns", "*.png,*.jpg,*.jpeg,*.pdf,*.tiff")

	// Webhook defaults
	v.SetDefault("webhook.urls", "")
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.events", "")
	v.SetDefault("webhook.retry_count", 3)
	v.SetDefault("webhook.retry_delay_secs", 5)
	v.SetDefault("webhook.timeout_secs", 30)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@docvision.local")
	v.SetDefault("email.from_name", "DocVision")
	v.SetDefault("email.recipients", "")

	v.SetDefault("archive.enabled", false)

	// Watch defaults
	v.SetDefault("watch.dirs", "")
	v.SetDefault("watch.task_kind", "ocr")
	v.SetDefault("watch.patterns", "")
	v.SetDefault("watch.debounce_millis", 1500)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "DOCVISION_SERVER_PORT",
		"server.read_timeout":            "DOCVISION_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "DOCVISION_SERVER_WRITE_TIMEOUT",
		"server.environment":             "DOCVISION_SERVER_ENVIRONMENT",
		"server.max_upload_mb":           "DOCVISION_SERVER_MAX_UPLOAD_MB",
		"db.host":                        "DOCVISION_DB_HOST",
		"db.port":                        "DOCVISION_DB_PORT",
		"db.user":                        "DOCVISION_DB_USER",
		"db.password":                    "DOCVISION_DB_PASSWORD",
		"db.name":                        "DOCVISION_DB_NAME",
		"db.sslmode":                     "DOCVISION_DB_SSLMODE",
		"db.max_open":                    "DOCVISION_DB_MAX_OPEN",
		"db.max_idle":                    "DOCVISION_DB_MAX_IDLE",
		"s3.region":                      "DOCVISION_S3_REGION",
		"s3.bucket":                      "DOCVISION_S3_BUCKET",
		"s3.endpoint":                    "DOCVISION_S3_ENDPOINT",
		"s3.access_key":                  "DOCVISION_S3_ACCESS_KEY",
		"s3.secret_key":                  "DOCVISION_S3_SECRET_KEY",
		"s3.presign_expiry":              "DOCVISION_S3_PRESIGN_EXPIRY",
		"s3.export_prefix":               "DOCVISION_S3_EXPORT_PREFIX",
		"log.level":                      "DOCVISION_LOG_LEVEL",
		"log.format":                     "DOCVISION_LOG_FORMAT",
		"cors.allowed_origins":           "DOCVISION_CORS_ALLOWED_ORIGINS",
		"backend.primary.provider":       "DOCVISION_BACKEND_PRIMARY_PROVIDER",
		"backend.primary.api_key":        "DOCVISION_BACKEND_PRIMARY_API_KEY",
		"backend.primary.default_model":  "DOCVISION_BACKEND_PRIMARY_DEFAULT_MODEL",
		"backend.primary.timeout_secs":   "DOCVISION_BACKEND_PRIMARY_TIMEOUT_SECS",
		"backend.primary.endpoint":       "DOCVISION_BACKEND_PRIMARY_ENDPOINT",
		"backend.secondary.provider":     "DOCVISION_BACKEND_SECONDARY_PROVIDER",
		"backend.secondary.api_key":      "DOCVISION_BACKEND_SECONDARY_API_KEY",
		"backend.secondary.default_model": "DOCVISION_BACKEND_SECONDARY_DEFAULT_MODEL",
		"backend.secondary.timeout_secs": "DOCVISION_BACKEND_SECONDARY_TIMEOUT_SECS",
		"backend.secondary.endpoint":     "DOCVISION_BACKEND_SECONDARY_ENDPOINT",
		"backend.tertiary.provider":      "DOCVISION_BACKEND_TERTIARY_PROVIDER",
		"backend.tertiary.api_key":       "DOCVISION_BACKEND_TERTIARY_API_KEY",
		"backend.tertiary.default_model": "DOCVISION_BACKEND_TERTIARY_DEFAULT_MODEL",
		"backend.tertiary.timeout_secs":  "DOCVISION_BACKEND_TERTIARY_TIMEOUT_SECS",
		"backend.tertiary.endpoint":      "DOCVISION_BACKEND_TERTIARY_ENDPOINT",
		"backend.requests_per_second":    "DOCVISION_BACKEND_REQUESTS_PER_SECOND",
		"backend.burst":                  "DOCVISION_BACKEND_BURST",
		"backend.max_tokens":             "DOCVISION_BACKEND_MAX_TOKENS",
		"backend.temperature":            "DOCVISION_BACKEND_TEMPERATURE",
		"backend.call_timeout_secs":      "DOCVISION_BACKEND_CALL_TIMEOUT_SECS",
		"batch.concurrency":              "DOCVISION_BATCH_CONCURRENCY",
		"batch.default_patterns":         "DOCVISION_BATCH_DEFAULT_PATTERNS",
		"webhook.urls":                   "DOCVISION_WEBHOOK_URLS",
		"webhook.secret":                 "DOCVISION_WEBHOOK_SECRET",
		"webhook.events":                 "DOCVISION_WEBHOOK_EVENTS",
		"webhook.retry_count":            "DOCVISION_WEBHOOK_RETRY_COUNT",
		"webhook.retry_delay_secs":       "DOCVISION_WEBHOOK_RETRY_DELAY_SECS",
		"webhook.timeout_secs":           "DOCVISION_WEBHOOK_TIMEOUT_SECS",
		"email.provider":                 "DOCVISION_EMAIL_PROVIDER",
		"email.region":                   "DOCVISION_EMAIL_REGION",
		"email.from_address":             "DOCVISION_EMAIL_FROM_ADDRESS",
		"email.from_name":                "DOCVISION_EMAIL_FROM_NAME",
		"email.recipients":               "DOCVISION_EMAIL_RECIPIENTS",
		"archive.enabled":                "DOCVISION_ARCHIVE_ENABLED",
		"watch.dirs":                     "DOCVISION_WATCH_DIRS",
		"watch.task_kind":                "DOCVISION_WATCH_TASK_KIND",
		"watch.patterns":                 "DOCVISION_WATCH_PATTERNS",
		"watch.debounce_millis":          "DOCVISION_WATCH_DEBOUNCE_MILLIS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCVISION_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCVISION_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxUploadMB:  v.GetInt64("server.max_upload_mb"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
		ExportPrefix:  v.GetString("s3.export_prefix"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.Backend = BackendConfig{
		Primary:           providerConfig(v, "backend.primary"),
		Secondary:         providerConfig(v, "backend.secondary"),
		Tertiary:          providerConfig(v, "backend.tertiary"),
		RequestsPerSecond: v.GetFloat64("backend.requests_per_second"),
		Burst:             v.GetInt("backend.burst"),
		MaxTokens:         v.GetInt("backend.max_tokens"),
		Temperature:       v.GetFloat64("backend.temperature"),
		CallTimeoutSecs:   v.GetInt("backend.call_timeout_secs"),
	}

	cfg.Batch = BatchConfig{
		Concurrency:     v.GetInt("batch.concurrency"),
		DefaultPatterns: splitList(v.GetString("batch.default_patterns")),
	}
	if cfg.Batch.Concurrency <= 0 {
		return nil, fmt.Errorf("batch.concurrency must be positive, got %d", cfg.Batch.Concurrency)
	}

	cfg.Webhook = WebhookConfig{
		URLs:           splitList(v.GetString("webhook.urls")),
		Secret:         v.GetString("webhook.secret"),
		Events:         splitList(v.GetString("webhook.events")),
		RetryCount:     v.GetInt("webhook.retry_count"),
		RetryDelaySecs: v.GetInt("webhook.retry_delay_secs"),
		TimeoutSecs:    v.GetInt("webhook.timeout_secs"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		Recipients:  splitList(v.GetString("email.recipients")),
	}

	cfg.Archive = ArchiveConfig{
		Enabled: v.GetBool("archive.enabled"),
	}

	cfg.Watch = WatchConfig{
		Dirs:           splitList(v.GetString("watch.dirs")),
		TaskKind:       v.GetString("watch.task_kind"),
		Patterns:       splitList(v.GetString("watch.patterns")),
		DebounceMillis: v.GetInt("watch.debounce_millis"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
	}
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
