// Package config handles loading and validation of application configuration
// from environment variables and potentially configuration files.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/formcraft/formcraft-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minJWTLength = 32
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// PublicBaseURL is the externally reachable origin used in embed snippets.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL" yaml:"public_base_url"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, gin does not trust forwarding headers for ClientIP.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host           string `mapstructure:"HOST" yaml:"host"`
	Port           int    `mapstructure:"PORT" yaml:"port"`
	User           string `mapstructure:"USER" yaml:"user"`
	Password       string `mapstructure:"PASSWORD" yaml:"password"`
	Name           string `mapstructure:"NAME" yaml:"name"`
	MaxConnections int    `mapstructure:"MAX_CONNECTIONS" yaml:"max_connections"`
	SSLMode        string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	ConnMaxLife    string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
	RunMigrations  bool   `mapstructure:"RUN_MIGRATIONS" yaml:"run_migrations"`
}

// URL returns a postgres:// connection URL suitable for pgxpool and golang-migrate.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// ConnMaxLifetime parses ConnMaxLife, falling back to one hour.
func (c *DatabaseConfig) ConnMaxLifetime() time.Duration {
	d, err := time.ParseDuration(c.ConnMaxLife)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// ExternalServices holds the auth provider settings.
type ExternalServices struct {
	SupabaseURL       string `mapstructure:"SUPABASE_URL" yaml:"supabase_url"`
	SupabaseAnonKey   string `mapstructure:"SUPABASE_ANON_KEY" yaml:"supabase_anon_key"`
	SupabaseJWTSecret string `mapstructure:"SUPABASE_JWT_SECRET" yaml:"supabase_jwt_secret"`
}

// EmailConfig holds configuration for submission notification emails.
type EmailConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
	DashboardURL string `mapstructure:"DASHBOARD_URL" yaml:"dashboard_url"`
}

// RateLimitConfig holds limits for the public endpoints.
type RateLimitConfig struct {
	SubmissionsPerMinute int `mapstructure:"SUBMISSIONS_PER_MINUTE" yaml:"submissions_per_minute"`
	EmbedLoadsPerMinute  int `mapstructure:"EMBED_LOADS_PER_MINUTE" yaml:"embed_loads_per_minute"`
	EmbedLoadBurst       int `mapstructure:"EMBED_LOAD_BURST" yaml:"embed_load_burst"`
	WindowSeconds        int `mapstructure:"WINDOW_SECONDS" yaml:"window_seconds"`
}

// Window returns the rate limit window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// WorkerPoolConfig holds configuration for the background job pool.
type WorkerPoolConfig struct {
	// MaxWorkers is the number of concurrent workers (default: 4)
	MaxWorkers int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	// QueueSize is the maximum number of pending jobs (default: 1000)
	QueueSize int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	// ShutdownTimeoutSeconds is the max time to wait for workers during shutdown (default: 30)
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
	// JobTimeoutSeconds bounds a single job (default: 15)
	JobTimeoutSeconds int `mapstructure:"JOB_TIMEOUT_SECONDS" yaml:"job_timeout_seconds"`
}

// EmbedConfig holds the referer policy for public form access.
type EmbedConfig struct {
	// AllowMissingReferer authorizes embed requests that carry no referer.
	AllowMissingReferer bool `mapstructure:"ALLOW_MISSING_REFERER" yaml:"allow_missing_referer"`
	// AllowRefererQuery honors ?referer= on the embed page when no header is
	// present. Ignored in production.
	AllowRefererQuery bool `mapstructure:"ALLOW_REFERER_QUERY" yaml:"allow_referer_query"`
}

// UploadsConfig limits files attached to submissions.
type UploadsConfig struct {
	MaxBytes         int64    `mapstructure:"MAX_BYTES" yaml:"max_bytes"`
	AllowedMimeTypes []string `mapstructure:"ALLOWED_MIME_TYPES" yaml:"allowed_mime_types"`
}

// StorageConfig selects the object store for uploads. An empty provider
// disables uploads.
type StorageConfig struct {
	Provider        string `mapstructure:"PROVIDER" yaml:"provider"` // "", "s3" or "r2"
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	AccountID       string `mapstructure:"ACCOUNT_ID" yaml:"account_id"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
}

// CacheConfig controls the Redis read cache.
type CacheConfig struct {
	Enabled            bool `mapstructure:"ENABLED" yaml:"enabled"`
	FormTTLSeconds     int  `mapstructure:"FORM_TTL_SECONDS" yaml:"form_ttl_seconds"`
	TemplateTTLSeconds int  `mapstructure:"TEMPLATE_TTL_SECONDS" yaml:"template_ttl_seconds"`
}

// RetentionConfig controls the embed log purge job.
type RetentionConfig struct {
	EmbedLogDays int    `mapstructure:"EMBED_LOG_DAYS" yaml:"embed_log_days"`
	Schedule     string `mapstructure:"SCHEDULE" yaml:"schedule"`
}

// SubmissionConfig controls idempotent submission handling.
type SubmissionConfig struct {
	IdempotencyTTLHours int `mapstructure:"IDEMPOTENCY_TTL_HOURS" yaml:"idempotency_ttl_hours"`
}

// AdminConfig lists users allowed to approve embedding sites.
type AdminConfig struct {
	UserIDs []string `mapstructure:"USER_IDS" yaml:"user_ids"`
}

// IsAdmin reports whether userID is a configured admin.
func (a AdminConfig) IsAdmin(userID string) bool {
	for _, id := range a.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Config aggregates all application configuration sections.
type Config struct {
	Server           ServerConfig     `mapstructure:"SERVER" yaml:"server"`
	Database         DatabaseConfig   `mapstructure:"DATABASE" yaml:"database"`
	Redis            RedisConfig      `mapstructure:"REDIS" yaml:"redis"`
	Email            EmailConfig      `mapstructure:"EMAIL" yaml:"email"`
	ExternalServices ExternalServices `mapstructure:"EXTERNAL_SERVICES" yaml:"external_services"`
	RateLimit        RateLimitConfig  `mapstructure:"RATE_LIMIT" yaml:"rate_limit"`
	WorkerPool       WorkerPoolConfig `mapstructure:"WORKER_POOL" yaml:"worker_pool"`
	Embed            EmbedConfig      `mapstructure:"EMBED" yaml:"embed"`
	Uploads          UploadsConfig    `mapstructure:"UPLOADS" yaml:"uploads"`
	Storage          StorageConfig    `mapstructure:"STORAGE" yaml:"storage"`
	Cache            CacheConfig      `mapstructure:"CACHE" yaml:"cache"`
	Retention        RetentionConfig  `mapstructure:"RETENTION" yaml:"retention"`
	Submission       SubmissionConfig `mapstructure:"SUBMISSION" yaml:"submission"`
	Admin            AdminConfig      `mapstructure:"ADMIN" yaml:"admin"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "formcraft_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_CONNECTIONS", 10)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("DATABASE.RUN_MIGRATIONS", true)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 10)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("EMAIL.ENABLED", false)
	v.SetDefault("EMAIL.FROM_NAME", "FormCraft")
	v.SetDefault("RATE_LIMIT.SUBMISSIONS_PER_MINUTE", 30)
	v.SetDefault("RATE_LIMIT.EMBED_LOADS_PER_MINUTE", 120)
	v.SetDefault("RATE_LIMIT.EMBED_LOAD_BURST", 20)
	v.SetDefault("RATE_LIMIT.WINDOW_SECONDS", 60)
	v.SetDefault("WORKER_POOL.MAX_WORKERS", 4)
	v.SetDefault("WORKER_POOL.QUEUE_SIZE", 1000)
	v.SetDefault("WORKER_POOL.SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("WORKER_POOL.JOB_TIMEOUT_SECONDS", 15)
	v.SetDefault("EMBED.ALLOW_MISSING_REFERER", true)
	v.SetDefault("EMBED.ALLOW_REFERER_QUERY", true)
	v.SetDefault("UPLOADS.MAX_BYTES", 10<<20)
	v.SetDefault("UPLOADS.ALLOWED_MIME_TYPES", []string{
		"image/png", "image/jpeg", "image/gif", "image/webp", "application/pdf", "text/plain",
	})
	v.SetDefault("STORAGE.PROVIDER", "")
	v.SetDefault("STORAGE.REGION", "auto")
	v.SetDefault("CACHE.ENABLED", true)
	v.SetDefault("CACHE.FORM_TTL_SECONDS", 300)
	v.SetDefault("CACHE.TEMPLATE_TTL_SECONDS", 600)
	v.SetDefault("RETENTION.EMBED_LOG_DAYS", 90)
	v.SetDefault("RETENTION.SCHEDULE", "@daily")
	v.SetDefault("SUBMISSION.IDEMPOTENCY_TTL_HOURS", 24)
	v.SetDefault("ADMIN.USER_IDS", []string{})
	v.SetDefault("LOG_LEVEL", "info")
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

// load applies defaults and environment bindings on top of whatever v has
// already read, then unmarshals and validates.
func load(v *viper.Viper) (*Config, error) {
	log := logger.GetLogger()

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.PUBLIC_BASE_URL", "PUBLIC_BASE_URL"},
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"DATABASE.RUN_MIGRATIONS", "DB_RUN_MIGRATIONS"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"EXTERNAL_SERVICES.SUPABASE_URL", "SUPABASE_URL"},
		{"EXTERNAL_SERVICES.SUPABASE_ANON_KEY", "SUPABASE_ANON_KEY"},
		{"EXTERNAL_SERVICES.SUPABASE_JWT_SECRET", "SUPABASE_JWT_SECRET"},
		{"EMAIL.ENABLED", "EMAIL_ENABLED"},
		{"EMAIL.FROM_ADDRESS", "EMAIL_FROM_ADDRESS"},
		{"EMAIL.FROM_NAME", "EMAIL_FROM_NAME"},
		{"EMAIL.RESEND_API_KEY", "RESEND_API_KEY"},
		{"EMAIL.DASHBOARD_URL", "DASHBOARD_URL"},
		{"EMBED.ALLOW_MISSING_REFERER", "EMBED_ALLOW_MISSING_REFERER"},
		{"EMBED.ALLOW_REFERER_QUERY", "EMBED_ALLOW_REFERER_QUERY"},
		{"STORAGE.PROVIDER", "STORAGE_PROVIDER"},
		{"STORAGE.BUCKET", "STORAGE_BUCKET"},
		{"STORAGE.REGION", "STORAGE_REGION"},
		{"STORAGE.ACCOUNT_ID", "STORAGE_ACCOUNT_ID"},
		{"STORAGE.ACCESS_KEY_ID", "STORAGE_ACCESS_KEY_ID"},
		{"STORAGE.SECRET_ACCESS_KEY", "STORAGE_SECRET_ACCESS_KEY"},
		{"ADMIN.USER_IDS", "ADMIN_USER_IDS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"db_host", v.GetString("DATABASE.HOST"),
		"redis_address", v.GetString("REDIS.ADDRESS"),
		"storage_provider", v.GetString("STORAGE.PROVIDER"),
		"allow_missing_referer", v.GetBool("EMBED.ALLOW_MISSING_REFERER"),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}
	if _, err := url.ParseRequestURI(cfg.Server.PublicBaseURL); err != nil {
		return fmt.Errorf("invalid public base URL '%s': %w", cfg.Server.PublicBaseURL, err)
	}

	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if cfg.Database.Password == "" {
		log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
	}

	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if err := validateAuth(&cfg.ExternalServices); err != nil {
		return err
	}

	if cfg.Email.Enabled {
		if cfg.Email.ResendAPIKey == "" {
			log.Warn("Resend API key not set, disabling submission notification emails")
			cfg.Email.Enabled = false
		} else if cfg.Email.FromAddress == "" {
			return fmt.Errorf("email from address is required when email is enabled")
		}
	}

	if cfg.RateLimit.SubmissionsPerMinute <= 0 || cfg.RateLimit.EmbedLoadsPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	if cfg.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window seconds must be positive")
	}

	if cfg.WorkerPool.MaxWorkers <= 0 {
		return fmt.Errorf("worker pool max workers must be positive")
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		return fmt.Errorf("worker pool queue size must be positive")
	}
	if cfg.WorkerPool.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("worker pool shutdown timeout must be positive")
	}

	if cfg.Uploads.MaxBytes <= 0 {
		return fmt.Errorf("uploads max bytes must be positive")
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}

	if cfg.Retention.EmbedLogDays < 0 {
		return fmt.Errorf("embed log retention days cannot be negative")
	}
	if cfg.Submission.IdempotencyTTLHours <= 0 {
		return fmt.Errorf("idempotency TTL must be positive")
	}

	if cfg.IsProduction() && cfg.Embed.AllowMissingReferer {
		log.Warn("EMBED_ALLOW_MISSING_REFERER is enabled in production; embeds without a referer skip the domain check")
	}

	return nil
}

// validateAuth requires at least one way of verifying access tokens.
func validateAuth(services *ExternalServices) error {
	if services.SupabaseJWTSecret == "" && services.SupabaseURL == "" {
		return fmt.Errorf("either SUPABASE_JWT_SECRET or SUPABASE_URL must be set")
	}
	if services.SupabaseJWTSecret != "" && len(services.SupabaseJWTSecret) < minJWTLength {
		return fmt.Errorf("supabase JWT secret must be at least %d characters long", minJWTLength)
	}
	if services.SupabaseURL != "" {
		if _, err := url.ParseRequestURI(services.SupabaseURL); err != nil {
			return fmt.Errorf("invalid supabase URL: %w", err)
		}
	}
	return nil
}

func validateStorage(s *StorageConfig) error {
	switch s.Provider {
	case "":
		return nil
	case "s3":
		if s.Bucket == "" {
			return fmt.Errorf("storage bucket is required")
		}
	case "r2":
		if s.Bucket == "" || s.AccountID == "" {
			return fmt.Errorf("r2 storage requires bucket and account id")
		}
		if s.AccessKeyID == "" || s.SecretAccessKey == "" {
			return fmt.Errorf("r2 storage requires access key id and secret")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", s.Provider)
	}
	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
