package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Environment:    EnvDevelopment,
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			PublicBaseURL:  "http://localhost:8080",
		},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "pw", Name: "formcraft"},
		Redis:    RedisConfig{Address: "localhost:6379"},
		ExternalServices: ExternalServices{
			SupabaseJWTSecret: "0123456789abcdef0123456789abcdef",
		},
		RateLimit:  RateLimitConfig{SubmissionsPerMinute: 30, EmbedLoadsPerMinute: 120, EmbedLoadBurst: 20, WindowSeconds: 60},
		WorkerPool: WorkerPoolConfig{MaxWorkers: 2, QueueSize: 10, ShutdownTimeoutSeconds: 5, JobTimeoutSeconds: 5},
		Embed:      EmbedConfig{AllowMissingReferer: true},
		Uploads:    UploadsConfig{MaxBytes: 1024},
		Retention:  RetentionConfig{EmbedLogDays: 90, Schedule: "@daily"},
		Submission: SubmissionConfig{IdempotencyTTLHours: 24},
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_ENVIRONMENT", "development")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("SUPABASE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("EMBED_ALLOW_MISSING_REFERER", "false")
	t.Setenv("ADMIN_USER_IDS", "admin-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.False(t, cfg.Embed.AllowMissingReferer)
	assert.Equal(t, 24, cfg.Submission.IdempotencyTTLHours)
	assert.Equal(t, 4, cfg.WorkerPool.MaxWorkers)
	assert.True(t, cfg.Admin.IsAdmin("admin-1"))
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_MissingAuth(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "")
	t.Setenv("SUPABASE_URL", "")

	cfg, err := LoadConfig()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port"},
		{name: "bad origin", mutate: func(c *Config) { c.Server.AllowedOrigins = []string{"not a url"} }, wantErr: "allowed origin"},
		{name: "short secret", mutate: func(c *Config) { c.ExternalServices.SupabaseJWTSecret = "short" }, wantErr: "at least"},
		{name: "jwks only", mutate: func(c *Config) {
			c.ExternalServices.SupabaseJWTSecret = ""
			c.ExternalServices.SupabaseURL = "https://project.supabase.co"
		}},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Provider = "gcs" }, wantErr: "unknown storage provider"},
		{name: "r2 without keys", mutate: func(c *Config) {
			c.Storage = StorageConfig{Provider: "r2", Bucket: "uploads", AccountID: "acct"}
		}, wantErr: "access key"},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimit.SubmissionsPerMinute = 0 }, wantErr: "rate limits"},
		{name: "negative retention", mutate: func(c *Config) { c.Retention.EmbedLogDays = -1 }, wantErr: "retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfig_EmailWithoutKeyIsDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Email = EmailConfig{Enabled: true, FromAddress: "forms@example.com"}
	require.NoError(t, validateConfig(cfg))
	assert.False(t, cfg.Email.Enabled)
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", Name: "forms"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/forms?sslmode=disable", db.URL())
	assert.Equal(t, "1h0m0s", db.ConnMaxLifetime().String())
}
