package config

import (
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions builds client options. TLS is on when configured and always in
// production.
func RedisOptions(cfg *RedisConfig, env Environment) *redis.Options {
	opts := &redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: time.Hour,
	}
	if cfg.UseTLS || env == EnvProduction {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisClient returns an unconnected client; go-redis dials lazily.
func NewRedisClient(cfg *RedisConfig, env Environment) *redis.Client {
	return redis.NewClient(RedisOptions(cfg, env))
}
