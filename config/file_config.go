package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// configDirEnv overrides where per-environment files are looked up.
const configDirEnv = "CONFIG_DIR"

// FileForEnv returns the per-environment config file path, e.g.
// config/config.production.yaml. The file must exist.
func FileForEnv(env Environment) (string, error) {
	switch env {
	case EnvDevelopment, EnvProduction:
	default:
		return "", fmt.Errorf("unknown environment: %s", env)
	}

	dir := os.Getenv(configDirEnv)
	if dir == "" {
		dir = "config"
	}
	path := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("configuration file not found: %s", path)
	}
	return path, nil
}

// LoadConfigFromFile reads a YAML config file. Environment variables still
// override values from the file.
func LoadConfigFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from %s: %w", path, err)
	}
	return load(v)
}
