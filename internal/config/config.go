package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port     string         `yaml:"port" toml:"port" validate:"required,numeric"`
	APIKey   string         `yaml:"api_key" toml:"api_key"`
	Registry RegistryConfig `yaml:"registry" toml:"registry"`
	Plot     PlotConfig     `yaml:"plot" toml:"plot"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

type RegistryConfig struct {
	URL string `yaml:"url" toml:"url" validate:"required,url"`
	// TimeoutSeconds bounds one HTTP round trip. Zero leaves it to the server.
	TimeoutSeconds int  `yaml:"timeout_seconds" toml:"timeout_seconds" validate:"gte=0"`
	Cache          bool `yaml:"cache" toml:"cache"`
}

func (r RegistryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

type PlotConfig struct {
	Width  float64 `yaml:"width" toml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" toml:"height" validate:"gt=0"`
	Dir    string  `yaml:"dir" toml:"dir" validate:"required"`
}

type LogConfig struct {
	File  string `yaml:"file" toml:"file"`
	Level string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
}

func Default() *Config {
	return &Config{
		Port:     "8080",
		Registry: RegistryConfig{URL: "http://localhost:54321"},
		Plot:     PlotConfig{Width: 10, Height: 10, Dir: "plots"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load applies, in order: defaults, the optional file at path (.yaml, .yml or
// .toml), then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, cfg)
	case ".toml":
		err = toml.Unmarshal(raw, cfg)
	default:
		return fmt.Errorf("config: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.APIKey = getEnv("API_KEY", cfg.APIKey)
	cfg.Registry.URL = getEnv("REGISTRY_URL", cfg.Registry.URL)
	if v, err := strconv.Atoi(os.Getenv("REGISTRY_TIMEOUT_SECONDS")); err == nil {
		cfg.Registry.TimeoutSeconds = v
	}
	if v, err := strconv.ParseBool(os.Getenv("REGISTRY_CACHE")); err == nil {
		cfg.Registry.Cache = v
	}
	cfg.Plot.Dir = getEnv("PLOT_DIR", cfg.Plot.Dir)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
