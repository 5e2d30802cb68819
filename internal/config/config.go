package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string

	// HTTPTimeout bounds each outbound Open-Meteo request.
	HTTPTimeout time.Duration

	// DatabasePath selects the SQLite favorites store; empty keeps favorites in memory.
	DatabasePath string

	// Redis backs the extended-bundle cache when RedisAddr is set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// RefreshInterval controls how often favorites are re-fetched into the cache (0 disables).
	RefreshInterval time.Duration

	OpenMeteoRPS   float64
	OpenMeteoBurst int

	// GeocoderAPIKey switches location search to the Google Geocoding API.
	GeocoderAPIKey string

	LLMProvider      string
	LLMAPIKey        string
	LLMModel         string
	LLMTimeout       time.Duration
	LLMFallbackDelay time.Duration
}

// apiKeyFallbacks are consulted in order when LLM_API_KEY is empty.
var apiKeyFallbacks = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY"}

// Load reads configuration from .env and the environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Info("no usable .env file")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &AppConfig{
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		DatabasePath:   strings.TrimSpace(v.GetString("DATABASE_PATH")),
		RedisAddr:      strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		OpenMeteoRPS:   v.GetFloat64("OPENMETEO_RPS"),
		OpenMeteoBurst: v.GetInt("OPENMETEO_BURST"),
		GeocoderAPIKey: v.GetString("GEOCODER_API_KEY"),
		LLMProvider:    strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		LLMAPIKey:      v.GetString("LLM_API_KEY"),
		LLMModel:       v.GetString("LLM_MODEL"),
	}

	for _, key := range apiKeyFallbacks {
		if cfg.LLMAPIKey != "" {
			break
		}
		cfg.LLMAPIKey = v.GetString(key)
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"CACHE_TTL", &cfg.CacheTTL},
		{"REFRESH_INTERVAL", &cfg.RefreshInterval},
		{"LLM_TIMEOUT", &cfg.LLMTimeout},
		{"LLM_FALLBACK_DELAY", &cfg.LLMFallbackDelay},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", d.key)
		}
		*d.dst = parsed
	}

	if cfg.OpenMeteoRPS < 0 {
		return nil, fmt.Errorf("invalid OPENMETEO_RPS: must not be negative")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("DATABASE_PATH", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "30m")
	v.SetDefault("REFRESH_INTERVAL", "30m")
	v.SetDefault("OPENMETEO_RPS", 5)
	v.SetDefault("OPENMETEO_BURST", 10)
	v.SetDefault("GEOCODER_API_KEY", "")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_MODEL", "gemini-2.0-flash")
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("LLM_FALLBACK_DELAY", "500ms")
	for _, key := range apiKeyFallbacks {
		v.SetDefault(key, "")
	}
}
