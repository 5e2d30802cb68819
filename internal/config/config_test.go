package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "HTTP_TIMEOUT", "DATABASE_PATH",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL", "REFRESH_INTERVAL",
		"OPENMETEO_RPS", "OPENMETEO_BURST", "GEOCODER_API_KEY",
		"LLM_PROVIDER", "LLM_API_KEY", "LLM_MODEL", "LLM_TIMEOUT", "LLM_FALLBACK_DELAY",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.DatabasePath)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 5.0, cfg.OpenMeteoRPS)
	assert.Equal(t, 10, cfg.OpenMeteoBurst)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLMModel)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.LLMFallbackDelay)
	assert.Empty(t, cfg.LLMAPIKey)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3001")
	t.Setenv("DATABASE_PATH", "/tmp/favorites.db")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("OPENMETEO_RPS", "2.5")
	t.Setenv("LLM_PROVIDER", " Anthropic ")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "/tmp/favorites.db", cfg.DatabasePath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 2.5, cfg.OpenMeteoRPS)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
}

func TestLoadAPIKeyFallbacks(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"explicit wins", map[string]string{"LLM_API_KEY": "llm", "GEMINI_API_KEY": "gem"}, "llm"},
		{"gemini", map[string]string{"GEMINI_API_KEY": "gem", "OPENAI_API_KEY": "oai"}, "gem"},
		{"google before anthropic", map[string]string{"GOOGLE_API_KEY": "goo", "ANTHROPIC_API_KEY": "ant"}, "goo"},
		{"openai last", map[string]string{"OPENAI_API_KEY": "oai"}, "oai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := load(viper.New())
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LLMAPIKey)
		})
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	for _, key := range []string{"HTTP_TIMEOUT", "CACHE_TTL", "REFRESH_INTERVAL", "LLM_TIMEOUT", "LLM_FALLBACK_DELAY"} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "soon")

			_, err := load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadNegativeDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_TTL", "-1m")

	_, err := load(viper.New())
	assert.Error(t, err)
}
