package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "BLOB_BACKEND", "SESSIONS_PREFIX", "GEMINI_API_KEY", "GOOGLE_API_KEY", "USE_MOCK_LLM", "STAGE_TTL", "SIGNED_URL_TTL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3", cfg.BlobBackend)
	assert.Equal(t, "sessions/", cfg.SessionsPrefix)
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.False(t, cfg.UseMockLLM)
	assert.Equal(t, 30*time.Minute, cfg.StageTTL)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BLOB_BACKEND", " Memory ")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("USE_MOCK_LLM", "true")
	t.Setenv("ORACLE_TIMEOUT", "90s")
	t.Setenv("STAGE_TTL", "not-a-duration")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "memory", cfg.BlobBackend)
	assert.Equal(t, "google-key", cfg.GeminiAPIKey)
	assert.True(t, cfg.UseMockLLM)
	assert.Equal(t, 90*time.Second, cfg.OracleTimeout)
	assert.Equal(t, 30*time.Minute, cfg.StageTTL)
}
