package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "")
	t.Setenv("RETRY_BASE_DELAY", "")
	t.Setenv("LLM_MODEL", "")

	cfg := Load()

	assert.Equal(t, 5, cfg.PipelineWorkers)
	assert.Equal(t, 10000, cfg.SummaryMaxChars)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 10*time.Second, cfg.RetryMaxDelay)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLMModel)
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("RETRY_BASE_DELAY", "not-a-duration")
	t.Setenv("SUMMARY_MAX_CHARS", "-3")
	t.Setenv("FRONTEND_URL", "https://app.example.com")

	cfg := Load()

	assert.Equal(t, 8, cfg.PipelineWorkers)
	assert.Equal(t, 2*time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 10000, cfg.SummaryMaxChars)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
}
