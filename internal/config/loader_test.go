package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Breaker.FailureThreshold)
	assert.Equal(t, 300, cfg.Breaker.CooldownSeconds)

	gemini, ok := cfg.LimitsFor(constants.ServiceGemini)
	require.True(t, ok)
	assert.Equal(t, 60, gemini.RequestsPerMinute)
	assert.Equal(t, 1000, gemini.RequestsPerHour)
	assert.InDelta(t, 100.0, gemini.CostLimitPerDay, 1e-9)

	speech, ok := cfg.LimitsFor(constants.ServiceSpeech)
	require.True(t, ok)
	assert.Equal(t, 30, speech.RequestsPerMinute)
	assert.InDelta(t, 75.0, speech.CostLimitPerDay, 1e-9)

	assert.InDelta(t, 0.00002, cfg.CostRates.TranslatePerChar, 1e-12)
	assert.InDelta(t, 0.024, cfg.CostRates.SpeechPerMinute, 1e-9)
}

func TestLimitsForUnknownService(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	_, ok := cfg.LimitsFor(constants.ServiceTag("NOPE"))
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Breaker: BreakerConfig{FailureThreshold: 5, CooldownSeconds: 300},
			Services: map[string]ServiceLimits{
				"gemini": {RequestsPerMinute: 60, RequestsPerHour: 1000, CostLimitPerDay: 100},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad breaker threshold", func(t *testing.T) {
		cfg := base()
		cfg.Breaker.FailureThreshold = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad service limits", func(t *testing.T) {
		cfg := base()
		cfg.Services["gemini"] = ServiceLimits{RequestsPerMinute: 0, RequestsPerHour: 1000, CostLimitPerDay: 100}
		assert.Error(t, cfg.Validate())
	})

	t.Run("archive without dsn", func(t *testing.T) {
		cfg := base()
		cfg.Audit.ArchiveEnabled = true
		cfg.Audit.ArchiveDriver = "sqlite"
		assert.Error(t, cfg.Validate())
	})

	t.Run("kafka without brokers", func(t *testing.T) {
		cfg := base()
		cfg.Audit.KafkaEnabled = true
		assert.Error(t, cfg.Validate())
	})
}
