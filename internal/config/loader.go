package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads the configuration from file and environment variables.
// Defaults mirror the production limit table so the gateway can start
// with nothing but a Vault address.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Load from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/ai-gateway/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Load from environment variables
	v.SetEnvPrefix("AI_GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("vault.address", "http://127.0.0.1:8200")
	v.SetDefault("vault.mount_path", "secret")

	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("audit.kafka_enabled", false)
	v.SetDefault("audit.kafka_topic", "gateway.audit")
	v.SetDefault("audit.archive_enabled", false)
	v.SetDefault("audit.archive_driver", "sqlite")

	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.cooldown_seconds", 300)

	// Per-service admission thresholds
	v.SetDefault("services.GEMINI.requests_per_minute", 60)
	v.SetDefault("services.GEMINI.requests_per_hour", 1000)
	v.SetDefault("services.GEMINI.cost_limit_per_day", 100.0)
	v.SetDefault("services.TRANSLATE.requests_per_minute", 100)
	v.SetDefault("services.TRANSLATE.requests_per_hour", 2000)
	v.SetDefault("services.TRANSLATE.cost_limit_per_day", 50.0)
	v.SetDefault("services.SPEECH.requests_per_minute", 30)
	v.SetDefault("services.SPEECH.requests_per_hour", 500)
	v.SetDefault("services.SPEECH.cost_limit_per_day", 75.0)

	// Cost estimation rates
	v.SetDefault("cost_rates.gemini_text", 0.01)
	v.SetDefault("cost_rates.gemini_audio", 0.05)
	v.SetDefault("cost_rates.gemini_image", 0.03)
	v.SetDefault("cost_rates.translate_per_char", 0.00002) // $20 per million characters
	v.SetDefault("cost_rates.speech_per_minute", 0.024)
	v.SetDefault("cost_rates.default_small_cost", 0.01)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "ai-gateway")
}
