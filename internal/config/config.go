package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/delang-zeta/ai-gateway/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig                 `mapstructure:"server"`
	Vault     VaultConfig                  `mapstructure:"vault"`
	Redis     RedisConfig                  `mapstructure:"redis"`
	Audit     AuditConfig                  `mapstructure:"audit"`
	Breaker   BreakerConfig                `mapstructure:"breaker"`
	Services  map[string]ServiceLimits     `mapstructure:"services"`
	CostRates CostRates                    `mapstructure:"cost_rates"`
	Log       LogConfig                    `mapstructure:"log"`
	Tracing   TracingConfig                `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout   int      `mapstructure:"write_timeout"` // in seconds
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type VaultConfig struct {
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	MountPath string `mapstructure:"mount_path"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuditConfig controls the optional audit fan-out and archive backends.
// The in-memory sink is always on; Kafka and the archive are additive.
type AuditConfig struct {
	KafkaEnabled   bool     `mapstructure:"kafka_enabled"`
	KafkaBrokers   []string `mapstructure:"kafka_brokers"`
	KafkaTopic     string   `mapstructure:"kafka_topic"`
	ArchiveEnabled bool     `mapstructure:"archive_enabled"`
	ArchiveDriver  string   `mapstructure:"archive_driver"` // "sqlite" or "postgres"
	ArchiveDSN     string   `mapstructure:"archive_dsn"`
}

// BreakerConfig configures the circuit breaker guarding the chain integration.
type BreakerConfig struct {
	FailureThreshold int `mapstructure:"failure_threshold"`
	CooldownSeconds  int `mapstructure:"cooldown_seconds"`
}

// Cooldown returns the configured cooldown as a duration.
func (c *BreakerConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// ServiceLimits holds the per-service admission thresholds,
// read once at startup and never re-derived at runtime.
type ServiceLimits struct {
	RequestsPerMinute int     `mapstructure:"requests_per_minute"`
	RequestsPerHour   int     `mapstructure:"requests_per_hour"`
	CostLimitPerDay   float64 `mapstructure:"cost_limit_per_day"`
}

// CostRates holds the per-service cost estimation rates.
type CostRates struct {
	GeminiText        float64 `mapstructure:"gemini_text"`
	GeminiAudio       float64 `mapstructure:"gemini_audio"`
	GeminiImage       float64 `mapstructure:"gemini_image"`
	TranslatePerChar  float64 `mapstructure:"translate_per_char"`
	SpeechPerMinute   float64 `mapstructure:"speech_per_minute"`
	DefaultSmallCost  float64 `mapstructure:"default_small_cost"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

// LimitsFor returns the configured limits for a service tag. The lookup
// is case-insensitive because viper lowercases configuration keys.
func (c *Config) LimitsFor(service constants.ServiceTag) (ServiceLimits, bool) {
	if limits, ok := c.Services[string(service)]; ok {
		return limits, true
	}
	for name, limits := range c.Services {
		if strings.EqualFold(name, string(service)) {
			return limits, true
		}
	}
	return ServiceLimits{}, false
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Breaker.FailureThreshold <= 0 {
		return fmt.Errorf("breaker failure threshold must be positive, got %d", c.Breaker.FailureThreshold)
	}
	if c.Breaker.CooldownSeconds <= 0 {
		return fmt.Errorf("breaker cooldown must be positive, got %ds", c.Breaker.CooldownSeconds)
	}
	for name, limits := range c.Services {
		if limits.RequestsPerMinute <= 0 || limits.RequestsPerHour <= 0 {
			return fmt.Errorf("service %q has non-positive rate limits", name)
		}
		if limits.CostLimitPerDay <= 0 {
			return fmt.Errorf("service %q has non-positive daily cost limit", name)
		}
	}
	if c.Audit.ArchiveEnabled {
		if c.Audit.ArchiveDriver != "sqlite" && c.Audit.ArchiveDriver != "postgres" {
			return fmt.Errorf("unsupported audit archive driver: %q", c.Audit.ArchiveDriver)
		}
		if c.Audit.ArchiveDSN == "" {
			return fmt.Errorf("audit archive enabled but no DSN configured")
		}
	}
	if c.Audit.KafkaEnabled && len(c.Audit.KafkaBrokers) == 0 {
		return fmt.Errorf("audit kafka enabled but no brokers configured")
	}
	return nil
}
