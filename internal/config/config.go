package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/EcommerceGo/storefront/pkg/config"
)

// Session store backends.
const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config holds all configuration for the storefront process.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// UI adapter
	HTTPPort        int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
	ShutdownTimeout time.Duration `env:"STOREFRONT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"STOREFRONT_CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	RateLimitRPS    float64       `env:"STOREFRONT_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst  int           `env:"STOREFRONT_RATE_LIMIT_BURST" envDefault:"40"`

	// Remote API
	APIBaseURL        string        `env:"STOREFRONT_API_BASE_URL" envDefault:"https://api-ecommerce-shoe.onrender.com/api"`
	APITimeout        time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"15s"`
	APICircuitBreaker bool          `env:"STOREFRONT_API_CIRCUIT_BREAKER" envDefault:"true"`

	// Store behaviour
	ShippingFee  float64 `env:"STOREFRONT_SHIPPING_FEE" envDefault:"30000"`
	RelatedLimit int     `env:"STOREFRONT_RELATED_LIMIT" envDefault:"4"`

	// Session persistence
	SessionStore string `env:"STOREFRONT_SESSION_STORE" envDefault:"file"`
	SessionFile  string `env:"STOREFRONT_SESSION_FILE" envDefault:".storefront/session.json"`
	SessionKey   string `env:"STOREFRONT_SESSION_KEY" envDefault:"storefront:auth"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Session events forwarded to Kafka; empty disables forwarding.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints, mounted only when enabled.
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`

	// Slow session-store operations are logged above this threshold.
	SlowStoreThresholdMs int `env:"LOG_SLOW_STORE_MS" envDefault:"200"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("STOREFRONT_API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("STOREFRONT_API_TIMEOUT must be positive")
	}

	if c.ShippingFee <= 0 {
		return fmt.Errorf("STOREFRONT_SHIPPING_FEE must be greater than 0, got %v", c.ShippingFee)
	}
	if c.RelatedLimit < 0 {
		return fmt.Errorf("STOREFRONT_RELATED_LIMIT must not be negative")
	}

	switch c.SessionStore {
	case SessionStoreFile:
		if c.SessionFile == "" {
			return fmt.Errorf("STOREFRONT_SESSION_FILE is required for the file session store")
		}
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis session store")
		}
	case SessionStoreMemory:
	default:
		return fmt.Errorf("unknown STOREFRONT_SESSION_STORE %q (want file, redis or memory)", c.SessionStore)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit must allow at least one request")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// KafkaEnabled reports whether session events are forwarded to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
