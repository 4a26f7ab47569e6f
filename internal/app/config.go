package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Transaction log drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds the complete application configuration, loadable from
// environment variables (KART_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (KART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	TxLog       TxLogConfig
	Payment     PaymentConfig
	Shipping    ShippingConfig
	RateLimit   RateLimitConfig
	Graceful    GracefulConfig
}

// TxLogConfig selects where checkout transactions are recorded.
type TxLogConfig struct {
	Driver     string        `default:"memory" usage:"Transaction log driver: memory, sqlite, postgres or redis"`
	SQLitePath string        `default:"kart.db" usage:"SQLite database file for the sqlite driver" flag:"sqlite-path"`
	RedisAddr  string        `default:"localhost:6379" usage:"Redis address for the redis driver" flag:"redis-addr"`
	RedisTTL   time.Duration `default:"0s" usage:"Expire order history this long after its last write, 0 keeps it" flag:"redis-ttl"`
}

// PaymentConfig tunes payment strategies.
type PaymentConfig struct {
	CreditLimit string `default:"1000.00" usage:"Credit approves only totals strictly below this value" flag:"credit-limit"`
}

// ShippingConfig tunes shipping strategy resolution.
type ShippingConfig struct {
	Lenient bool `default:"false" usage:"Price unknown shipping types as Teleport instead of failing"`
}

// RateLimitConfig controls the per-client limiter on /api.
type RateLimitConfig struct {
	RPS   float64 `default:"0" usage:"Requests per second per client, 0 disables"`
	Burst int     `default:"20" usage:"Burst size per client"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "KART",
		Files:     []string{"config.yaml", "/etc/kart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	c.TxLog.Driver = strings.ToLower(strings.TrimSpace(c.TxLog.Driver))
	switch c.TxLog.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.TxLog.SQLitePath == "" {
			return errors.New("sqlite path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set KART_DATABASE_URL or DATABASE_URL")
		}
	case DriverRedis:
		if c.TxLog.RedisAddr == "" {
			return errors.New("redis address is required for the redis driver")
		}
	default:
		return errors.Errorf("unknown transaction log driver %q", c.TxLog.Driver)
	}

	limit, err := c.Payment.Limit()
	if err != nil {
		return err
	}
	if !limit.IsPositive() {
		return errors.Errorf("credit limit must be positive, got %s", limit)
	}
	return nil
}

// Limit parses the configured credit limit.
func (p PaymentConfig) Limit() (decimal.Decimal, error) {
	limit, err := decimal.NewFromString(strings.TrimSpace(p.CreditLimit))
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse credit limit %q", p.CreditLimit)
	}
	return limit, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's KART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
