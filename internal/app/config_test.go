package app

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:    "0.0.0.0:8080",
		TxLog:   TxLogConfig{Driver: "memory", SQLitePath: "kart.db"},
		Payment: PaymentConfig{CreditLimit: "1000.00"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults"},
		{
			name:   "driver is normalized",
			mutate: func(c *Config) { c.TxLog.Driver = " SQLite " },
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.TxLog.Driver = "etcd" },
			wantErr: "unknown transaction log driver",
		},
		{
			name:    "postgres without URL",
			mutate:  func(c *Config) { c.TxLog.Driver = DriverPostgres },
			wantErr: "database URL is required",
		},
		{
			name: "postgres with URL",
			mutate: func(c *Config) {
				c.TxLog.Driver = DriverPostgres
				c.DatabaseURL = "postgres://localhost/kart"
			},
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.TxLog.Driver = DriverSQLite
				c.TxLog.SQLitePath = ""
			},
			wantErr: "sqlite path is required",
		},
		{
			name: "redis without address",
			mutate: func(c *Config) {
				c.TxLog.Driver = DriverRedis
				c.TxLog.RedisAddr = ""
			},
			wantErr: "redis address is required",
		},
		{
			name:    "malformed credit limit",
			mutate:  func(c *Config) { c.Payment.CreditLimit = "lots" },
			wantErr: "parse credit limit",
		},
		{
			name:    "non-positive credit limit",
			mutate:  func(c *Config) { c.Payment.CreditLimit = "0" },
			wantErr: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			err := cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPaymentConfig_Limit(t *testing.T) {
	limit, err := PaymentConfig{CreditLimit: " 2500.50 "}.Limit()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2500.5").Equal(limit))
}

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/kart")
	t.Setenv("PORT", "9090")

	cfg := validConfig()
	cfg.applyPlatformDefaults()

	assert.Equal(t, "postgres://platform/kart", cfg.DatabaseURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)
}
