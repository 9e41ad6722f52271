package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 12.0, cfg.Pricing.DefaultCoverage)
	assert.Equal(t, 2, cfg.Pricing.DefaultCoats)
	assert.InDelta(t, 0.10, cfg.Pricing.DefaultWaste, 1e-9)
	assert.Equal(t, []float64{0.9, 3.6, 18}, cfg.Pricing.PackageSizes)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Empty(t, cfg.Telegram.Token)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "10,20")
	t.Setenv("PRICING_PACKAGE_SIZES", "1,5")
	t.Setenv("HTTP_RATE_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, []int64{10, 20}, cfg.Admin.IDs)
	assert.Equal(t, []float64{1, 5}, cfg.Pricing.PackageSizes)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RateWindow)
	assert.True(t, cfg.IsAdmin(20))
	assert.False(t, cfg.IsAdmin(30))
	assert.Contains(t, cfg.Database.DSN(), "host=db.internal port=6543")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero coverage", "PRICING_DEFAULT_COVERAGE", "0"},
		{"zero coats", "PRICING_DEFAULT_COATS", "0"},
		{"negative waste", "PRICING_DEFAULT_WASTE", "-0.1"},
		{"negative package", "PRICING_PACKAGE_SIZES", "3.6,-1"},
		{"bot without admins", "TELEGRAM_TOKEN", "123:abc"},
		{"bad duration", "HTTP_READ_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
