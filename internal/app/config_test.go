package app

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, SequenceMemory, cfg.SequenceBackend)
	assert.Equal(t, int64(1234), cfg.BillSequenceStart)
	assert.Equal(t, 15*24*time.Hour, cfg.PaymentGracePeriod)
	assert.Equal(t, "WA", cfg.OrderPrefix)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
	assert.Equal(t, 2024, cfg.OrderEpoch.Year())
	assert.Equal(t, cfg.Location, cfg.OrderEpoch.Location())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	for _, tc := range []struct {
		name, key, value string
	}{
		{"backend", "SEQUENCE_BACKEND", "etcd"},
		{"timezone", "SHOP_TIMEZONE", "Mars/Olympus"},
		{"epoch", "ORDER_EPOCH", "01-01-2024"},
		{"grace", "PAYMENT_GRACE_PERIOD", "0s"},
		{"prefix", "ORDER_PREFIX", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestInTestMode(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, &Config{AppEnv: "test", LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown", "bill", "1235")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"env":"test"`)
	assert.Contains(t, out, `"bill":"1235"`)
}
