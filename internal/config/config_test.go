package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/analytics.db", cfg.AnalyticsDBPath)
	assert.Equal(t, "data/crm.db", cfg.CRMDBPath)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.False(t, cfg.CRMStrictRefs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FLOWLINE_ANALYTICS_DB", "/tmp/a.db")
	t.Setenv("FLOWLINE_TRANSPORT", "http")
	t.Setenv("FLOWLINE_PORT", "9090")
	t.Setenv("FLOWLINE_CRM_STRICT_REFS", "true")
	t.Setenv("FLOWLINE_READ_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/a.db", cfg.AnalyticsDBPath)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.CRMStrictRefs)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}

func TestValidateRejectsBadTransport(t *testing.T) {
	t.Setenv("FLOWLINE_TRANSPORT", "carrier-pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLOWLINE_TRANSPORT")
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Setenv("FLOWLINE_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLOWLINE_PORT")
}
