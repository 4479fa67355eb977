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

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, LedgerSQLite, cfg.Ledger)
	assert.Equal(t, "expense_splitter", cfg.SuiModule)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "sui")
	t.Setenv("SUI_RPC_URL", "http://127.0.0.1:9000")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("LEDGER_FETCH_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, LedgerSui, cfg.Ledger)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.SuiRPCURL)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown ledger":   {"LEDGER_BACKEND": "postgres"},
		"bad log level":    {"LOG_LEVEL": "verbose"},
		"short jwt secret": {"JWT_SECRET": "short"},
		"bad rpc url":      {"LEDGER_BACKEND": "sui", "SUI_RPC_URL": "not a url"},
		"bad duration":     {"JWT_TTL": "forever"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
