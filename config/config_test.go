package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_MODE", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("FE_ORIGINS", "http://a.test;http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AuthModeFirebase, cfg.Auth.Mode)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.Equal(t, uint(3), cfg.Fanout.MaxTries)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.FEOrigins)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", AuthModeJWT)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("FANOUT_MAX_TRIES", "5")
	t.Setenv("STORE", StoreMemory)
	t.Setenv("RATE_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, uint(5), cfg.Fanout.MaxTries)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("jwt without secret", func(t *testing.T) {
		t.Setenv("AUTH_MODE", AuthModeJWT)
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "forever")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("STORE", "sqlite")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	db := DBConfig{User: "u", Pass: "p", Host: "h:3306", Name: "n", TLS: true}
	assert.Equal(t, "u:p@tcp(h:3306)/n?tls=true&parseTime=true&multiStatements=true", db.DSN())
}
