package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.BindHost)
	assert.Equal(t, 8180, cfg.Port)
	assert.Equal(t, "0.0.0.0:8180", cfg.Addr())
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(0), cfg.DevUserID)
	assert.Equal(t, "http://localhost:8180/", cfg.DomainRootURL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TM_BIND_HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("TM_SESSION_TTL_SECONDS", "60")
	t.Setenv("TM_DEV_USER_ID", "1")

	cfg := Load()

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(1), cfg.DevUserID)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("TM_DEV_USER_ID", "xyz")

	cfg := Load()

	assert.Equal(t, 8180, cfg.Port)
	assert.Equal(t, int64(0), cfg.DevUserID)
}
