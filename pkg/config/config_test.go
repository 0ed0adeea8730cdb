package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "memory", cfg.Store.Driver)
	require.True(t, cfg.Store.Seed)
	require.Equal(t, "gestor", cfg.Manager.Username)
	require.Equal(t, "1234", cfg.Manager.Password)
	require.Equal(t, 30*time.Second, cfg.Reputation.Timeout)
	require.Equal(t, 1, cfg.Reputation.MaxAttempts)
	require.Equal(t, 30*time.Minute, cfg.Reputation.SessionTTL)
	require.Equal(t, 10000, cfg.Reputation.MaxSessions)
	require.False(t, cfg.Redis.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("REPUTATION_TIMEOUT", "5s")
	t.Setenv("REPUTATION_MAX_ATTEMPTS", "0")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "postgres", cfg.Store.Driver)
	require.Equal(t, logger.Silent, cfg.DB.LogLevel)
	require.Equal(t, 5*time.Second, cfg.Reputation.Timeout)
	require.Equal(t, 1, cfg.Reputation.MaxAttempts)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, 6380, cfg.Redis.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	require.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", db.GetDSN())
}
