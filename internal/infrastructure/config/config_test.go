package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"RENTORA_APP_NAME":          os.Getenv("RENTORA_APP_NAME"),
		"RENTORA_APP_ENV":           os.Getenv("RENTORA_APP_ENV"),
		"RENTORA_APP_PORT":          os.Getenv("RENTORA_APP_PORT"),
		"RENTORA_DATABASE_HOST":     os.Getenv("RENTORA_DATABASE_HOST"),
		"RENTORA_DATABASE_PORT":     os.Getenv("RENTORA_DATABASE_PORT"),
		"RENTORA_DATABASE_USER":     os.Getenv("RENTORA_DATABASE_USER"),
		"RENTORA_DATABASE_PASSWORD": os.Getenv("RENTORA_DATABASE_PASSWORD"),
		"RENTORA_DATABASE_DBNAME":   os.Getenv("RENTORA_DATABASE_DBNAME"),
		"RENTORA_DATABASE_SSLMODE":  os.Getenv("RENTORA_DATABASE_SSLMODE"),
		"RENTORA_LOG_LEVEL":         os.Getenv("RENTORA_LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "rentora-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "rentora", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("loads values from environment variables with RENTORA prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTORA_APP_PORT", "9000")
		os.Setenv("RENTORA_DATABASE_HOST", "testdb.local")
		os.Setenv("RENTORA_DATABASE_USER", "testuser")
		os.Setenv("RENTORA_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("RENTORA_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")

		os.Setenv("RENTORA_DATABASE_PASSWORD", "secret")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")

		os.Setenv("RENTORA_DATABASE_SSLMODE", "require")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "rentora",
		Password: "p@ss/word",
		DBName:   "rentora",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Password must be escaped, not embedded raw
	assert.NotContains(t, dsn, "p@ss/word")
}
