package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var configKeys = []string{
	"PORT", "TRACKER_PAGE", "ALLOWED_ORIGINS", "HTTP_TIMEOUT_SECONDS", "TRACKER_LOCALE",
	"TRACKER_TIMEZONE", "COINGECKO_BASE_URL", "COINGECKO_API_KEY", "COINGECKO_API_PRO",
	"DB_DRIVER", "DB_DSN", "ADMIN_JWT_SECRET", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := FromEnv()
		require.NoError(t, err)
		require.Equal(t, "8080", cfg.Port)
		require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
		require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
		require.Equal(t, language.AmericanEnglish, cfg.Language())
		require.False(t, cfg.StoreEnabled())
		require.False(t, cfg.Provider.Pro)
	})

	t.Run("values from environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "9000")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
		t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
		t.Setenv("TRACKER_TIMEZONE", "UTC")
		t.Setenv("COINGECKO_API_KEY", "key")
		t.Setenv("COINGECKO_API_PRO", "1")
		t.Setenv("DB_DRIVER", "sqlite3")
		t.Setenv("DB_DSN", "data/prices.db")

		cfg, err := FromEnv()
		require.NoError(t, err)
		require.Equal(t, "9000", cfg.Port)
		require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
		require.Equal(t, 3*time.Second, cfg.HTTPTimeout)
		require.Equal(t, time.UTC, cfg.Location())
		require.Equal(t, "key", cfg.Provider.APIKey)
		require.True(t, cfg.Provider.Pro)
		require.True(t, cfg.StoreEnabled())
	})

	t.Run("invalid values", func(t *testing.T) {
		cases := map[string]string{
			"HTTP_TIMEOUT_SECONDS": "soon",
			"TRACKER_TIMEZONE":     "Mars/Olympus",
			"DB_DRIVER":            "mysql",
			"LOG_LEVEL":            "loud",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				clearEnv(t)
				t.Setenv(key, value)

				_, err := FromEnv()
				require.Error(t, err)
			})
		}
	})

	t.Run("database driver requires dsn", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "postgres")

		_, err := FromEnv()
		require.Error(t, err)
	})
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7070\n"), 0o600))

	// godotenv no pisa variables ya definidas, así que se borra la que dejó clearEnv
	require.NoError(t, os.Unsetenv("PORT"))
	LoadEnvFile(path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Port)

	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}
