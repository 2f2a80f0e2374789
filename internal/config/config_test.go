package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GRADEBOOK_JWT_SECRET", "secret")
	t.Setenv("GRADEBOOK_APP_PORT", "9090")
	t.Setenv("GRADEBOOK_DATABASE_DRIVER", "Postgres")
	t.Setenv("GRADEBOOK_DASHBOARD_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, 30*time.Second, cfg.DashboardCacheTTL)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, "gradebook.grade.updated", cfg.NATSSubject)
	require.Equal(t, 10, cfg.AuthRateLimit)
	require.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoadSplitsAllowedOrigins(t *testing.T) {
	t.Setenv("GRADEBOOK_JWT_SECRET", "secret")
	t.Setenv("GRADEBOOK_CORS_ALLOW_ORIGINS", "https://grades.example.com, http://localhost:5173,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"https://grades.example.com", "http://localhost:5173"}, cfg.CORSAllowOrigins)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("GRADEBOOK_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("GRADEBOOK_JWT_SECRET", "secret")
	t.Setenv("GRADEBOOK_JWT_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddressKeepsColonPrefix(t *testing.T) {
	require.Equal(t, ":8080", Config{AppPort: ":8080"}.HTTPAddress())
}
