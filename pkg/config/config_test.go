package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, time.Duration(0), cfg.Admissions.DraftTTL)
	assert.Equal(t, 10*time.Minute, cfg.Admissions.SessionPriceCacheTTL)
	assert.Equal(t, 10, cfg.Admissions.CredentialPasswordLength)
}

func TestLoadFromEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("SESSION_PRICE_CACHE_TTL", "90s")
	t.Setenv("CREDENTIAL_PASSWORD_LENGTH", "4")
	t.Setenv("ALLOWED_ORIGINS", "https://desk.example.com, ,https://portal.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Admissions.SessionPriceCacheTTL)
	assert.Equal(t, 10, cfg.Admissions.CredentialPasswordLength)
	assert.Equal(t, []string{"https://desk.example.com", "https://portal.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadDesk(t *testing.T) {
	inTempDir(t)
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("DESK_HTTP_TIMEOUT", "bogus")

	cfg, err := LoadDesk()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}

func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
