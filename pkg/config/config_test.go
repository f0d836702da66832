package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "schedule.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "http://localhost:8000", cfg.Client.BaseURL)
	assert.Error(t, cfg.ValidateServer())
}

func TestLoad_BareAndPrefixedEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_SECRET", "bare-secret")
	t.Setenv("SHIFTBOARD_CLIENT_BASE_URL", "http://schedule.internal")
	t.Setenv("SHIFTBOARD_DATABASE_PATH", "prefixed.db")
	t.Setenv("DATA_PATH", "bare.db")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "bare-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "http://schedule.internal", cfg.Client.BaseURL)
	assert.Equal(t, "prefixed.db", cfg.Database.Path, "prefixed name wins over the bare one")
	assert.NoError(t, cfg.ValidateServer())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
client:
  base_url: http://from-file:8000
  timeout: 3s
log:
  level: debug
`), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8000", cfg.Client.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(New(), "does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Port: ""}, Auth: AuthConfig{TokenTTL: 0, BcryptCost: 2}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "token_ttl")
	assert.Contains(t, err.Error(), "bcrypt_cost")
}
