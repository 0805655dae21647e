package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "PORT", "JWT_TTL", "CACHE_TTL", "FREE_PLAN_LIMIT", "OBJECT_STORE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 25, cfg.FreePlanLimit)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowOrigins)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_TTL", "3600")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("FREE_PLAN_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 90*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, 25, cfg.FreePlanLimit)
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9999\nOPENAI_MODEL=from-file\n"), 0o600))
	t.Setenv("PORT", "7000")
	t.Setenv("OPENAI_MODEL", "")
	os.Unsetenv("OPENAI_MODEL")

	cfg := Load()

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "from-file", cfg.OpenAIModel)
}

func TestValidateProductionRequirements(t *testing.T) {
	cfg := Config{Env: "production", ObjectStoreType: "s3"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "S3_BUCKET")

	dev := Config{Env: "development"}
	assert.NoError(t, dev.Validate())
}
