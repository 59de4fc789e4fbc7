package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "8080"
store_driver: memory
quiz_cache_ttl: 2m
default_time_limit: 45
db:
  host: db.internal
  name: courses
redis:
  addr: redis:6379
  db: 2
`), 0o600))

	cfg := Defaults()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 2*time.Minute, cfg.QuizCacheTTL)
	assert.Equal(t, 45, cfg.DefaultTimeLimit)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "require", cfg.DB.SSLMode, "untouched default")
	assert.Equal(t, 2, cfg.Redis.DB)

	t.Setenv("PORT", "9090")
	t.Setenv("QUIZ_CACHE_TTL", "30s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	ApplyEnv(&cfg)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.QuizCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	cfg := Defaults()
	assert.Error(t, LoadFile(path, &cfg))
}

func TestApplyEnvIgnoresBadValues(t *testing.T) {
	cfg := Defaults()
	t.Setenv("QUIZ_CACHE_TTL", "soon")
	t.Setenv("DEFAULT_TIME_LIMIT", "-5")
	ApplyEnv(&cfg)

	assert.Equal(t, 10*time.Minute, cfg.QuizCacheTTL)
	assert.Equal(t, 30, cfg.DefaultTimeLimit)
}
