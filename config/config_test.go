package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Load_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_FILE", "STORAGE", "COMMIT_TIMEOUT_SECONDS", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "library_data.json", cfg.DataFile)
	assert.Equal(t, StorageFile, cfg.Storage)
	assert.Equal(t, 5*time.Second, cfg.CommitTimeout)
	assert.Empty(t, cfg.RedisAddr, "cache disabled unless configured")
}

func Test_Load_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE", StoragePostgres)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "inventory")
	t.Setenv("COMMIT_TIMEOUT_SECONDS", "2")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 2*time.Second, cfg.CommitTimeout)
	assert.Contains(t, cfg.PostgresDSN(), "host=db.internal")
	assert.Contains(t, cfg.PostgresDSN(), "dbname=inventory")
}
