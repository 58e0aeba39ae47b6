package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
database:
  driver: sqlite
  path: test.db
jwt:
  secret: s3cret
ai:
  model: test-model
  max_tokens: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "test-model", cfg.AI.Model)
	assert.Equal(t, 100, cfg.AI.MaxTokens)

	// 未设置的字段使用默认值
	assert.Equal(t, 0.7, cfg.AI.Temperature)
	assert.Equal(t, 8, cfg.AI.HistoryWindow)
	assert.Equal(t, 5, cfg.AI.RetrievalWindow)
	assert.False(t, cfg.Retrieval.HistoryTopUp)
	assert.Equal(t, "memory", cfg.Queue.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 10*time.Minute, cfg.Storage.URLCacheTTL)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
`)
	t.Setenv("COFOUNDER_JWT_SECRET", "from-env")
	t.Setenv("COFOUNDER_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
`)
	_, err := Load(path)
	assert.EqualError(t, err, "jwt secret is required")
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database:  Database{Driver: "sqlite"},
			JWT:       JWT{Secret: "x"},
			Queue:     Queue{Driver: "memory"},
			Storage:   Storage{Driver: "local"},
			Retrieval: Retrieval{ContextMode: "keyword"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Queue.Driver = "kafka"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Driver = "s3"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Retrieval.ContextMode = "vector"
	assert.Error(t, cfg.Validate())
}
