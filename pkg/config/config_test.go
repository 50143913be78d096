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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, SourceDir, cfg.Source.Kind)
	assert.Equal(t, "english", cfg.Index.StemLanguage)
	assert.Equal(t, 10, cfg.Search.ShowMax)
	assert.False(t, cfg.Index.Positional)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
index:
  multifield: true
  positional: true
  stemming: true
  permuterm: true
  stemLanguage: spanish
search:
  useStemming: true
  showMax: 25
source:
  kind: dir
  dir: /data/news
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Index.Multifield)
	assert.True(t, cfg.Index.Positional)
	assert.Equal(t, "spanish", cfg.Index.StemLanguage)
	assert.True(t, cfg.Search.UseStemming)
	assert.Equal(t, 25, cfg.Search.ShowMax)
	assert.Equal(t, "/data/news", cfg.Source.Dir)
	assert.Equal(t, 5432, cfg.Postgres.Port, "unset sections keep defaults")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NR_SOURCE_DIR", "/tmp/corpus")
	t.Setenv("NR_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("NR_SERVER_PORT", "9999")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/corpus", cfg.Source.Dir)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Search.UseStemming = true
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Source.Kind = "ftp"
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "news", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=news sslmode=disable", p.DSN())
}

func TestLoadDevelopmentConfig(t *testing.T) {
	cfg, err := Load("../../configs/development.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.Index.Positional)
	assert.True(t, cfg.Search.UseRanking)
	assert.Equal(t, SourceDir, cfg.Source.Kind)
	assert.Equal(t, 5*time.Minute, cfg.Postgres.ConnMaxLifetime)
}
