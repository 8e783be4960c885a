package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, c.DefaultTargetScore)
	assert.Equal(t, "burako.games", c.Nats.SubjectPrefix)
	assert.Equal(t, int64(10000), c.DirectoryCache.MaxEntries)
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burako.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_target_score": 1500, "redis": {"addr": "cache:6379"}}`), 0o600))
	t.Setenv("BURAKO_REDIS_ADDR", "override:6380")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1500, c.DefaultTargetScore)
	assert.Equal(t, "override:6380", c.Redis.Addr)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burako.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_target_score: 2000\nlog_level: debug\n"), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2000, c.DefaultTargetScore)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadRejectsBadTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burako.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_target_score": -5}`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
