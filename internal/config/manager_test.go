package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := Default()
	cfg.General.LogDir = t.TempDir()
	cfg.Recording.RecordingPathFallback = t.TempDir()
	return cfg
}

// TestConfigManager tests the configuration manager functionality
// TestConfigManager 测试配置管理器功能
func TestConfigManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")

	m := NewManager(path)
	created, err := m.Load()
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	cfg := validConfig(t)
	cfg.OBS.Password = "secret"
	cfg.BossNames[2902] = "Ulgrax"
	require.NoError(t, m.Update(cfg))

	// A fresh manager sees the persisted values.
	// 新的管理器可以读取到已保存的值。
	m2 := NewManager(path)
	created, err = m2.Load()
	require.NoError(t, err)
	assert.False(t, created)
	loaded := m2.Get()
	assert.Equal(t, "secret", loaded.OBS.Password)
	assert.Equal(t, "Ulgrax", loaded.BossNames[2902])
	assert.Equal(t, cfg.General.LogDir, loaded.General.LogDir)
	assert.Equal(t, path, m2.Path())
}

func TestManagerGetReturnsCopy(t *testing.T) {
	m := NewManagerWith("unused.ini", validConfig(t))

	got := m.Get()
	got.OBS.Host = "changed"
	got.BossNames[1] = "changed"

	again := m.Get()
	assert.Equal(t, DefaultOBSHost, again.OBS.Host)
	assert.NotContains(t, again.BossNames, 1)
}

func TestManagerUpdateRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	m := NewManagerWith(path, validConfig(t))

	bad := m.Get()
	bad.OBS.Host = ""
	err := m.Update(bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, rrerrors.ErrConfigInvalid)
	assert.NoFileExists(t, path)
	assert.Equal(t, DefaultOBSHost, m.Get().OBS.Host)
}

func TestManagerGetBeforeLoad(t *testing.T) {
	m := NewManager("")
	assert.Equal(t, DefaultConfigPath, m.Path())
	assert.Equal(t, DefaultOBSPort, m.Get().OBS.Port)
}

func TestManagerSaveWithoutConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	assert.NoError(t, NewManager(path).Save())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
