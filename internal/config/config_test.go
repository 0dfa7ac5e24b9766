package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 300*time.Millisecond, cfg.PerTapTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.PerBackTimeout())
	assert.Equal(t, 30*time.Millisecond, cfg.VideoPollInterval())
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
media:
  roots: [/data/photos]
  watch: false
gates:
  per_back_timeout_ms: 800
video:
  player: /usr/local/bin/mpv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/photos"}, cfg.Media.Roots)
	assert.False(t, cfg.Media.Watch)
	assert.Equal(t, 800*time.Millisecond, cfg.PerBackTimeout())
	assert.Equal(t, 300*time.Millisecond, cfg.PerTapTimeout())
	assert.Equal(t, "/usr/local/bin/mpv", cfg.Video.Player)
	assert.Equal(t, float32(8), cfg.Viewer.MaxZoom)
	assert.Equal(t, 4, cfg.Gallery.Columns)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "media: [unclosed"},
		{"zoom below one", "viewer:\n  max_zoom: 0.5\n"},
		{"too many columns", "gallery:\n  columns: 40\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Media.Roots = []string{"/a", "/b"}
	cfg.Database.Path = "/tmp/prefs.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestResolveAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: /var/prefs.db\n"), 0600))

	cfg, err := Resolve(path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "/var/prefs.db", cfg.Database.Path)

	cfg, err = Resolve(path, "/tmp/other.db", []string{"/media"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, []string{"/media"}, cfg.Media.Roots)
}
