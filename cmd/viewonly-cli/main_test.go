package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viewonly/internal/media"
	"viewonly/internal/settings"
)

// setupTestEnv creates a media tree and a database path in temporary
// directories and returns the flags that point the CLI at them.
func setupTestEnv(t *testing.T) (root string, flags []string) {
	t.Helper()
	root = t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "test_prefs.db")
	configPath := filepath.Join(t.TempDir(), "missing.yaml")

	writePNG(t, filepath.Join(root, "trips", "beach.png"), 4, 3, time.Now().Add(-time.Hour))
	writePNG(t, filepath.Join(root, "family", "cake.png"), 2, 2, time.Now())
	require.NoError(t, os.WriteFile(filepath.Join(root, "family", "clip.mp4"), []byte("not really a video"), 0644))

	return root, []string{"--config", configPath, "--db", dbPath, "--root", root}
}

func writePNG(t *testing.T, path string, w, h int, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
	require.NoError(t, os.Chtimes(path, mod, mod))
}

// executeCommandC executes a fresh root command and captures its output.
func executeCommandC(args ...string) (string, error) {
	root := NewRootCmd(func(configPath, dbPath string, roots []string, logger settings.LoggerFunc) (*Env, error) {
		return Open(configPath, dbPath, roots, func(string) {})
	})
	return execute(root, args...)
}

func execute(root *cobra.Command, args ...string) (string, error) {
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	closeEnv()
	return out.String(), err
}

func TestRootHelp(t *testing.T) {
	stdout, err := executeCommandC("--help")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "viewonly-cli [command]")
}

func TestMediaList(t *testing.T) {
	root, flags := setupTestEnv(t)

	stdout, err := executeCommandC(append(flags, "media", "list")...)
	require.NoError(t, err, stdout)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], filepath.Join(root, "trips", "beach.png"), "oldest last")
	assert.Contains(t, lines[2], "4x3")

	stdout, err = executeCommandC(append(flags, "media", "list", "--videos")...)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "clip.mp4")
	assert.NotContains(t, stdout, ".png")

	stdout, err = executeCommandC(append(flags, "media", "list", "--images", "-n", "1")...)
	require.NoError(t, err, stdout)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 1)
}

func TestFoldersHideAndShow(t *testing.T) {
	root, flags := setupTestEnv(t)
	trips := filepath.Join(root, "trips")
	tripsID := media.FolderID(trips)

	stdout, err := executeCommandC(append(flags, "folders", "list")...)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, strconv.FormatInt(tripsID, 10)+"\tvisible")

	stdout, err = executeCommandC(append(flags, "folders", "hide", trips)...)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "hidden")

	stdout, err = executeCommandC(append(flags, "folders", "list")...)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, strconv.FormatInt(tripsID, 10)+"\thidden")

	stdout, err = executeCommandC(append(flags, "media", "list")...)
	require.NoError(t, err, stdout)
	assert.NotContains(t, stdout, "beach.png")

	stdout, err = executeCommandC(append(flags, "folders", "show", strconv.FormatInt(tripsID, 10))...)
	require.NoError(t, err, stdout)
	stdout, err = executeCommandC(append(flags, "media", "list")...)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "beach.png")

	_, err = executeCommandC(append(flags, "folders", "hide", filepath.Join(root, "nope"))...)
	assert.Error(t, err)
}

func TestSettingsShowAndSet(t *testing.T) {
	_, flags := setupTestEnv(t)

	stdout, err := executeCommandC(append(flags, "settings", "show")...)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "DarkTheme=system")
	assert.Contains(t, stdout, "ColorTheme=wallpaper")
	assert.Contains(t, stdout, "TapCountToOpenSettings=1")
	assert.Contains(t, stdout, "MultiGoBack=1")

	stdout, err = executeCommandC(append(flags, "settings", "set", "multigoback", "3")...)
	require.NoError(t, err, stdout)
	stdout, err = executeCommandC(append(flags, "settings", "set", "DarkTheme", "on")...)
	require.NoError(t, err, stdout)

	stdout, err = executeCommandC(append(flags, "settings", "show")...)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "MultiGoBack=3")
	assert.Contains(t, stdout, "DarkTheme=on")

	_, err = executeCommandC(append(flags, "settings", "set", "MultiGoBack", "9")...)
	assert.ErrorIs(t, err, settings.ErrOutOfRange)
	_, err = executeCommandC(append(flags, "settings", "set", "Volume", "3")...)
	assert.ErrorIs(t, err, settings.ErrUnknownKey)
}
