package settings

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "prefs", "test_prefs.db")
	var logs []string
	store, err := OpenStore(dbPath, func(msg string) { logs = append(logs, msg) })
	require.NoError(t, err, "failed to open test store at %s", dbPath)
	t.Cleanup(func() { store.Close() })
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0], dbPath)
	return store
}

func setupTestRepository(t *testing.T) (*Repository, *Store) {
	t.Helper()
	store := setupTestStore(t)
	repo, err := NewRepository(store)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	return repo, store
}

func TestStoreGetSet(t *testing.T) {
	store := setupTestStore(t)

	var n int
	found, err := store.Get("missing", &n)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set("answer", 42))
	found, err = store.Get("answer", &n)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 42, n)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"answer"}, keys)

	require.NoError(t, store.Delete("answer"))
	found, err = store.Get("answer", &n)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreUpdateIDSet(t *testing.T) {
	store := setupTestStore(t)
	var changedKeys []string
	store.AddChangeListener(func(key string) { changedKeys = append(changedKeys, key) })

	for _, id := range []int64{30, 10, 20} {
		changed, err := store.UpdateIDSet("set", id, true)
		require.NoError(t, err)
		assert.True(t, changed)
	}
	changed, err := store.UpdateIDSet("set", 10, true)
	require.NoError(t, err)
	assert.False(t, changed, "adding an existing id")

	var ids []int64
	_, err = store.Get("set", &ids)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, ids)

	changed, err = store.UpdateIDSet("set", 99, false)
	require.NoError(t, err)
	assert.False(t, changed)

	for _, id := range []int64{10, 20, 30} {
		_, err := store.UpdateIDSet("set", id, false)
		require.NoError(t, err)
	}
	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys, "empty set deletes the key")
	assert.Len(t, changedKeys, 6)
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "persist.db")
	store, err := OpenStore(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyMultiGoBack, 3))
	require.NoError(t, store.Close())

	store, err = OpenStore(dbPath, nil)
	require.NoError(t, err)
	defer store.Close()
	repo, err := NewRepository(store)
	require.NoError(t, err)
	defer repo.Close()
	assert.Equal(t, 3, repo.Settings().MultiGoBack)
}

func TestRepositoryDefaults(t *testing.T) {
	repo, _ := setupTestRepository(t)
	s := repo.Settings()
	assert.Equal(t, Defaults(), s)
	assert.Equal(t, DarkThemeFollowSystem, s.DarkTheme)
	assert.Equal(t, ColorThemeWallpaper, s.ColorTheme)
	assert.Equal(t, 1, s.TapCountToOpenSettings)
	assert.Equal(t, 1, s.MultiGoBack)
	assert.Empty(t, s.HiddenFolderIDs)
}

func TestRepositorySetters(t *testing.T) {
	repo, _ := setupTestRepository(t)

	require.NoError(t, repo.SetDarkTheme(DarkThemeOn))
	require.NoError(t, repo.SetColorTheme(ColorThemeApp))
	require.NoError(t, repo.SetTapCountToOpenSettings(3))
	require.NoError(t, repo.SetMultiGoBack(5))
	require.NoError(t, repo.AddHiddenFolder(7))
	require.NoError(t, repo.AddHiddenFolder(-2))

	s := repo.Settings()
	assert.Equal(t, DarkThemeOn, s.DarkTheme)
	assert.Equal(t, ColorThemeApp, s.ColorTheme)
	assert.Equal(t, 3, s.TapCountToOpenSettings)
	assert.Equal(t, 5, s.MultiGoBack)
	assert.Equal(t, []int64{-2, 7}, s.HiddenFolderIDs)
	assert.True(t, s.IsHidden(7))
	assert.False(t, s.IsHidden(8))

	require.NoError(t, repo.RemoveHiddenFolder(7))
	assert.Equal(t, []int64{-2}, repo.Settings().HiddenFolderIDs)
}

func TestRepositoryRejectsOutOfRange(t *testing.T) {
	repo, _ := setupTestRepository(t)

	assert.ErrorIs(t, repo.SetTapCountToOpenSettings(0), ErrOutOfRange)
	assert.ErrorIs(t, repo.SetTapCountToOpenSettings(6), ErrOutOfRange)
	assert.ErrorIs(t, repo.SetMultiGoBack(-1), ErrOutOfRange)
	assert.ErrorIs(t, repo.SetDarkTheme(DarkTheme(9)), ErrOutOfRange)
	assert.ErrorIs(t, repo.SetColorTheme(ColorTheme(2)), ErrOutOfRange)
	assert.Equal(t, Defaults(), repo.Settings())
}

func TestRepositoryClampsStoredValues(t *testing.T) {
	repo, store := setupTestRepository(t)
	require.NoError(t, store.Set(KeyTapCountToOpenSettings, 12))
	require.NoError(t, store.Set(KeyDarkTheme, 42))

	s := repo.Settings()
	assert.Equal(t, 5, s.TapCountToOpenSettings)
	assert.Equal(t, DarkThemeFollowSystem, s.DarkTheme)
}

func TestRepositoryWatch(t *testing.T) {
	repo, _ := setupTestRepository(t)
	ch, cancel := repo.Watch()
	defer cancel()

	first := <-ch
	assert.Equal(t, 1, first.MultiGoBack)

	require.NoError(t, repo.SetMultiGoBack(2))
	select {
	case s := <-ch:
		assert.Equal(t, 2, s.MultiGoBack)
	case <-time.After(time.Second):
		t.Fatal("no settings update delivered")
	}
}

func TestSetByName(t *testing.T) {
	repo, _ := setupTestRepository(t)

	require.NoError(t, repo.SetByName("darktheme", "off"))
	require.NoError(t, repo.SetByName("ColorTheme", "0"))
	require.NoError(t, repo.SetByName("TapCountToOpenSettings", "4"))
	require.NoError(t, repo.SetByName("multigoback", "2"))

	s := repo.Settings()
	assert.Equal(t, DarkThemeOff, s.DarkTheme)
	assert.Equal(t, ColorThemeApp, s.ColorTheme)
	assert.Equal(t, 4, s.TapCountToOpenSettings)
	assert.Equal(t, 2, s.MultiGoBack)

	assert.ErrorIs(t, repo.SetByName("DarkTheme", "sometimes"), ErrOutOfRange)
	assert.ErrorIs(t, repo.SetByName("MultiGoBack", "many"), ErrOutOfRange)
	assert.ErrorIs(t, repo.SetByName("Volume", "3"), ErrUnknownKey)
}

func TestThemeNames(t *testing.T) {
	assert.Equal(t, "system", DarkThemeFollowSystem.String())
	assert.Equal(t, "wallpaper", ColorThemeWallpaper.String())
	assert.Equal(t, "DarkTheme(7)", DarkTheme(7).String())

	d, err := ParseDarkTheme(" On ")
	require.NoError(t, err)
	assert.Equal(t, DarkThemeOn, d)
}
