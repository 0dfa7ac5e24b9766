package settings

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"viewonly/internal/stream"
)

// Preference keys.
const (
	KeyIgnoreFolders          = "ignore_folders"
	KeyDarkTheme              = "DarkTheme"
	KeyColorTheme             = "ColorTheme"
	KeyTapCountToOpenSettings = "TapCountToOpenSettings"
	KeyMultiGoBack            = "MultiGoBack"
)

const (
	minCount = 1
	maxCount = 5
)

// ErrOutOfRange is returned when a value is outside what a key accepts.
var ErrOutOfRange = errors.New("value out of range")

// ErrUnknownKey is returned by SetByName for keys it does not know.
var ErrUnknownKey = errors.New("unknown setting")

type DarkTheme int

const (
	DarkThemeOff DarkTheme = iota
	DarkThemeOn
	DarkThemeFollowSystem
)

var darkThemeNames = []string{"off", "on", "system"}

func (d DarkTheme) String() string {
	if d < 0 || int(d) >= len(darkThemeNames) {
		return "DarkTheme(" + strconv.Itoa(int(d)) + ")"
	}
	return darkThemeNames[d]
}

func (d DarkTheme) Valid() bool { return d >= DarkThemeOff && d <= DarkThemeFollowSystem }

// ParseDarkTheme accepts a name ("off", "on", "system") or its number.
func ParseDarkTheme(s string) (DarkTheme, error) {
	n, err := parseEnum(s, darkThemeNames)
	return DarkTheme(n), err
}

type ColorTheme int

const (
	ColorThemeApp ColorTheme = iota
	ColorThemeWallpaper
)

var colorThemeNames = []string{"app", "wallpaper"}

func (c ColorTheme) String() string {
	if c < 0 || int(c) >= len(colorThemeNames) {
		return "ColorTheme(" + strconv.Itoa(int(c)) + ")"
	}
	return colorThemeNames[c]
}

func (c ColorTheme) Valid() bool { return c >= ColorThemeApp && c <= ColorThemeWallpaper }

// ParseColorTheme accepts a name ("app", "wallpaper") or its number.
func ParseColorTheme(s string) (ColorTheme, error) {
	n, err := parseEnum(s, colorThemeNames)
	return ColorTheme(n), err
}

func parseEnum(s string, names []string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := slices.Index(names, s); i >= 0 {
		return i, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= len(names) {
		return 0, fmt.Errorf("%q: %w (want one of %s)", s, ErrOutOfRange, strings.Join(names, ", "))
	}
	return n, nil
}

// AppSettings is the typed view of all preferences.
type AppSettings struct {
	HiddenFolderIDs        []int64
	DarkTheme              DarkTheme
	ColorTheme             ColorTheme
	TapCountToOpenSettings int
	MultiGoBack            int
}

// Defaults returns the settings used for keys that were never written.
func Defaults() AppSettings {
	return AppSettings{
		HiddenFolderIDs:        []int64{},
		DarkTheme:              DarkThemeFollowSystem,
		ColorTheme:             ColorThemeWallpaper,
		TapCountToOpenSettings: 1,
		MultiGoBack:            1,
	}
}

// IsHidden reports whether the folder id is in the hidden set.
func (s AppSettings) IsHidden(id int64) bool {
	_, found := slices.BinarySearch(s.HiddenFolderIDs, id)
	return found
}

// Repository reads and writes AppSettings through a Store and republishes
// the record after every change.
type Repository struct {
	store  *Store
	latest *stream.Latest[AppSettings]
	mu     sync.Mutex // serialises reload+publish
}

// NewRepository loads the current settings and starts following changes to
// the store.
func NewRepository(store *Store) (*Repository, error) {
	r := &Repository{store: store, latest: stream.NewLatest[AppSettings]()}
	if err := r.reload(); err != nil {
		return nil, err
	}
	store.AddChangeListener(func(string) {
		if err := r.reload(); err != nil {
			store.logMessage("Error reloading settings: %v", err)
		}
	})
	return r, nil
}

func (r *Repository) reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.load()
	if err != nil {
		return err
	}
	r.latest.Publish(s)
	return nil
}

func (r *Repository) load() (AppSettings, error) {
	s := Defaults()
	if _, err := r.store.Get(KeyIgnoreFolders, &s.HiddenFolderIDs); err != nil {
		return s, err
	}
	slices.Sort(s.HiddenFolderIDs)

	dark := int(s.DarkTheme)
	if _, err := r.store.Get(KeyDarkTheme, &dark); err != nil {
		return s, err
	}
	if DarkTheme(dark).Valid() {
		s.DarkTheme = DarkTheme(dark)
	}

	color := int(s.ColorTheme)
	if _, err := r.store.Get(KeyColorTheme, &color); err != nil {
		return s, err
	}
	if ColorTheme(color).Valid() {
		s.ColorTheme = ColorTheme(color)
	}

	if _, err := r.store.Get(KeyTapCountToOpenSettings, &s.TapCountToOpenSettings); err != nil {
		return s, err
	}
	s.TapCountToOpenSettings = clampCount(s.TapCountToOpenSettings)

	if _, err := r.store.Get(KeyMultiGoBack, &s.MultiGoBack); err != nil {
		return s, err
	}
	s.MultiGoBack = clampCount(s.MultiGoBack)
	return s, nil
}

func clampCount(n int) int {
	return min(max(n, minCount), maxCount)
}

// Settings returns the most recently loaded settings.
func (r *Repository) Settings() AppSettings {
	s, ok := r.latest.Value()
	if !ok {
		return Defaults()
	}
	return s
}

// Watch subscribes to settings changes. The current settings are delivered
// first.
func (r *Repository) Watch() (<-chan AppSettings, func()) {
	return r.latest.Subscribe()
}

// SetFolderHidden adds or removes id from the hidden folder set.
func (r *Repository) SetFolderHidden(id int64, hidden bool) error {
	if _, err := r.store.UpdateIDSet(KeyIgnoreFolders, id, hidden); err != nil {
		return fmt.Errorf("updating hidden folders: %w", err)
	}
	return nil
}

func (r *Repository) AddHiddenFolder(id int64) error    { return r.SetFolderHidden(id, true) }
func (r *Repository) RemoveHiddenFolder(id int64) error { return r.SetFolderHidden(id, false) }

func (r *Repository) SetDarkTheme(d DarkTheme) error {
	if !d.Valid() {
		return fmt.Errorf("dark theme %d: %w", d, ErrOutOfRange)
	}
	return r.store.Set(KeyDarkTheme, int(d))
}

func (r *Repository) SetColorTheme(c ColorTheme) error {
	if !c.Valid() {
		return fmt.Errorf("color theme %d: %w", c, ErrOutOfRange)
	}
	return r.store.Set(KeyColorTheme, int(c))
}

// SetTapCountToOpenSettings sets how many taps unlock the settings screen.
func (r *Repository) SetTapCountToOpenSettings(n int) error {
	if n < minCount || n > maxCount {
		return fmt.Errorf("tap count %d: %w", n, ErrOutOfRange)
	}
	return r.store.Set(KeyTapCountToOpenSettings, n)
}

// SetMultiGoBack sets how many back presses exit the gallery.
func (r *Repository) SetMultiGoBack(n int) error {
	if n < minCount || n > maxCount {
		return fmt.Errorf("back press count %d: %w", n, ErrOutOfRange)
	}
	return r.store.Set(KeyMultiGoBack, n)
}

// SetByName parses value for the named key and stores it. Names are the
// preference keys, matched case-insensitively.
func (r *Repository) SetByName(name, value string) error {
	switch strings.ToLower(name) {
	case strings.ToLower(KeyDarkTheme):
		d, err := ParseDarkTheme(value)
		if err != nil {
			return err
		}
		return r.SetDarkTheme(d)
	case strings.ToLower(KeyColorTheme):
		c, err := ParseColorTheme(value)
		if err != nil {
			return err
		}
		return r.SetColorTheme(c)
	case strings.ToLower(KeyTapCountToOpenSettings):
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%q is not a number: %w", value, ErrOutOfRange)
		}
		return r.SetTapCountToOpenSettings(n)
	case strings.ToLower(KeyMultiGoBack):
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%q is not a number: %w", value, ErrOutOfRange)
		}
		return r.SetMultiGoBack(n)
	}
	return fmt.Errorf("%q: %w", name, ErrUnknownKey)
}

// Close ends all Watch subscriptions. The Store stays open.
func (r *Repository) Close() {
	r.latest.Close()
}
