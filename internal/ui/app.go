// Package ui builds the ViewOnly gallery, viewer and settings screens.
package ui

import (
	"context"
	"fmt"
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"

	"viewonly/internal/config"
	"viewonly/internal/gate"
	"viewonly/internal/media"
	"viewonly/internal/nav"
	"viewonly/internal/service"
	"viewonly/internal/settings"
)

const (
	appID      = "io.github.viewonly"
	appTitle   = "ViewOnly Viewer"
	appVersion = "1.0.0"
)

// screen is one page of the navigation stack.
type screen interface {
	content() fyne.CanvasObject
	show(r nav.Route)
	hide()
}

// App represents the whole application with all its windows, widgets and functions
type App struct {
	app fyne.App
	win fyne.Window
	cfg *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	store     *settings.Store
	repo      *settings.Repository
	catalog   *media.Catalog
	watcherMu sync.Mutex
	watcher   *media.Watcher
	Service   *service.Service
	model     *service.Gallery
	images    *service.ImageService
	thumbs    *ThumbnailManager
	messages  *MessageBar

	nav      *nav.Stack
	tapGate  *gate.TapGate
	backGate *gate.BackGate

	screens map[nav.Screen]screen
	current screen
	body    *fyne.Container

	gallery  *galleryScreen
	viewer   *viewerScreen
	settings *settingsScreen
	folders  *foldersScreen

	state        service.GalleryState
	startedOnce  bool
	shutdownOnce sync.Once
	mainModKey   fyne.KeyModifier
}

// logf sends a message to the message bar, or to the console before the
// bar exists. It is safe to call from any goroutine.
func (a *App) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if a.messages != nil {
		a.messages.AddMessage(msg)
		return
	}
	log.Printf("EarlyLog: %s", msg)
}

func (a *App) logger(message string) { a.logf("%s", message) }

// CreateApplication opens the stores described by cfg and runs the GUI
// until it is closed.
func CreateApplication(cfg *config.Config, fullScreen bool) error {
	a := &App{cfg: cfg, nav: nav.NewStack()}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.app = app.NewWithID(appID)
	a.app.SetIcon(resourceIconPng)

	var err error
	a.store, err = settings.OpenStore(cfg.Database.Path, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize preference database: %w", err)
	}
	a.repo, err = settings.NewRepository(a.store)
	if err != nil {
		a.store.Close()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	a.messages = NewMessageBar(DefaultMaxLogMessages, DefaultMessageDuration)
	a.catalog = media.NewCatalog(cfg.Media.Roots, a.logger)
	a.Service = service.NewService(a.catalog, a.repo, a.logger)
	a.model = a.Service.NewGallery()
	a.images = service.NewImageService()
	a.thumbs = NewThumbnailManager(a.images, a.logger)

	initial := a.repo.Settings()
	a.tapGate = gate.NewTapGate(gate.MainThread(), cfg.PerTapTimeout(), initial.TapCountToOpenSettings, a.onSettingsTaps)
	a.backGate = gate.NewBackGate(gate.MainThread(), cfg.PerBackTimeout(), initial.MultiGoBack, a.onBackCancelled)
	a.backGate.AddListener(func(count int) {
		if count == 1 {
			a.logf("Press back %d times to exit", a.backGate.Required())
		}
	})
	a.applyTheme(initial)

	a.win = a.app.NewWindow(appTitle)
	a.win.SetIcon(resourceIconPng)
	a.win.SetCloseIntercept(a.quit)

	a.gallery = newGalleryScreen(a)
	a.viewer = newViewerScreen(a)
	a.settings = newSettingsScreen(a)
	a.folders = newFoldersScreen(a)
	a.screens = map[nav.Screen]screen{
		nav.Gallery:        a.gallery,
		nav.Viewer:         a.viewer,
		nav.Settings:       a.settings,
		nav.FolderSettings: a.folders,
	}
	a.body = container.NewStack()
	a.nav.OnChange(a.showRoute)
	a.showRoute(a.nav.Current())

	a.win.SetContent(container.NewBorder(nil, a.messages.Content(), nil, nil, a.body))
	a.buildKeyboardShortcuts()
	a.watchLifecycle()
	a.startBackground()

	cols := max(cfg.Gallery.Columns, 1)
	a.win.Resize(fyne.NewSize(float32(cols)*(ThumbnailWidth+theme.Padding()*2)+theme.Padding()*4, 720))
	a.win.CenterOnScreen()
	if fullScreen {
		a.win.SetFullScreen(true)
	}
	a.win.ShowAndRun()
	a.shutdown()
	return nil
}

// startBackground runs the gallery model and the filesystem watcher, and
// forwards their output to the main goroutine.
func (a *App) startBackground() {
	go func() {
		if err := a.model.Run(a.ctx); err != nil && a.ctx.Err() == nil {
			a.logf("Gallery stopped: %v", err)
		}
	}()

	states, cancelStates := a.model.State().Subscribe()
	go func() {
		defer cancelStates()
		for st := range states {
			fyne.Do(func() { a.applyState(st) })
		}
	}()

	prefs, cancelPrefs := a.repo.Watch()
	go func() {
		defer cancelPrefs()
		for st := range prefs {
			fyne.Do(func() {
				a.applyTheme(st)
				a.settings.refresh(st)
			})
		}
	}()

	if a.cfg.Media.Watch {
		go func() {
			w, err := media.NewWatcher(a.cfg.Media.Roots, media.DefaultSettleDelay, a.model.Reload, a.logger)
			if err != nil {
				a.logf("File watching disabled: %v", err)
				return
			}
			a.watcherMu.Lock()
			defer a.watcherMu.Unlock()
			if a.ctx.Err() != nil {
				w.Close()
				return
			}
			a.watcher = w
		}()
	}
}

// watchLifecycle resets the gates when the application leaves the
// foreground and reloads the gallery when it comes back.
func (a *App) watchLifecycle() {
	lc := a.app.Lifecycle()
	lc.SetOnExitedForeground(func() {
		a.backGate.Pause()
		a.tapGate.Reset()
	})
	lc.SetOnEnteredForeground(func() {
		if !a.startedOnce {
			a.startedOnce = true
			return
		}
		a.model.Reload()
	})
}

func (a *App) applyState(st service.GalleryState) {
	a.state = st
	if a.tapGate.Required() != gate.ClampRequiredCount(st.TapCountToOpenSettings) {
		a.tapGate.SetRequiredCount(st.TapCountToOpenSettings)
	}
	if a.backGate.Required() != gate.ClampRequiredCount(st.MultiGoBack) {
		a.backGate.SetRequiredCount(st.MultiGoBack)
	}
	a.gallery.setState(st)
	a.viewer.setItems(st.Items)
}

func (a *App) applyTheme(st settings.AppSettings) {
	a.app.Settings().SetTheme(NewAppTheme(theme.DefaultTheme(), st.DarkTheme, st.ColorTheme))
}

func (a *App) showRoute(r nav.Route) {
	if a.current != nil {
		a.current.hide()
	}
	if r.Screen != nav.Gallery {
		a.backGate.Pause()
		a.tapGate.Reset()
	}
	s := a.screens[r.Screen]
	s.show(r)
	a.body.Objects = []fyne.CanvasObject{s.content()}
	a.body.Refresh()
	a.current = s
}

func (a *App) openViewer(index int) {
	if index < 0 || index >= len(a.state.Items) {
		return
	}
	a.nav.Push(nav.Route{Screen: nav.Viewer, Index: index})
}

func (a *App) onSettingsTaps(success bool) {
	if success {
		a.nav.Push(nav.Route{Screen: nav.Settings})
		return
	}
	a.logf("Tap %d times to open settings", a.tapGate.Required())
}

func (a *App) onBackCancelled(required int) {
	a.logf("Press back %d times to exit", required)
}

// goBack pops the navigation stack. At the gallery the back gate decides
// whether the press is swallowed or quits the application.
func (a *App) goBack() {
	if _, ok := a.nav.Back(); ok {
		return
	}
	if a.backGate.HandleBack() {
		return
	}
	a.quit()
}

func (a *App) quit() {
	a.shutdown()
	a.app.Quit()
}

func (a *App) shutdown() {
	a.shutdownOnce.Do(func() {
		if a.current != nil {
			a.current.hide()
		}
		a.watcherMu.Lock()
		a.cancel()
		if a.watcher != nil {
			if err := a.watcher.Close(); err != nil {
				log.Printf("Error closing watcher: %v", err)
			}
		}
		a.watcherMu.Unlock()
		a.model.Close()
		a.catalog.Close()
		a.repo.Close()
		log.Println("Closing preference database...")
		if err := a.store.Close(); err != nil {
			log.Printf("Error closing preference database: %v", err)
		}
	})
}
