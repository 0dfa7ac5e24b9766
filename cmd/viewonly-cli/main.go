package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"viewonly/internal/config"
	"viewonly/internal/media"
	"viewonly/internal/service"
	"viewonly/internal/settings"
)

// Env is what the commands operate on.
type Env struct {
	Store   *settings.Store
	Repo    *settings.Repository
	Catalog *media.Catalog
	Service *service.Service
}

// Close releases everything Open acquired.
func (e *Env) Close() error {
	e.Catalog.Close()
	e.Repo.Close()
	return e.Store.Close()
}

var (
	configFlag string
	dbPathFlag string
	rootsFlag  []string
	videosFlag bool
	imagesFlag bool
	limitFlag  int
	env        *Env
)

func cliLogger(msg string) {
	log.Printf("[viewonly-cli] %s", msg)
}

// Open resolves the configuration and opens the preference store and the
// catalog it describes.
func Open(configPath, dbPath string, roots []string, logger settings.LoggerFunc) (*Env, error) {
	cfg, err := config.Resolve(configPath, dbPath, roots)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	store, err := settings.OpenStore(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference DB: %w", err)
	}
	repo, err := settings.NewRepository(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	catalog := media.NewCatalog(cfg.Media.Roots, media.LoggerFunc(logger))
	return &Env{
		Store:   store,
		Repo:    repo,
		Catalog: catalog,
		Service: service.NewService(catalog, repo, logger),
	}, nil
}

// NewRootCmd creates the root command for the CLI application. open is
// called before every command so tests can point it at temporary stores.
func NewRootCmd(open func(configPath, dbPath string, roots []string, logger settings.LoggerFunc) (*Env, error)) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "viewonly-cli",
		Short:         "ViewOnly CLI - inspect the media catalog and manage preferences",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			env, err = open(configFlag, dbPathFlag, rootsFlag, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeEnv()
		},
	}

	mediaCmd := &cobra.Command{Use: "media", Short: "Inspect the media catalog"}
	mediaListCmd := &cobra.Command{
		Use:   "list",
		Short: "List visible media, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hidden := media.NewFolderSet(env.Repo.Settings().HiddenFolderIDs...)
			entries, err := env.Catalog.Load(cmd.Context(), hidden)
			if err != nil {
				return err
			}
			shown := 0
			for _, e := range entries {
				if (videosFlag && !e.IsVideo) || (imagesFlag && e.IsVideo) {
					continue
				}
				if limitFlag > 0 && shown >= limitFlag {
					break
				}
				kind := "image"
				if e.IsVideo {
					kind = "video"
				}
				cmd.Printf("%s\t%s\t%dx%d\t%s\n", e.DateAdded.Format(time.DateTime), kind, e.Width, e.Height, e.Path)
				shown++
			}
			if shown == 0 {
				cmd.Println("No media found.")
			}
			return nil
		},
	}
	mediaListCmd.Flags().BoolVar(&videosFlag, "videos", false, "Only list videos")
	mediaListCmd.Flags().BoolVar(&imagesFlag, "images", false, "Only list images")
	mediaListCmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "List at most n items")
	mediaCmd.AddCommand(mediaListCmd)
	rootCmd.AddCommand(mediaCmd)

	foldersCmd := &cobra.Command{Use: "folders", Short: "List folders and change their visibility"}
	foldersListCmd := &cobra.Command{
		Use:   "list",
		Short: "List every folder that contains media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := env.Catalog.LoadFolders(cmd.Context())
			if err != nil {
				return err
			}
			if len(folders) == 0 {
				cmd.Println("No folders found.")
				return nil
			}
			st := env.Repo.Settings()
			for _, f := range folders {
				state := "visible"
				if st.IsHidden(f.ID) {
					state = "hidden"
				}
				cmd.Printf("%d\t%s\t%d\t%s\n", f.ID, state, f.Count, f.Path)
			}
			return nil
		},
	}
	foldersCmd.AddCommand(foldersListCmd)
	for _, visible := range []bool{false, true} {
		use, short := "hide [folder-id|path]", "Hide a folder from the gallery"
		if visible {
			use, short = "show [folder-id|path]", "Show a hidden folder again"
		}
		foldersCmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseFolder(args[0])
				if err != nil {
					return err
				}
				if err := env.Service.SetFolderVisibility(id, visible); err != nil {
					return err
				}
				cmd.Printf("Folder %d is now %s.\n", id, map[bool]string{true: "visible", false: "hidden"}[visible])
				return nil
			},
		})
	}
	rootCmd.AddCommand(foldersCmd)

	settingsCmd := &cobra.Command{Use: "settings", Short: "Show or change preferences"}
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print all preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := env.Repo.Settings()
			cmd.Printf("%s=%s\n", settings.KeyDarkTheme, st.DarkTheme)
			cmd.Printf("%s=%s\n", settings.KeyColorTheme, st.ColorTheme)
			cmd.Printf("%s=%d\n", settings.KeyTapCountToOpenSettings, st.TapCountToOpenSettings)
			cmd.Printf("%s=%d\n", settings.KeyMultiGoBack, st.MultiGoBack)
			cmd.Printf("%s=%v\n", settings.KeyIgnoreFolders, st.HiddenFolderIDs)
			return nil
		},
	})
	settingsCmd.AddCommand(&cobra.Command{
		Use:   "set [name] [value]",
		Short: "Change a preference",
		Long: `Change a preference. Names and values:
  DarkTheme               off | on | system
  ColorTheme              app | wallpaper
  TapCountToOpenSettings  1-5
  MultiGoBack             1-5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Repo.SetByName(args[0], args[1]); err != nil {
				return err
			}
			cmd.Printf("Set %s to %s.\n", args[0], args[1])
			return nil
		},
	})
	rootCmd.AddCommand(settingsCmd)

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Path to the preference database")
	rootCmd.PersistentFlags().StringSliceVar(&rootsFlag, "root", nil, "Media directory to scan (repeatable)")

	return rootCmd
}

// closeEnv closes the environment opened for the last command. Cobra skips
// PersistentPostRun when a command fails, so callers also run it after
// Execute.
func closeEnv() {
	if env != nil {
		if err := env.Close(); err != nil {
			cliLogger("Error closing preference database: " + err.Error())
		}
		env = nil
	}
}

// parseFolder accepts a folder id or a directory path.
func parseFolder(arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return id, nil
	}
	info, err := os.Stat(arg)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a folder id nor a directory: %w", arg, err)
	}
	if !info.IsDir() {
		return 0, errors.New(arg + " is not a directory")
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return 0, err
	}
	return media.FolderID(abs), nil
}

func main() {
	rootCmd := NewRootCmd(Open)
	err := rootCmd.ExecuteContext(context.Background())
	closeEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
