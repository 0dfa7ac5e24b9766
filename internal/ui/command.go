package ui

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"viewonly/internal/config"
)

// Options are the command line overrides of the configuration file.
type Options struct {
	ConfigPath string
	DBPath     string
	Roots      []string
	NoWatch    bool
	FullScreen bool
}

// LoadConfig reads the configuration file named by opts, or the default
// one, and applies the overrides.
func LoadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Resolve(opts.ConfigPath, opts.DBPath, opts.Roots)
	if err != nil {
		return nil, err
	}
	if opts.NoWatch {
		cfg.Media.Watch = false
	}
	return cfg, nil
}

// NewCommand returns the command that starts the GUI.
func NewCommand() *cobra.Command {
	var opts Options
	cmd := &cobra.Command{
		Use:   "viewonly [directory...]",
		Short: "ViewOnly - browse and view local photos and videos",
		Long: `ViewOnly shows the photos and videos found under the given directories
(or the configured media roots) in a grid, newest first. Images open in a
zoomable viewer, videos in mpv.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Roots = append(opts.Roots, args...)
			cfg, err := LoadConfig(opts)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log.Printf("Media roots: %v", cfg.Media.Roots)
			return CreateApplication(cfg, opts.FullScreen)
		},
	}
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Path to the configuration file")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "Path to the preference database")
	cmd.Flags().StringSliceVar(&opts.Roots, "root", nil, "Media directory to scan (repeatable)")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "Do not reload when files change")
	cmd.Flags().BoolVarP(&opts.FullScreen, "fullscreen", "f", false, "Start in full screen")
	return cmd
}
