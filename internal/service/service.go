// Package service combines the media catalog with the user's settings into
// the state the gallery, viewer and folder screens render.
package service

import (
	"context"
	"fmt"
	"log"

	"viewonly/internal/media"
	"viewonly/internal/settings"
)

// Catalog abstracts the media catalog for easier testing and decoupling.
type Catalog interface {
	Load(ctx context.Context, hidden media.FolderSet) ([]media.Entry, error)
	LoadFolders(ctx context.Context) ([]media.Folder, error)
}

// SettingsSource abstracts the settings repository.
type SettingsSource interface {
	Settings() settings.AppSettings
	Watch() (<-chan settings.AppSettings, func())
	SetFolderHidden(id int64, hidden bool) error
}

// Service is the main entry point for screen state.
type Service struct {
	Catalog  Catalog
	Settings SettingsSource
	Logger   func(string)
}

// NewService constructs a new Service.
func NewService(catalog Catalog, source SettingsSource, logger func(string)) *Service {
	return &Service{
		Catalog:  catalog,
		Settings: source,
		Logger:   logger,
	}
}

func (s *Service) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.Logger != nil {
		s.Logger(msg)
		return
	}
	log.Println(msg)
}

// SetFolderVisibility shows or hides a folder in the gallery.
func (s *Service) SetFolderVisibility(id int64, visible bool) error {
	if err := s.Settings.SetFolderHidden(id, !visible); err != nil {
		return fmt.Errorf("changing visibility of folder %d: %w", id, err)
	}
	return nil
}

func hiddenSet(st settings.AppSettings) media.FolderSet {
	return media.NewFolderSet(st.HiddenFolderIDs...)
}
