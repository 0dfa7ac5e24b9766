// Package media enumerates the images and videos under a set of root
// directories and groups them by folder.
package media

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Entry is one media file.
type Entry struct {
	URI       string
	Path      string
	IsVideo   bool
	Width     int // 0 when unknown
	Height    int
	FolderID  int64
	DateAdded time.Time
}

// Name returns the file name of the entry.
func (e Entry) Name() string {
	return filepath.Base(e.Path)
}

// Folder is a directory that directly contains at least one media file.
type Folder struct {
	ID            int64
	Name          string
	Path          string
	ParentPath    string
	ThumbnailURI  string
	ThumbnailPath string
	IsVideo       bool // the thumbnail is a video
	Count         int
}

// FolderSet is a set of folder ids.
type FolderSet map[int64]struct{}

// NewFolderSet builds a set from ids.
func NewFolderSet(ids ...int64) FolderSet {
	s := make(FolderSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s FolderSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// FolderID derives a stable non-negative id from a directory path.
func FolderID(dir string) int64 {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return int64(xxhash.Sum64String(filepath.Clean(dir)) >> 1)
}

// FileURI returns the file:// URI for an absolute path.
func FileURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
