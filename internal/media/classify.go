package media

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Kind is the media type of a file.
type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindVideo
)

var (
	imagePattern = glob.MustCompile("*.{png,jpg,jpeg,gif,webp,bmp}")
	videoPattern = glob.MustCompile("*.{mp4,m4v,mov,3gp,mkv,webm,avi}")
)

// Classify returns the media kind for a file name, based on its extension.
func Classify(name string) Kind {
	base := strings.ToLower(filepath.Base(name))
	switch {
	case imagePattern.Match(base):
		return KindImage
	case videoPattern.Match(base):
		return KindVideo
	default:
		return KindNone
	}
}

// IsImage checks if a file is an image
func IsImage(name string) bool { return Classify(name) == KindImage }

// IsVideo checks if a file is a video
func IsVideo(name string) bool { return Classify(name) == KindVideo }

// isHiddenDir reports whether a directory should be skipped entirely.
func isHiddenDir(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
