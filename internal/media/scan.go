package media

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/sync/errgroup"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type candidate struct {
	path    string
	kind    Kind
	info    fs.FileInfo
	entry   Entry
	skipped bool
}

// walk collects the media files below root.
func walk(ctx context.Context, root string, logger LoggerFunc) ([]candidate, error) {
	var found []candidate
	visit := func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return err
			}
			logf(logger, "Skipping %s: %v", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != root && isHiddenDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		kind := Classify(d.Name())
		if kind == KindNone || !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() == 0 {
			return nil
		}
		found = append(found, candidate{path: p, kind: kind, info: info})
		return nil
	}
	if err := filepath.WalkDir(root, visit); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return found, nil
}

// scan walks every root and probes the files it finds in parallel. Entries
// come back newest first. Roots that cannot be read are logged and skipped.
func scan(ctx context.Context, roots []string, logger LoggerFunc) ([]Entry, error) {
	var all []candidate
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			logf(logger, "Skipping root %s: %v", root, err)
			continue
		}
		found, err := walk(ctx, abs, logger)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logf(logger, "%v", err)
			continue
		}
		all = append(all, found...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range all {
		c := &all[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := probe(c.path, c.kind, c.info)
			if err != nil {
				logf(logger, "Skipping %s: %v", c.path, err)
				c.skipped = true
				return nil
			}
			c.entry = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(all))
	for _, c := range all {
		if !c.skipped {
			entries = append(entries, c.entry)
		}
	}
	sortNewestFirst(entries)
	return entries, nil
}

func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].DateAdded.Equal(entries[j].DateAdded) {
			return entries[i].DateAdded.After(entries[j].DateAdded)
		}
		return entries[i].Path < entries[j].Path
	})
}

// probe builds the Entry for one file. Images are checked by decoding their
// header; EXIF orientations that rotate by 90 degrees swap the dimensions.
func probe(path string, kind Kind, info fs.FileInfo) (Entry, error) {
	dir := filepath.Dir(path)
	e := Entry{
		URI:       FileURI(path),
		Path:      path,
		IsVideo:   kind == KindVideo,
		FolderID:  FolderID(dir),
		DateAdded: info.ModTime(),
	}
	if kind == KindVideo {
		return e, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return e, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return e, fmt.Errorf("failed to decode image header: %w", err)
	}
	e.Width, e.Height = cfg.Width, cfg.Height

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if o := Orientation(f); o >= 5 && o <= 8 {
			e.Width, e.Height = e.Height, e.Width
		}
	}
	return e, nil
}

// Orientation returns the EXIF orientation tag (1-8) of r, or 1 when there
// is none.
func Orientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

func logf(logger LoggerFunc, format string, args ...any) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}
