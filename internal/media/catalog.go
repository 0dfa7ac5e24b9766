package media

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/maruel/natural"

	"viewonly/internal/stream"
)

// Catalog enumerates media below its roots. Results of the latest Load and
// LoadFolders are replayed to subscribers of Items and Folders.
type Catalog struct {
	roots  []string
	logger LoggerFunc

	mu      sync.Mutex // serialises loads so results publish in call order
	items   *stream.Latest[[]Entry]
	folders *stream.Latest[[]Folder]
}

// NewCatalog returns a Catalog over roots.
func NewCatalog(roots []string, logger LoggerFunc) *Catalog {
	return &Catalog{
		roots:   append([]string(nil), roots...),
		logger:  logger,
		items:   stream.NewLatest[[]Entry](),
		folders: stream.NewLatest[[]Folder](),
	}
}

// Roots returns the directories the catalog scans.
func (c *Catalog) Roots() []string {
	return append([]string(nil), c.roots...)
}

// Items is the replay-latest stream of Load results.
func (c *Catalog) Items() *stream.Latest[[]Entry] { return c.items }

// Folders is the replay-latest stream of LoadFolders results.
func (c *Catalog) Folders() *stream.Latest[[]Folder] { return c.folders }

// Load enumerates all media outside the hidden folders, newest first, and
// publishes the result on Items.
func (c *Catalog) Load(ctx context.Context, hidden FolderSet) ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := scan(ctx, c.roots, c.logger)
	if err != nil {
		return nil, err
	}
	visible := entries[:0]
	for _, e := range entries {
		if !hidden.Contains(e.FolderID) {
			visible = append(visible, e)
		}
	}
	logf(c.logger, "Found %d media files (%d hidden)", len(visible), len(entries)-len(visible))
	c.items.Publish(visible)
	return visible, nil
}

// LoadFolders enumerates every folder that holds media, regardless of
// visibility, and publishes the result on Folders. Each folder's thumbnail
// is its newest entry. Folders are in natural name order.
func (c *Catalog) LoadFolders(ctx context.Context) ([]Folder, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := scan(ctx, c.roots, c.logger)
	if err != nil {
		return nil, err
	}
	folders := groupFolders(entries)
	c.folders.Publish(folders)
	return folders, nil
}

// groupFolders expects entries newest first.
func groupFolders(entries []Entry) []Folder {
	byID := make(map[int64]*Folder)
	var order []int64
	for _, e := range entries {
		f, ok := byID[e.FolderID]
		if !ok {
			dir := filepath.Dir(e.Path)
			f = &Folder{
				ID:            e.FolderID,
				Name:          filepath.Base(dir),
				Path:          dir,
				ParentPath:    filepath.Dir(dir),
				ThumbnailURI:  e.URI,
				ThumbnailPath: e.Path,
				IsVideo:       e.IsVideo,
			}
			byID[e.FolderID] = f
			order = append(order, e.FolderID)
		}
		f.Count++
	}

	folders := make([]Folder, 0, len(order))
	for _, id := range order {
		folders = append(folders, *byID[id])
	}
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].Name != folders[j].Name {
			return natural.Less(folders[i].Name, folders[j].Name)
		}
		return natural.Less(folders[i].Path, folders[j].Path)
	})
	return folders
}

// Close ends all stream subscriptions.
func (c *Catalog) Close() {
	c.items.Close()
	c.folders.Close()
}
