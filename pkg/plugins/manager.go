package plugins

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/natsort"
)

// Plugin describes a plugin directory and the result of loading it.
type Plugin struct {
	Dir       string    `json:"dir"`
	Manifest  *Manifest `json:"manifest,omitempty"`
	LoadError string    `json:"load_error,omitempty"`
}

// Manager owns the plugins found in a directory. It is the "plugins"
// metadata provider: every loaded plugin is asked for a patch in directory
// name order and the patches are layered, later plugins winning.
type Manager struct {
	dir string

	mu       sync.RWMutex
	runtimes []*Runtime
	plugins  []Plugin
}

func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Load (re)loads every plugin directory. A plugin that fails to load is
// recorded and skipped; it never prevents the others from loading.
func (m *Manager) Load(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var runtimes []*Runtime
	var found []Plugin

	if m.dir != "" {
		entries, err := os.ReadDir(m.dir)
		if err != nil && !os.IsNotExist(err) {
			return errors.WithStack(err)
		}

		var dirs []string
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, e.Name())
			}
		}
		natsort.Strings(dirs)

		for _, name := range dirs {
			dir := filepath.Join(m.dir, name)
			rt, err := LoadPlugin(dir)
			if err != nil {
				log.Err(err).Warn("failed to load plugin", logger.Data{"dir": dir})
				found = append(found, Plugin{Dir: dir, LoadError: err.Error()})
				continue
			}
			log.Info("plugin loaded", logger.Data{"id": rt.Manifest().ID, "version": rt.Manifest().Version})
			runtimes = append(runtimes, rt)
			found = append(found, Plugin{Dir: dir, Manifest: rt.Manifest()})
		}
	}

	m.mu.Lock()
	m.runtimes = runtimes
	m.plugins = found
	m.mu.Unlock()
	return nil
}

// Plugins lists every plugin directory seen by the last Load.
func (m *Manager) Plugins() []Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Plugin(nil), m.plugins...)
}

func (m *Manager) Name() string {
	return models.DataSourcePlugins
}

// Extract asks every loaded plugin for a patch. The first failing plugin
// fails the whole provider so a refresh never applies half of the plugin
// output.
func (m *Manager) Extract(ctx context.Context, book *models.Book, media *models.Media) (*metadata.BookPatch, error) {
	m.mu.RLock()
	runtimes := append([]*Runtime(nil), m.runtimes...)
	m.mu.RUnlock()

	bookCtx := bookContext(book)
	mediaCtx := mediaContext(media)

	var merged *metadata.BookPatch
	for _, rt := range runtimes {
		p, err := rt.Extract(ctx, bookCtx, mediaCtx)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if merged == nil {
			merged = p
			continue
		}
		merged = overlayBook(merged, p)
	}
	return merged, nil
}

func bookContext(book *models.Book) map[string]interface{} {
	return map[string]interface{}{
		"id":               book.ID,
		"libraryId":        book.LibraryID,
		"seriesId":         book.SeriesID,
		"name":             book.Name,
		"url":              book.URL,
		"fileName":         book.FileName(),
		"fileExtension":    book.FileExtension(),
		"fileSize":         book.FileSize,
		"fileLastModified": book.FileLastModified.Format(time.RFC3339),
		"number":           book.Number,
	}
}

func mediaContext(media *models.Media) map[string]interface{} {
	if media == nil {
		return nil
	}
	pages := make([]interface{}, 0, len(media.Pages))
	for _, p := range media.Pages {
		pages = append(pages, map[string]interface{}{
			"number":    p.Number,
			"fileName":  p.FileName,
			"mediaType": p.MediaType,
		})
	}
	files := make([]interface{}, 0, len(media.Files))
	for _, f := range media.Files {
		files = append(files, f.FileName)
	}

	ctx := map[string]interface{}{
		"status": media.Status,
		"pages":  pages,
		"files":  files,
	}
	if media.MediaType != nil {
		ctx["mediaType"] = *media.MediaType
	}
	if media.Comment != nil {
		ctx["comment"] = *media.Comment
	}
	return ctx
}

// overlay keeps base unless top has an opinion.
func overlay[T any](base, top metadata.Field[T]) metadata.Field[T] {
	if top.IsPresent() {
		return top
	}
	return base
}

func overlayBook(base, top *metadata.BookPatch) *metadata.BookPatch {
	out := &metadata.BookPatch{
		Title:            overlay(base.Title, top.Title),
		Summary:          overlay(base.Summary, top.Summary),
		Number:           overlay(base.Number, top.Number),
		NumberSort:       overlay(base.NumberSort, top.NumberSort),
		ReadingDirection: overlay(base.ReadingDirection, top.ReadingDirection),
		Publisher:        overlay(base.Publisher, top.Publisher),
		AgeRating:        overlay(base.AgeRating, top.AgeRating),
		ReleaseDate:      overlay(base.ReleaseDate, top.ReleaseDate),
		Authors:          overlay(base.Authors, top.Authors),
		Tags:             overlay(base.Tags, top.Tags),
		Series:           base.Series,
	}
	switch {
	case base.Series == nil:
		out.Series = top.Series
	case top.Series != nil:
		out.Series = &metadata.SeriesPatch{
			Status:    overlay(base.Series.Status, top.Series.Status),
			Title:     overlay(base.Series.Title, top.Series.Title),
			TitleSort: overlay(base.Series.TitleSort, top.Series.TitleSort),
		}
	}
	return out
}
