package metadata

import (
	"context"
	"path"
	"strings"

	"github.com/shishobooks/shoka/pkg/models"
)

// FilenameProvider derives a title from the book's name.
type FilenameProvider struct{}

func NewFilenameProvider() *FilenameProvider {
	return &FilenameProvider{}
}

func (*FilenameProvider) Name() string {
	return models.DataSourceFilename
}

func (*FilenameProvider) Extract(_ context.Context, book *models.Book, _ *models.Media) (*BookPatch, error) {
	title := TitleFromFilename(book.Name)
	if title == "" {
		return nil, nil
	}
	return &BookPatch{Title: Value(title)}, nil
}

// TitleFromFilename strips a known book file extension, turns underscores
// into spaces and collapses repeated whitespace.
func TitleFromFilename(name string) string {
	ext := strings.ToLower(path.Ext(name))
	switch ext {
	case ".cbz", ".cbr", ".cb7", ".zip", ".rar", ".pdf", ".epub":
		name = name[:len(name)-len(ext)]
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(name), " ")
}
