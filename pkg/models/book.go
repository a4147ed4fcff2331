package models

import (
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID               int           `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	LibraryID        int           `bun:",nullzero" json:"library_id"`
	SeriesID         int           `bun:",nullzero" json:"series_id"`
	Series           *Series       `bun:"rel:belongs-to" json:"series,omitempty"`
	Name             string        `bun:",nullzero" json:"name"`
	URL              string        `bun:",nullzero" json:"url"`
	FileLastModified time.Time     `json:"file_last_modified"`
	FileSize         int64         `json:"file_size"`
	Number           int           `json:"number"`
	Metadata         *BookMetadata `bun:"rel:has-one,join:id=book_id" json:"metadata,omitempty"`
}

// FileName is the last element of the book's file locator.
func (b *Book) FileName() string {
	return path.Base(strings.TrimPrefix(b.URL, "file://"))
}

// FileExtension is the lower-cased extension of the book's file, without the
// leading dot.
func (b *Book) FileExtension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(b.FileName()), "."))
}

func (b *Book) FileSizeHumanReadable() string {
	return humanize.IBytes(uint64(b.FileSize))
}
