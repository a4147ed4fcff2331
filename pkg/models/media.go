package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	MediaStatusUnknown     = "UNKNOWN"
	MediaStatusError       = "ERROR"
	MediaStatusReady       = "READY"
	MediaStatusUnsupported = "UNSUPPORTED"
)

// Media holds what the analyzer derived from a book's file. It is 1:1 with
// Book.
type Media struct {
	bun.BaseModel `bun:"table:media,alias:m"`

	BookID    int          `bun:",pk" json:"book_id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Status    string       `bun:",nullzero" json:"status"`
	MediaType *string      `json:"media_type"`
	Thumbnail []byte       `json:"-"`
	Comment   *string      `json:"comment"`
	Pages     []*MediaPage `bun:"rel:has-many,join:book_id=book_id" json:"pages"`
	Files     []*MediaFile `bun:"rel:has-many,join:book_id=book_id" json:"files"`
}

type MediaPage struct {
	bun.BaseModel `bun:"table:media_pages,alias:mp"`

	ID        int    `bun:",pk,nullzero" json:"-"`
	BookID    int    `json:"-"`
	Number    int    `json:"number"`
	FileName  string `bun:",nullzero" json:"file_name"`
	MediaType string `bun:",nullzero" json:"media_type"`
}

type MediaFile struct {
	bun.BaseModel `bun:"table:media_files,alias:mf"`

	ID       int    `bun:",pk,nullzero" json:"-"`
	BookID   int    `json:"-"`
	FileName string `bun:",nullzero" json:"file_name"`
}

func NewMedia(bookID int) *Media {
	m := &Media{BookID: bookID}
	m.Reset()
	return m
}

// Reset returns the media to its unanalyzed state.
func (m *Media) Reset() {
	m.Status = MediaStatusUnknown
	m.MediaType = nil
	m.Thumbnail = nil
	m.Comment = nil
	m.Pages = nil
	m.Files = nil
}
