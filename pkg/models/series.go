package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SeriesStatusEnded     = "ENDED"
	SeriesStatusOngoing   = "ONGOING"
	SeriesStatusAbandoned = "ABANDONED"
	SeriesStatusHiatus    = "HIATUS"
)

var validSeriesStatuses = map[string]struct{}{
	SeriesStatusEnded:     {},
	SeriesStatusOngoing:   {},
	SeriesStatusAbandoned: {},
	SeriesStatusHiatus:    {},
}

type Series struct {
	bun.BaseModel `bun:"table:series,alias:s"`

	ID               int             `bun:",pk,nullzero" json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	LibraryID        int             `bun:",nullzero" json:"library_id"`
	Library          *Library        `bun:"rel:belongs-to" json:"library,omitempty"`
	Name             string          `bun:",nullzero" json:"name"`
	URL              string          `bun:",nullzero" json:"url"`
	FileLastModified time.Time       `json:"file_last_modified"`
	Metadata         *SeriesMetadata `bun:"rel:has-one,join:id=series_id" json:"metadata,omitempty"`
	BookCount        int             `bun:",scanonly" json:"book_count"`
}

// SeriesMetadata is owned by exactly one Series and is created and deleted
// together with it.
type SeriesMetadata struct {
	bun.BaseModel `bun:"table:series_metadata,alias:sm"`

	SeriesID      int       `bun:",pk" json:"series_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Status        string    `bun:",nullzero" json:"status"`
	StatusLock    bool      `json:"status_lock"`
	Title         string    `bun:",nullzero" json:"title"`
	TitleLock     bool      `json:"title_lock"`
	TitleSort     string    `bun:",nullzero" json:"title_sort"`
	TitleSortLock bool      `json:"title_sort_lock"`
}

// NewSeriesMetadata seeds the metadata of a freshly created series from its
// name.
func NewSeriesMetadata(series *Series) *SeriesMetadata {
	return &SeriesMetadata{
		SeriesID:  series.ID,
		Status:    SeriesStatusOngoing,
		Title:     series.Name,
		TitleSort: series.Name,
	}
}

// Normalize trims the text fields in place.
func (m *SeriesMetadata) Normalize() {
	m.Title = trim(m.Title)
	m.TitleSort = trim(m.TitleSort)
}

func (m *SeriesMetadata) Validate() error {
	if m.Title == "" {
		return blank("Title")
	}
	if m.TitleSort == "" {
		return blank("Title sort")
	}
	if _, ok := validSeriesStatuses[m.Status]; !ok {
		return invalid("Status", m.Status)
	}
	return nil
}
