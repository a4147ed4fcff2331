package metadata

import (
	"github.com/shishobooks/shoka/pkg/models"
)

// BookEdit is a manual change to a book's metadata. Present values are
// written even when the field is locked, and each non-nil lock replaces the
// stored lock flag.
type BookEdit struct {
	BookPatch

	TitleLock            *bool `json:"title_lock,omitempty"`
	SummaryLock          *bool `json:"summary_lock,omitempty"`
	NumberLock           *bool `json:"number_lock,omitempty"`
	NumberSortLock       *bool `json:"number_sort_lock,omitempty"`
	ReadingDirectionLock *bool `json:"reading_direction_lock,omitempty"`
	PublisherLock        *bool `json:"publisher_lock,omitempty"`
	AgeRatingLock        *bool `json:"age_rating_lock,omitempty"`
	ReleaseDateLock      *bool `json:"release_date_lock,omitempty"`
	AuthorsLock          *bool `json:"authors_lock,omitempty"`
	TagsLock             *bool `json:"tags_lock,omitempty"`
}

// SeriesEdit is a manual change to a series' metadata.
type SeriesEdit struct {
	SeriesPatch

	StatusLock    *bool `json:"status_lock,omitempty"`
	TitleLock     *bool `json:"title_lock,omitempty"`
	TitleSortLock *bool `json:"title_sort_lock,omitempty"`
}

func setLock(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// ApplyBookEdit returns rec with the edit applied. Locks do not stop a
// manual edit.
func ApplyBookEdit(e BookEdit, rec models.BookMetadata) models.BookMetadata {
	unlocked := rec.Clone()
	unlocked.TitleLock = false
	unlocked.SummaryLock = false
	unlocked.NumberLock = false
	unlocked.NumberSortLock = false
	unlocked.ReadingDirectionLock = false
	unlocked.PublisherLock = false
	unlocked.AgeRatingLock = false
	unlocked.ReleaseDateLock = false
	unlocked.AuthorsLock = false
	unlocked.TagsLock = false

	patch := e.BookPatch
	patch.Series = nil
	out := ApplyBook(patch, unlocked)

	out.TitleLock = rec.TitleLock
	out.SummaryLock = rec.SummaryLock
	out.NumberLock = rec.NumberLock
	out.NumberSortLock = rec.NumberSortLock
	out.ReadingDirectionLock = rec.ReadingDirectionLock
	out.PublisherLock = rec.PublisherLock
	out.AgeRatingLock = rec.AgeRatingLock
	out.ReleaseDateLock = rec.ReleaseDateLock
	out.AuthorsLock = rec.AuthorsLock
	out.TagsLock = rec.TagsLock

	setLock(&out.TitleLock, e.TitleLock)
	setLock(&out.SummaryLock, e.SummaryLock)
	setLock(&out.NumberLock, e.NumberLock)
	setLock(&out.NumberSortLock, e.NumberSortLock)
	setLock(&out.ReadingDirectionLock, e.ReadingDirectionLock)
	setLock(&out.PublisherLock, e.PublisherLock)
	setLock(&out.AgeRatingLock, e.AgeRatingLock)
	setLock(&out.ReleaseDateLock, e.ReleaseDateLock)
	setLock(&out.AuthorsLock, e.AuthorsLock)
	setLock(&out.TagsLock, e.TagsLock)

	return out
}

// ApplySeriesEdit returns rec with the edit applied. Locks do not stop a
// manual edit.
func ApplySeriesEdit(e SeriesEdit, rec models.SeriesMetadata) models.SeriesMetadata {
	unlocked := rec
	unlocked.StatusLock = false
	unlocked.TitleLock = false
	unlocked.TitleSortLock = false

	out := ApplySeries(e.SeriesPatch, unlocked)
	out.StatusLock = rec.StatusLock
	out.TitleLock = rec.TitleLock
	out.TitleSortLock = rec.TitleSortLock

	setLock(&out.StatusLock, e.StatusLock)
	setLock(&out.TitleLock, e.TitleLock)
	setLock(&out.TitleSortLock, e.TitleSortLock)

	return out
}
