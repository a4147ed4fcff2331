package metadata

import (
	"time"

	"github.com/shishobooks/shoka/pkg/models"
)

// BookPatch is a sparse update proposed for a book's metadata. It never
// carries lock flags.
type BookPatch struct {
	Title            Field[string]          `json:"title,omitzero"`
	Summary          Field[string]          `json:"summary,omitzero"`
	Number           Field[string]          `json:"number,omitzero"`
	NumberSort       Field[float64]         `json:"number_sort,omitzero"`
	ReadingDirection Field[string]          `json:"reading_direction,omitzero"`
	Publisher        Field[string]          `json:"publisher,omitzero"`
	AgeRating        Field[int]             `json:"age_rating,omitzero"`
	ReleaseDate      Field[time.Time]       `json:"release_date,omitzero"`
	Authors          Field[[]models.Author] `json:"authors,omitzero"`
	Tags             Field[[]string]        `json:"tags,omitzero"`

	// Series is applied to the metadata of the series the book belongs to.
	Series *SeriesPatch `json:"series,omitempty"`
}

// SeriesPatch is a sparse update proposed for a series' metadata.
type SeriesPatch struct {
	Status    Field[string] `json:"status,omitzero"`
	Title     Field[string] `json:"title,omitzero"`
	TitleSort Field[string] `json:"title_sort,omitzero"`
}

// IsEmpty reports whether the patch has no opinion on any book field. The
// embedded series patch is not considered.
func (p BookPatch) IsEmpty() bool {
	return !p.Title.IsPresent() &&
		!p.Summary.IsPresent() &&
		!p.Number.IsPresent() &&
		!p.NumberSort.IsPresent() &&
		!p.ReadingDirection.IsPresent() &&
		!p.Publisher.IsPresent() &&
		!p.AgeRating.IsPresent() &&
		!p.ReleaseDate.IsPresent() &&
		!p.Authors.IsPresent() &&
		!p.Tags.IsPresent()
}

func (p SeriesPatch) IsEmpty() bool {
	return !p.Status.IsPresent() && !p.Title.IsPresent() && !p.TitleSort.IsPresent()
}

// NumberPatch proposes a book's position in its series as its display
// number and sort key.
func NumberPatch(ordinal int) BookPatch {
	return BookPatch{
		Number:     Value(formatOrdinal(ordinal)),
		NumberSort: Value(float64(ordinal)),
	}
}
