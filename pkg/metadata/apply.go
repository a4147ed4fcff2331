package metadata

import (
	"strconv"
	"time"

	"github.com/shishobooks/shoka/pkg/models"
)

// ApplyBook merges p into rec and returns the result. rec is not modified.
// A field changes only when the patch has an opinion on it and the record
// does not lock it. Lock flags are carried over untouched.
func ApplyBook(p BookPatch, rec models.BookMetadata) models.BookMetadata {
	out := rec.Clone()

	out.Title = apply(p.Title, rec.TitleLock, out.Title)
	out.Summary = apply(p.Summary, rec.SummaryLock, out.Summary)
	out.Number = apply(p.Number, rec.NumberLock, out.Number)
	out.NumberSort = apply(p.NumberSort, rec.NumberSortLock, out.NumberSort)
	out.ReadingDirection = applyNullable(p.ReadingDirection, rec.ReadingDirectionLock, out.ReadingDirection)
	out.Publisher = apply(p.Publisher, rec.PublisherLock, out.Publisher)
	out.AgeRating = applyNullable(p.AgeRating, rec.AgeRatingLock, out.AgeRating)
	out.ReleaseDate = applyReleaseDate(p.ReleaseDate, rec.ReleaseDateLock, out.ReleaseDate)

	// Lists are replaced whole, never merged item by item. Null clears them.
	if p.Authors.IsPresent() && !rec.AuthorsLock {
		authors, _ := p.Authors.Get()
		out.Authors = append([]models.Author{}, authors...)
	}
	if p.Tags.IsPresent() && !rec.TagsLock {
		tags, _ := p.Tags.Get()
		out.Tags = append([]string{}, tags...)
	}

	return out
}

// applyReleaseDate stores dates in UTC and keeps the current value when the
// patch names the same instant in another zone.
func applyReleaseDate(f Field[time.Time], locked bool, current *time.Time) *time.Time {
	next := applyNullable(f, locked, current)
	if next == nil || next == current {
		return next
	}
	if current != nil && current.Equal(*next) {
		return current
	}
	utc := next.UTC()
	return &utc
}

// ApplySeries merges p into rec with the same rules as ApplyBook.
func ApplySeries(p SeriesPatch, rec models.SeriesMetadata) models.SeriesMetadata {
	out := rec
	out.Status = apply(p.Status, rec.StatusLock, out.Status)
	out.Title = apply(p.Title, rec.TitleLock, out.Title)
	out.TitleSort = apply(p.TitleSort, rec.TitleSortLock, out.TitleSort)
	return out
}

// LockedBookFields names the fields p has an opinion on that rec locks.
func LockedBookFields(p BookPatch, rec models.BookMetadata) []string {
	var fields []string
	check := func(name string, present, locked bool) {
		if present && locked {
			fields = append(fields, name)
		}
	}
	check("title", p.Title.IsPresent(), rec.TitleLock)
	check("summary", p.Summary.IsPresent(), rec.SummaryLock)
	check("number", p.Number.IsPresent(), rec.NumberLock)
	check("number_sort", p.NumberSort.IsPresent(), rec.NumberSortLock)
	check("reading_direction", p.ReadingDirection.IsPresent(), rec.ReadingDirectionLock)
	check("publisher", p.Publisher.IsPresent(), rec.PublisherLock)
	check("age_rating", p.AgeRating.IsPresent(), rec.AgeRatingLock)
	check("release_date", p.ReleaseDate.IsPresent(), rec.ReleaseDateLock)
	check("authors", p.Authors.IsPresent(), rec.AuthorsLock)
	check("tags", p.Tags.IsPresent(), rec.TagsLock)
	return fields
}

// LockedSeriesFields names the fields p has an opinion on that rec locks.
func LockedSeriesFields(p SeriesPatch, rec models.SeriesMetadata) []string {
	var fields []string
	if p.Status.IsPresent() && rec.StatusLock {
		fields = append(fields, "status")
	}
	if p.Title.IsPresent() && rec.TitleLock {
		fields = append(fields, "title")
	}
	if p.TitleSort.IsPresent() && rec.TitleSortLock {
		fields = append(fields, "title_sort")
	}
	return fields
}

func formatOrdinal(ordinal int) string {
	return strconv.Itoa(ordinal)
}
