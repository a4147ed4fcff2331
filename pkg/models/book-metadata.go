package models

import (
	"sort"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

const (
	ReadingDirectionLeftToRight = "LEFT_TO_RIGHT"
	ReadingDirectionRightToLeft = "RIGHT_TO_LEFT"
	ReadingDirectionVertical    = "VERTICAL"
	ReadingDirectionWebtoon     = "WEBTOON"
)

var validReadingDirections = map[string]struct{}{
	ReadingDirectionLeftToRight: {},
	ReadingDirectionRightToLeft: {},
	ReadingDirectionVertical:    {},
	ReadingDirectionWebtoon:     {},
}

// BookMetadata is owned by exactly one Book. Every value field has a lock;
// a locked field is never changed by automatic refreshes.
type BookMetadata struct {
	bun.BaseModel `bun:"table:book_metadata,alias:bm"`

	BookID               int        `bun:",pk" json:"book_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Title                string     `bun:",nullzero" json:"title"`
	TitleLock            bool       `json:"title_lock"`
	Summary              string     `json:"summary"`
	SummaryLock          bool       `json:"summary_lock"`
	Number               string     `bun:",nullzero" json:"number"`
	NumberLock           bool       `json:"number_lock"`
	NumberSort           float64    `json:"number_sort"`
	NumberSortLock       bool       `json:"number_sort_lock"`
	ReadingDirection     *string    `json:"reading_direction"`
	ReadingDirectionLock bool       `json:"reading_direction_lock"`
	Publisher            string     `json:"publisher"`
	PublisherLock        bool       `json:"publisher_lock"`
	AgeRating            *int       `json:"age_rating"`
	AgeRatingLock        bool       `json:"age_rating_lock"`
	ReleaseDate          *time.Time `json:"release_date"`
	ReleaseDateLock      bool       `json:"release_date_lock"`
	Authors              []Author   `bun:"-" json:"authors"`
	AuthorsLock          bool       `json:"authors_lock"`
	Tags                 []string   `bun:"-" json:"tags"`
	TagsLock             bool       `json:"tags_lock"`
}

// NewBookMetadata seeds the metadata of a book that was just given ordinal
// number in its series.
func NewBookMetadata(book *Book, number int) *BookMetadata {
	return &BookMetadata{
		BookID:     book.ID,
		Title:      book.Name,
		Number:     strconv.Itoa(number),
		NumberSort: float64(number),
		Authors:    []Author{},
		Tags:       []string{},
	}
}

// Clone returns a deep copy so that callers can derive a new record without
// sharing slices or pointers with the original.
func (m BookMetadata) Clone() BookMetadata {
	c := m
	if m.ReadingDirection != nil {
		v := *m.ReadingDirection
		c.ReadingDirection = &v
	}
	if m.AgeRating != nil {
		v := *m.AgeRating
		c.AgeRating = &v
	}
	if m.ReleaseDate != nil {
		v := *m.ReleaseDate
		c.ReleaseDate = &v
	}
	if m.Authors != nil {
		c.Authors = append([]Author{}, m.Authors...)
	}
	if m.Tags != nil {
		c.Tags = append([]string{}, m.Tags...)
	}
	return c
}

// Normalize trims text fields, normalizes authors and turns tags into a
// sorted set. It fails if an author has a blank name or role.
func (m *BookMetadata) Normalize() error {
	m.Title = trim(m.Title)
	m.Summary = trim(m.Summary)
	m.Number = trim(m.Number)
	m.Publisher = trim(m.Publisher)

	authors := make([]Author, 0, len(m.Authors))
	for _, a := range m.Authors {
		author, err := NewAuthor(a.Name, a.Role)
		if err != nil {
			return err
		}
		authors = append(authors, author)
	}
	m.Authors = authors

	seen := map[string]struct{}{}
	tags := make([]string, 0, len(m.Tags))
	for _, tag := range m.Tags {
		tag = trim(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	m.Tags = tags

	return nil
}

func (m *BookMetadata) Validate() error {
	if m.Title == "" {
		return blank("Title")
	}
	if m.Number == "" {
		return blank("Number")
	}
	if m.AgeRating != nil && *m.AgeRating < 0 {
		return invalid("Age rating", *m.AgeRating)
	}
	if m.ReadingDirection != nil {
		if _, ok := validReadingDirections[*m.ReadingDirection]; !ok {
			return invalid("Reading direction", *m.ReadingDirection)
		}
	}
	return nil
}
