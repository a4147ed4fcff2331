package models

import (
	"strings"

	"github.com/uptrace/bun"
)

// Author is a credit on a book. Values are always normalized: the name is
// trimmed and the role is trimmed and lower-cased.
type Author struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func NewAuthor(name, role string) (Author, error) {
	a := Author{
		Name: trim(name),
		Role: strings.ToLower(trim(role)),
	}
	if a.Name == "" {
		return Author{}, blank("Author name")
	}
	if a.Role == "" {
		return Author{}, blank("Author role")
	}
	return a, nil
}

// BookMetadataAuthor is the stored form of an Author. Position keeps the
// list order.
type BookMetadataAuthor struct {
	bun.BaseModel `bun:"table:book_metadata_authors,alias:bma"`

	ID       int `bun:",pk,nullzero"`
	BookID   int `bun:",nullzero"`
	Position int
	Name     string `bun:",nullzero"`
	Role     string `bun:",nullzero"`
}

type BookMetadataTag struct {
	bun.BaseModel `bun:"table:book_metadata_tags,alias:bmt"`

	ID     int    `bun:",pk,nullzero"`
	BookID int    `bun:",nullzero"`
	Tag    string `bun:",nullzero"`
}
