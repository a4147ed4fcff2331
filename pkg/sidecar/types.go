package sidecar

import "github.com/shishobooks/shoka/pkg/metadata"

// CurrentVersion is the current version of the sidecar file format.
// Increment this when making breaking changes to the schema.
const CurrentVersion = 1

// Sidecar is the metadata file stored next to a book as
// {filename}.metadata.json. Every metadata key is optional: a missing key
// means the file has no opinion and null clears the field. An embedded
// "series" object describes the book's series.
type Sidecar struct {
	Version int `json:"version"`
	metadata.BookPatch
}
