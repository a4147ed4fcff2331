package sidecar

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
)

const Suffix = ".metadata.json"

// Path returns the sidecar path of a book file. The locator may be a plain
// path or a file:// URL.
func Path(locator string) string {
	return strings.TrimPrefix(locator, "file://") + Suffix
}

// Read reads and parses a sidecar file. It returns nil, nil if the sidecar
// doesn't exist.
func Read(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	var s Sidecar
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "invalid sidecar %s", path)
	}
	if s.Version > CurrentVersion {
		return nil, errors.Errorf("sidecar %s has unsupported version %d", path, s.Version)
	}

	return &s, nil
}

// Write writes a sidecar file, leaving out every absent field.
func Write(path string, s *Sidecar) error {
	if s.Version == 0 {
		s.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	// Sidecar files should be readable by users and other applications
	return errors.WithStack(os.WriteFile(path, data, 0644)) //nolint:gosec
}

// FromMetadata builds a sidecar holding every value field of the given
// records. Unset nullable fields are written as null. sm may be nil.
func FromMetadata(m *models.BookMetadata, sm *models.SeriesMetadata) *Sidecar {
	s := &Sidecar{
		Version: CurrentVersion,
		BookPatch: metadata.BookPatch{
			Title:            metadata.Value(m.Title),
			Summary:          metadata.Value(m.Summary),
			Number:           metadata.Value(m.Number),
			NumberSort:       metadata.Value(m.NumberSort),
			ReadingDirection: nullable(m.ReadingDirection),
			Publisher:        metadata.Value(m.Publisher),
			AgeRating:        nullable(m.AgeRating),
			ReleaseDate:      nullable(m.ReleaseDate),
			Authors:          metadata.Value(m.Authors),
			Tags:             metadata.Value(m.Tags),
		},
	}
	if sm != nil {
		s.Series = &metadata.SeriesPatch{
			Status:    metadata.Value(sm.Status),
			Title:     metadata.Value(sm.Title),
			TitleSort: metadata.Value(sm.TitleSort),
		}
	}
	return s
}

func nullable[T any](v *T) metadata.Field[T] {
	if v == nil {
		return metadata.Null[T]()
	}
	return metadata.Value(*v)
}
