package sidecar

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/shoka/internal/testgen"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/books/a/v01.cbz.metadata.json", Path("/books/a/v01.cbz"))
	assert.Equal(t, "/books/a/v01.cbz.metadata.json", Path("file:///books/a/v01.cbz"))
}

func TestRead_Missing(t *testing.T) {
	t.Parallel()
	s, err := Read(filepath.Join(t.TempDir(), "nope.cbz"+Suffix))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRead_DistinguishesAbsentFromNull(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "v01.cbz"+Suffix)
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": 1,
		"title": "Yotsuba&!",
		"age_rating": null,
		"authors": [{"name": "Kiyohiko Azuma", "role": "writer"}],
		"series": {"status": "ENDED"}
	}`), 0644))

	s, err := Read(path)
	require.NoError(t, err)
	require.NotNil(t, s)

	title, ok := s.Title.Get()
	assert.True(t, ok)
	assert.Equal(t, "Yotsuba&!", title)
	assert.True(t, s.AgeRating.IsNull())
	assert.False(t, s.Publisher.IsPresent())
	require.NotNil(t, s.Series)
	assert.True(t, s.Series.Status.IsPresent())
	assert.False(t, s.Series.Title.IsPresent())
}

func TestRead_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad"+Suffix)
	require.NoError(t, os.WriteFile(bad, []byte(`{"title":`), 0644))
	_, err := Read(bad)
	assert.Error(t, err)

	future := filepath.Join(dir, "future"+Suffix)
	require.NoError(t, os.WriteFile(future, []byte(`{"version": 99}`), 0644))
	_, err = Read(future)
	assert.ErrorContains(t, err, "unsupported version 99")
}

func TestWriteThenRead(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "v01.cbz"+Suffix)
	released := time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC)

	m := &models.BookMetadata{
		Title:       "Yotsuba&! 1",
		Number:      "1",
		NumberSort:  1,
		Publisher:   "Yen Press",
		AgeRating:   pointerutil.Int(7),
		ReleaseDate: &released,
		Authors:     []models.Author{{Name: "Kiyohiko Azuma", Role: "writer"}},
		Tags:        []string{"comedy"},
	}
	sm := &models.SeriesMetadata{Status: models.SeriesStatusOngoing, Title: "Yotsuba&!", TitleSort: "Yotsuba&!"}

	require.NoError(t, Write(path, FromMetadata(m, sm)))

	s, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, s.Version)

	applied := metadata.ApplyBook(s.BookPatch, models.BookMetadata{ReadingDirection: pointerutil.String("WEBTOON")})
	assert.Equal(t, "Yotsuba&! 1", applied.Title)
	assert.Equal(t, "Yen Press", applied.Publisher)
	assert.Equal(t, 7, *applied.AgeRating)
	assert.True(t, released.Equal(*applied.ReleaseDate))
	assert.Nil(t, applied.ReadingDirection)
	assert.Equal(t, m.Authors, applied.Authors)

	require.NotNil(t, s.Series)
	status, _ := s.Series.Status.Get()
	assert.Equal(t, models.SeriesStatusOngoing, status)
}

func TestProvider(t *testing.T) {
	t.Parallel()
	_, paths := testgen.SeriesDir(t, testgen.LibraryDir(t), "Yotsuba", "v01.cbz")
	bookPath := paths[0]
	p := NewProvider()
	book := &models.Book{Name: "v01", URL: "file://" + bookPath}

	patch, err := p.Extract(context.Background(), book, nil)
	require.NoError(t, err)
	assert.Nil(t, patch)

	assert.Equal(t, Path(bookPath), testgen.Sidecar(t, bookPath, `{"version":1,"publisher":"Kodansha"}`))
	patch, err = p.Extract(context.Background(), book, nil)
	require.NoError(t, err)
	require.NotNil(t, patch)
	publisher, ok := patch.Publisher.Get()
	assert.True(t, ok)
	assert.Equal(t, "Kodansha", publisher)
	assert.False(t, patch.Title.IsPresent())
	assert.Equal(t, "sidecar", p.Name())
}
