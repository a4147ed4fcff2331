package series

import (
	"context"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSeries(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	manga := testutils.CreateLibrary(t, db, "manga")
	comics := testutils.CreateLibrary(t, db, "comics")

	testutils.CreateSeries(t, db, manga, "Yotsuba")
	testutils.CreateSeries(t, db, manga, "Akira")
	testutils.CreateSeries(t, db, comics, "Saga")

	list, total, err := svc.ListSeriesWithTotal(ctx, ListSeriesOptions{LibraryID: &manga.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Akira", list[0].Name)
	assert.Equal(t, "Yotsuba", list[1].Name)
	require.NotNil(t, list[0].Metadata)
	assert.Equal(t, "Akira", list[0].Metadata.Title)

	page, err := svc.ListSeries(ctx, ListSeriesOptions{Limit: pointerutil.Int(1), Offset: pointerutil.Int(1)})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Saga", page[0].Name)
}

func TestRetrieveSeries_CountsBooks(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	library := testutils.CreateLibrary(t, db, "manga")
	series := createSeries(t, svc, library, "a", "b", "c")

	got, err := svc.RetrieveSeriesByID(context.Background(), series.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.BookCount)
	assert.Equal(t, library.ID, got.LibraryID)

	_, err = svc.RetrieveSeriesByID(context.Background(), series.ID+1)
	assert.Equal(t, "not_found", errcodes.Code(err))
}

func TestEditSeriesMetadata(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	library := testutils.CreateLibrary(t, db, "manga")
	series := testutils.CreateSeries(t, db, library, "Yotsuba")

	lock := true
	updated, err := svc.EditSeriesMetadata(ctx, series.ID, metadata.SeriesEdit{
		SeriesPatch: metadata.SeriesPatch{
			Status: metadata.Value(models.SeriesStatusHiatus),
			Title:  metadata.Value(" Yotsuba&! "),
		},
		TitleLock: &lock,
	})
	require.NoError(t, err)
	assert.Equal(t, "Yotsuba&!", updated.Title)
	assert.True(t, updated.TitleLock)

	stored, err := svc.RetrieveSeriesMetadata(ctx, series.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SeriesStatusHiatus, stored.Status)
	assert.Equal(t, "Yotsuba&!", stored.Title)
	assert.True(t, stored.TitleLock)
	assert.Equal(t, "Yotsuba", stored.TitleSort)

	_, err = svc.EditSeriesMetadata(ctx, series.ID, metadata.SeriesEdit{
		SeriesPatch: metadata.SeriesPatch{Status: metadata.Value("PAUSED")},
	})
	assert.Equal(t, "validation_error", errcodes.Code(err))

	_, err = svc.EditSeriesMetadata(ctx, series.ID+1, metadata.SeriesEdit{})
	assert.Equal(t, "not_found", errcodes.Code(err))
}
