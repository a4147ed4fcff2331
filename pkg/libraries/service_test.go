package libraries

import (
	"context"
	"testing"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLibrary(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := &models.Library{Name: "Manga", Root: "/data/manga"}
	require.NoError(t, svc.CreateLibrary(ctx, library))
	assert.NotZero(t, library.ID)

	got, err := svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &library.ID})
	require.NoError(t, err)
	assert.Equal(t, "/data/manga", got.Root)

	err = svc.CreateLibrary(ctx, &models.Library{Name: "manga", Root: "/elsewhere"})
	assert.Equal(t, "conflict", errcodes.Code(err))

	missing := library.ID + 1
	_, err = svc.RetrieveLibrary(ctx, RetrieveLibraryOptions{ID: &missing})
	assert.Equal(t, "not_found", errcodes.Code(err))
}

func TestListAndUpdateLibraries(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	comics := &models.Library{Name: "Comics", Root: "/data/comics"}
	manga := &models.Library{Name: "Manga", Root: "/data/manga"}
	require.NoError(t, svc.CreateLibrary(ctx, manga))
	require.NoError(t, svc.CreateLibrary(ctx, comics))

	list, total, err := svc.ListLibrariesWithTotal(ctx, ListLibrariesOptions{Limit: pointerutil.Int(1)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Comics", list[0].Name)

	comics.Name = "Manga"
	err = svc.UpdateLibrary(ctx, comics, UpdateLibraryOptions{Columns: []string{"name"}})
	assert.Equal(t, "conflict", errcodes.Code(err))

	comics.Name = "Graphic Novels"
	require.NoError(t, svc.UpdateLibrary(ctx, comics, UpdateLibraryOptions{Columns: []string{"name"}}))
	all, err := svc.ListLibraries(ctx, ListLibrariesOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Graphic Novels", all[0].Name)
}
