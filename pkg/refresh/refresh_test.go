package refresh

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/shoka/internal/testgen"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/config"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/plugins"
	"github.com/shishobooks/shoka/pkg/series"
	"github.com/shishobooks/shoka/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type fakeProvider struct {
	name  string
	patch *metadata.BookPatch
	err   error
	panic bool
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Extract(_ context.Context, _ *models.Book, _ *models.Media) (*metadata.BookPatch, error) {
	p.calls++
	if p.panic {
		panic("provider exploded")
	}
	return p.patch, p.err
}

func setup(t *testing.T) (*bun.DB, *models.Book) {
	t.Helper()
	db := testutils.NewDB(t)
	library := testutils.CreateLibrary(t, db, "manga")
	s := &models.Series{LibraryID: library.ID, Name: "Yotsuba", URL: "/manga/Yotsuba", FileLastModified: time.Now()}
	book := &models.Book{LibraryID: library.ID, Name: "Yotsuba_v01.cbz", URL: "/manga/Yotsuba/Yotsuba_v01.cbz"}
	require.NoError(t, series.NewService(db).CreateSeries(context.Background(), s, []*models.Book{book}))
	return db, book
}

func bookMetadata(t *testing.T, db bun.IDB, bookID int) *models.BookMetadata {
	t.Helper()
	m, err := books.NewService(db).RetrieveBookMetadata(context.Background(), bookID)
	require.NoError(t, err)
	return m
}

func TestRefreshMetadata_LaterProviderPrevails(t *testing.T) {
	t.Parallel()
	db, book := setup(t)

	first := &fakeProvider{name: "first", patch: &metadata.BookPatch{
		Title:     metadata.Value("First"),
		Publisher: metadata.Value("Yen Press"),
	}}
	second := &fakeProvider{name: "second", patch: &metadata.BookPatch{
		Title:   metadata.Value("Second"),
		Summary: metadata.Value("A girl and her dad."),
	}}

	result, err := NewService(db, []metadata.Provider{first, second}).RefreshMetadata(context.Background(), book.ID)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, OutcomeApplied, result.Outcomes[0].Status)
	assert.Equal(t, OutcomeApplied, result.Outcomes[1].Status)
	assert.Empty(t, result.Failures())

	m := bookMetadata(t, db, book.ID)
	assert.Equal(t, "Second", m.Title)
	assert.Equal(t, "Yen Press", m.Publisher)
	assert.Equal(t, "A girl and her dad.", m.Summary)
}

func TestRefreshMetadata_HonorsLocks(t *testing.T) {
	t.Parallel()
	db, book := setup(t)
	ctx := context.Background()

	m := bookMetadata(t, db, book.ID)
	m.Title = "Mine"
	m.TitleLock = true
	require.NoError(t, books.NewService(db).UpdateBookMetadata(ctx, m))

	p := &fakeProvider{name: "p", patch: &metadata.BookPatch{
		Title:     metadata.Value("Theirs"),
		AgeRating: metadata.Value(7),
	}}
	result, err := NewService(db, []metadata.Provider{p}).RefreshMetadata(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, result.Outcomes[0].LockedFields)

	stored := bookMetadata(t, db, book.ID)
	assert.Equal(t, "Mine", stored.Title)
	assert.True(t, stored.TitleLock)
	assert.Equal(t, pointerutil.Int(7), stored.AgeRating)
}

func TestRefreshMetadata_NullClearsAbsentKeeps(t *testing.T) {
	t.Parallel()
	db, book := setup(t)
	ctx := context.Background()

	m := bookMetadata(t, db, book.ID)
	m.AgeRating = pointerutil.Int(12)
	m.Publisher = "Yen Press"
	require.NoError(t, books.NewService(db).UpdateBookMetadata(ctx, m))

	p := &fakeProvider{name: "p", patch: &metadata.BookPatch{AgeRating: metadata.Null[int]()}}
	_, err := NewService(db, []metadata.Provider{p}).RefreshMetadata(ctx, book.ID)
	require.NoError(t, err)

	stored := bookMetadata(t, db, book.ID)
	assert.Nil(t, stored.AgeRating)
	assert.Equal(t, "Yen Press", stored.Publisher)
}

func TestRefreshMetadata_IsolatesProviderFaults(t *testing.T) {
	t.Parallel()
	db, book := setup(t)

	before := &fakeProvider{name: "before", patch: &metadata.BookPatch{Publisher: metadata.Value("Kodansha")}}
	failing := &fakeProvider{name: "failing", err: errors.New("remote unavailable")}
	panicking := &fakeProvider{name: "panicking", panic: true}
	invalid := &fakeProvider{name: "invalid", patch: &metadata.BookPatch{
		Title:     metadata.Value("  "),
		Publisher: metadata.Value("Never"),
	}}
	after := &fakeProvider{name: "after", patch: &metadata.BookPatch{Summary: metadata.Value("Still ran.")}}

	svc := NewService(db, []metadata.Provider{before, failing, panicking, invalid, after})
	result, err := svc.RefreshMetadata(context.Background(), book.ID)
	require.NoError(t, err)

	failures := result.Failures()
	require.Len(t, failures, 3)
	assert.Equal(t, "failing", failures[0].Provider)
	assert.Contains(t, failures[0].Error, "remote unavailable")
	assert.Equal(t, "panicking", failures[1].Provider)
	assert.Contains(t, failures[1].Error, "panicked")
	assert.Equal(t, "invalid", failures[2].Provider)
	assert.Equal(t, 1, after.calls)

	m := bookMetadata(t, db, book.ID)
	assert.Equal(t, "Kodansha", m.Publisher)
	assert.Equal(t, "Still ran.", m.Summary)
	assert.Equal(t, "Yotsuba_v01.cbz", m.Title)
}

func TestRefreshMetadata_AppliesSeriesPatch(t *testing.T) {
	t.Parallel()
	db, book := setup(t)
	ctx := context.Background()
	seriesSvc := series.NewService(db)

	sm, err := seriesSvc.RetrieveSeriesMetadata(ctx, book.SeriesID)
	require.NoError(t, err)
	sm.TitleSortLock = true
	require.NoError(t, seriesSvc.UpdateSeriesMetadata(ctx, sm))

	p := &fakeProvider{name: "p", patch: &metadata.BookPatch{Series: &metadata.SeriesPatch{
		Status:    metadata.Value(models.SeriesStatusEnded),
		TitleSort: metadata.Value("Yotsuba, The"),
	}}}
	result, err := NewService(db, []metadata.Provider{p}).RefreshMetadata(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, result.Outcomes[0].Status)
	assert.Equal(t, []string{"series.title_sort"}, result.Outcomes[0].LockedFields)

	stored, err := seriesSvc.RetrieveSeriesMetadata(ctx, book.SeriesID)
	require.NoError(t, err)
	assert.Equal(t, models.SeriesStatusEnded, stored.Status)
	assert.Equal(t, "Yotsuba", stored.TitleSort)
}

func TestRefreshMetadata_NoOpinionAndIdempotence(t *testing.T) {
	t.Parallel()
	db, book := setup(t)

	silent := &fakeProvider{name: "silent"}
	empty := &fakeProvider{name: "empty", patch: &metadata.BookPatch{}}
	filename := metadata.NewFilenameProvider()
	svc := NewService(db, []metadata.Provider{silent, empty, filename})

	result, err := svc.RefreshMetadata(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoOpinion, result.Outcomes[0].Status)
	assert.Equal(t, OutcomeNoOpinion, result.Outcomes[1].Status)
	assert.Equal(t, OutcomeApplied, result.Outcomes[2].Status)
	assert.Equal(t, "Yotsuba v01", bookMetadata(t, db, book.ID).Title)

	result, err = svc.RefreshMetadata(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, result.Outcomes[2].Status)
}

func TestRefreshMetadata_UnknownBook(t *testing.T) {
	t.Parallel()
	db, book := setup(t)

	_, err := NewService(db, nil).RefreshMetadata(context.Background(), book.ID+1)
	assert.Equal(t, "not_found", errcodes.Code(err))
}

func TestRefreshSeriesMetadata(t *testing.T) {
	t.Parallel()
	db, book := setup(t)
	ctx := context.Background()
	extra := &models.Book{LibraryID: book.LibraryID, Name: "Yotsuba_v02.cbz", URL: "/manga/Yotsuba/Yotsuba_v02.cbz"}
	require.NoError(t, series.NewService(db).AddBooks(ctx, book.SeriesID, []*models.Book{extra}))

	p := &fakeProvider{name: "p", patch: &metadata.BookPatch{Publisher: metadata.Value("Yen Press")}}
	results, err := NewService(db, []metadata.Provider{p}).RefreshSeriesMetadata(ctx, book.SeriesID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, "Yen Press", bookMetadata(t, db, extra.ID).Publisher)

	_, err = NewService(db, nil).RefreshSeriesMetadata(ctx, book.SeriesID+1)
	assert.Equal(t, "not_found", errcodes.Code(err))
}

func TestProviders(t *testing.T) {
	t.Parallel()
	cfg := config.NewForTest()
	manager := plugins.NewManager("")

	providers, err := Providers(cfg, manager)
	require.NoError(t, err)
	require.Len(t, providers, 3)
	assert.Equal(t, "filename", providers[0].Name())
	assert.Equal(t, "sidecar", providers[1].Name())
	assert.Equal(t, "plugins", providers[2].Name())

	cfg.MetadataProviders = []string{"sidecar", "filename"}
	providers, err = Providers(cfg, manager)
	require.NoError(t, err)
	assert.Equal(t, "sidecar", providers[0].Name())

	cfg.MetadataProviders = []string{"goodreads"}
	_, err = Providers(cfg, manager)
	assert.ErrorContains(t, err, `unknown metadata provider "goodreads"`)
}

func TestRefreshMetadata_OnDiskProviders(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	ctx := context.Background()
	library := testutils.CreateLibrary(t, db, "manga")

	root := testgen.LibraryDir(t)
	dir, paths := testgen.SeriesDir(t, root, "Yotsuba", "Yotsuba_v01.cbz")
	testgen.Sidecar(t, paths[0], `{"version": 1, "title": "Yotsuba&! Vol. 1", "publisher": "Kodansha"}`)

	pluginDir := filepath.Join(root, ".plugins")
	testgen.Plugin(t, pluginDir, "tagger", testgen.Manifest("tagger", "0.1.0"), `
		var plugin = {
			extract: function (book) {
				return { tags: ["comedy"], summary: "From " + book.fileName };
			}
		};`)
	manager := plugins.NewManager(pluginDir)
	require.NoError(t, manager.Load(ctx))

	s := &models.Series{LibraryID: library.ID, Name: "Yotsuba", URL: "file://" + dir, FileLastModified: time.Now()}
	book := &models.Book{LibraryID: library.ID, Name: "Yotsuba_v01.cbz", URL: "file://" + paths[0]}
	require.NoError(t, series.NewService(db).CreateSeries(ctx, s, []*models.Book{book}))

	providers, err := Providers(config.NewForTest(), manager)
	require.NoError(t, err)

	result, err := NewService(db, providers).RefreshMetadata(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 3)
	for _, o := range result.Outcomes {
		assert.Equal(t, OutcomeApplied, o.Status, o.Provider)
	}

	m := bookMetadata(t, db, book.ID)
	assert.Equal(t, "Yotsuba&! Vol. 1", m.Title)
	assert.Equal(t, "Kodansha", m.Publisher)
	assert.Equal(t, "From Yotsuba_v01.cbz", m.Summary)
	assert.Equal(t, []string{"comedy"}, m.Tags)
}
