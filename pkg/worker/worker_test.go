package worker

import (
	"context"
	"testing"
	"time"

	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/config"
	"github.com/shishobooks/shoka/pkg/jobs"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/series"
	"github.com/shishobooks/shoka/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type titleProvider struct {
	title string
}

func (p *titleProvider) Name() string { return "title" }

func (p *titleProvider) Extract(_ context.Context, _ *models.Book, _ *models.Media) (*metadata.BookPatch, error) {
	return &metadata.BookPatch{Title: metadata.Value(p.title)}, nil
}

func setup(t *testing.T, providers ...metadata.Provider) (*Worker, *bun.DB, *models.Series) {
	t.Helper()
	db := testutils.NewDB(t)
	library := testutils.CreateLibrary(t, db, "manga")

	s := &models.Series{LibraryID: library.ID, Name: "Yotsuba", URL: "/manga/Yotsuba", FileLastModified: time.Now()}
	bs := []*models.Book{
		{LibraryID: library.ID, Name: "Yotsuba_v01.cbz", URL: "/manga/Yotsuba/Yotsuba_v01.cbz"},
		{LibraryID: library.ID, Name: "Yotsuba_v02.cbz", URL: "/manga/Yotsuba/Yotsuba_v02.cbz"},
	}
	require.NoError(t, series.NewService(db).CreateSeries(context.Background(), s, bs))

	cfg := config.NewForTest()
	cfg.WorkerProcesses = 1
	return New(cfg, db, providers), db, s
}

func retrieveJob(t *testing.T, db bun.IDB, id int) *models.Job {
	t.Helper()
	job, err := jobs.NewService(db).RetrieveJob(context.Background(), jobs.RetrieveJobOptions{ID: &id})
	require.NoError(t, err)
	return job
}

func TestProcessJob_SortSeries(t *testing.T) {
	t.Parallel()
	w, db, s := setup(t)
	ctx := context.Background()

	_, err := db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("number = 9").
		Where("series_id = ?", s.ID).
		Where("name = ?", "Yotsuba_v01.cbz").
		Exec(ctx)
	require.NoError(t, err)

	job, err := jobs.NewService(db).Enqueue(ctx, models.JobTypeSortSeries, models.JobSortSeriesData{SeriesID: s.ID})
	require.NoError(t, err)

	w.processJob(job)

	done := retrieveJob(t, db, job.ID)
	assert.Equal(t, models.JobStatusCompleted, done.Status)
	assert.Nil(t, done.Error)

	bs, err := books.NewService(db).ListBooks(ctx, books.ListBooksOptions{SeriesID: &s.ID})
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, "Yotsuba_v01.cbz", bs[0].Name)
	assert.Equal(t, 1, bs[0].Number)
	assert.Equal(t, 2, bs[1].Number)
}

func TestProcessJob_FailureRecordsError(t *testing.T) {
	t.Parallel()
	w, db, _ := setup(t)

	job, err := jobs.NewService(db).Enqueue(context.Background(), models.JobTypeSortSeries, models.JobSortSeriesData{SeriesID: 404})
	require.NoError(t, err)

	w.processJob(job)

	failed := retrieveJob(t, db, job.ID)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	require.NotNil(t, failed.Error)
	assert.Contains(t, *failed.Error, "not found")
}

func TestProcessJob_SkipsClaimedJobs(t *testing.T) {
	t.Parallel()
	w, db, s := setup(t)
	ctx := context.Background()
	svc := jobs.NewService(db)

	job, err := svc.Enqueue(ctx, models.JobTypeSortSeries, models.JobSortSeriesData{SeriesID: s.ID})
	require.NoError(t, err)
	claimed, err := svc.ClaimJob(ctx, &models.Job{ID: job.ID}, "someone-else")
	require.NoError(t, err)
	require.True(t, claimed)

	w.processJob(job)

	got := retrieveJob(t, db, job.ID)
	assert.Equal(t, models.JobStatusInProgress, got.Status)
	assert.Equal(t, pointerutil.String("someone-else"), got.ProcessID)
}

func TestProcessJob_RefreshJobs(t *testing.T) {
	t.Parallel()
	w, db, s := setup(t, &titleProvider{title: "Yotsuba&!"})
	ctx := context.Background()
	svc := jobs.NewService(db)
	bookService := books.NewService(db)

	bs, err := bookService.ListBooks(ctx, books.ListBooksOptions{SeriesID: &s.ID})
	require.NoError(t, err)

	job, err := svc.Enqueue(ctx, models.JobTypeRefreshBookMetadata, models.JobRefreshBookMetadataData{BookID: bs[0].ID})
	require.NoError(t, err)
	w.processJob(job)
	assert.Equal(t, models.JobStatusCompleted, retrieveJob(t, db, job.ID).Status)

	m, err := bookService.RetrieveBookMetadata(ctx, bs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Yotsuba&!", m.Title)

	job, err = svc.Enqueue(ctx, models.JobTypeRefreshSeriesMetadata, models.JobRefreshSeriesMetadataData{SeriesID: s.ID})
	require.NoError(t, err)
	w.processJob(job)
	assert.Equal(t, models.JobStatusCompleted, retrieveJob(t, db, job.ID).Status)

	m, err = bookService.RetrieveBookMetadata(ctx, bs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Yotsuba&!", m.Title)
}

func TestStartAndShutdown(t *testing.T) {
	t.Parallel()
	w, db, s := setup(t)
	w.pollInterval = 10 * time.Millisecond
	ctx := context.Background()
	svc := jobs.NewService(db)

	abandoned, err := svc.Enqueue(ctx, models.JobTypeRefreshSeriesMetadata, models.JobRefreshSeriesMetadataData{SeriesID: s.ID})
	require.NoError(t, err)
	_, err = svc.ClaimJob(ctx, abandoned, "crashed-process")
	require.NoError(t, err)

	job, err := svc.Enqueue(ctx, models.JobTypeSortSeries, models.JobSortSeriesData{SeriesID: s.ID})
	require.NoError(t, err)

	w.Start()
	require.Eventually(t, func() bool {
		return retrieveJob(t, db, job.ID).Status == models.JobStatusCompleted &&
			retrieveJob(t, db, abandoned.ID).Status == models.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)
	w.Shutdown()
}
