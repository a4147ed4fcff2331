package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/models"
)

func (w *Worker) ProcessRefreshBookMetadataJob(ctx context.Context, job *models.Job) error {
	data, ok := job.DataParsed.(*models.JobRefreshBookMetadataData)
	if !ok {
		return errors.Errorf("unexpected data for %s job", job.Type)
	}

	_, err := w.refreshService.RefreshMetadata(ctx, data.BookID)
	return errors.WithStack(err)
}

func (w *Worker) ProcessRefreshSeriesMetadataJob(ctx context.Context, job *models.Job) error {
	data, ok := job.DataParsed.(*models.JobRefreshSeriesMetadataData)
	if !ok {
		return errors.Errorf("unexpected data for %s job", job.Type)
	}

	results, err := w.refreshService.RefreshSeriesMetadata(ctx, data.SeriesID)
	if err != nil {
		return errors.WithStack(err)
	}

	failures := 0
	for _, r := range results {
		failures += len(r.Failures())
	}
	logger.FromContext(ctx).Info("series metadata refreshed", logger.Data{
		"series_id": data.SeriesID,
		"books":     len(results),
		"failures":  failures,
	})
	return nil
}

func (w *Worker) ProcessSortSeriesJob(ctx context.Context, job *models.Job) error {
	data, ok := job.DataParsed.(*models.JobSortSeriesData)
	if !ok {
		return errors.Errorf("unexpected data for %s job", job.Type)
	}

	return errors.WithStack(w.seriesService.SortBooks(ctx, data.SeriesID))
}
