package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/shishobooks/shoka/pkg/config"
	"github.com/shishobooks/shoka/pkg/jobs"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/refresh"
	"github.com/shishobooks/shoka/pkg/series"
	"github.com/uptrace/bun"
)

const defaultPollInterval = 5 * time.Second

var processID = uuid.NewString()

type Worker struct {
	config       *config.Config
	log          logger.Logger
	pollInterval time.Duration

	processFuncs map[string]func(ctx context.Context, job *models.Job) error

	jobService     *jobs.Service
	refreshService *refresh.Service
	seriesService  *series.Service

	queue          chan *models.Job
	shutdown       chan struct{}
	doneFetching   chan struct{}
	doneProcessing chan struct{}
}

func New(cfg *config.Config, db *bun.DB, providers []metadata.Provider) *Worker {
	w := &Worker{
		config:       cfg,
		log:          logger.New(),
		pollInterval: defaultPollInterval,

		jobService:     jobs.NewService(db),
		refreshService: refresh.NewService(db, providers),
		seriesService:  series.NewService(db),

		queue:          make(chan *models.Job, cfg.WorkerProcesses),
		shutdown:       make(chan struct{}),
		doneFetching:   make(chan struct{}),
		doneProcessing: make(chan struct{}, cfg.WorkerProcesses),
	}

	w.processFuncs = map[string]func(ctx context.Context, job *models.Job) error{
		models.JobTypeRefreshBookMetadata:   w.ProcessRefreshBookMetadataJob,
		models.JobTypeRefreshSeriesMetadata: w.ProcessRefreshSeriesMetadataJob,
		models.JobTypeSortSeries:            w.ProcessSortSeriesJob,
	}

	return w
}

func (w *Worker) Start() {
	n, err := w.jobService.RequeueAbandonedJobs(context.Background(), processID)
	if err != nil {
		w.log.Err(err).Error("requeue abandoned jobs error")
	} else if n > 0 {
		w.log.Info("requeued abandoned jobs", logger.Data{"count": n})
	}

	go w.fetchJobs()
	for i := 0; i < w.config.WorkerProcesses; i++ {
		go w.processJobs()
	}
}

func (w *Worker) fetchJobs() {
	timer := time.NewTimer(w.pollInterval)

	for {
		select {
		case <-w.shutdown:
			// Stop feeding the queue; processors drain on their own.
			timer.Stop()
			w.doneFetching <- struct{}{}
			return
		case <-timer.C:
			j, err := w.jobService.ListJobs(context.Background(), jobs.ListJobsOptions{
				Limit:    pointerutil.Int(w.config.WorkerProcesses),
				Statuses: []string{models.JobStatusPending},
			})
			if err != nil {
				w.log.Err(err).Error("list jobs error")
				timer.Reset(w.pollInterval)
				continue
			}
			for _, job := range j {
				select {
				case w.queue <- job:
				case <-w.shutdown:
					w.doneFetching <- struct{}{}
					return
				}
			}
			timer.Reset(w.pollInterval)
		}
	}
}

func (w *Worker) processJobs() {
	for {
		select {
		case <-w.shutdown:
			w.doneProcessing <- struct{}{}
			return
		case job := <-w.queue:
			w.processJob(job)
		}
	}
}

// processJob claims job and runs it to completion. A job that another
// processor claimed first is skipped.
func (w *Worker) processJob(job *models.Job) {
	id := uuid.NewString()
	log := w.log.ID(id).Root(logger.Data{"job_id": job.ID, "type": job.Type, "process_id": processID})
	ctx := log.WithContext(context.Background())

	claimed, err := w.jobService.ClaimJob(ctx, job, processID)
	if err != nil {
		log.Err(err).Error("claim job error")
		return
	}
	if !claimed {
		log.Debug("job already claimed")
		return
	}

	start := time.Now()
	err = w.run(ctx, job)
	if err != nil {
		log.Err(err).Error("process error")
		job.Status = models.JobStatusFailed
		job.Error = pointerutil.String(err.Error())
	} else {
		job.Status = models.JobStatusCompleted
		log.Info("job completed", logger.Data{"duration": time.Since(start).String()})
	}

	err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status", "error"},
	})
	if err != nil {
		log.Err(err).Error("update job error")
	}
}

func (w *Worker) run(ctx context.Context, job *models.Job) (err error) {
	fn, ok := w.processFuncs[job.Type]
	if !ok {
		return errors.Errorf("can't find process function for type %q", job.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()

	return fn(ctx, job)
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	<-w.doneFetching
	for i := 0; i < w.config.WorkerProcesses; i++ {
		<-w.doneProcessing
	}
}
