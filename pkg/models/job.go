package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeRefreshBookMetadata   = "refresh_book_metadata"
	JobTypeRefreshSeriesMetadata = "refresh_series_metadata"
	JobTypeSortSeries            = "sort_series"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         int         `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Type       string      `bun:",nullzero" json:"type"`
	Status     string      `bun:",nullzero" json:"status"`
	Data       string      `bun:",nullzero" json:"-"`
	DataParsed interface{} `bun:"-" json:"data"`
	Error      *string     `json:"error,omitempty"`
	ProcessID  *string     `json:"process_id,omitempty"`
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeRefreshBookMetadata:
		job.DataParsed = &JobRefreshBookMetadataData{}
	case JobTypeRefreshSeriesMetadata:
		job.DataParsed = &JobRefreshSeriesMetadataData{}
	case JobTypeSortSeries:
		job.DataParsed = &JobSortSeriesData{}
	default:
		return errors.Errorf("unknown job type %q", job.Type)
	}

	err := json.Unmarshal([]byte(job.Data), job.DataParsed)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

type JobRefreshBookMetadataData struct {
	BookID int `json:"book_id"`
}

type JobRefreshSeriesMetadataData struct {
	SeriesID int `json:"series_id"`
}

type JobSortSeriesData struct {
	SeriesID int `json:"series_id"`
}
