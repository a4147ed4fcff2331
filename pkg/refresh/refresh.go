// Package refresh runs the configured metadata providers for a book and
// merges what they propose into its stored metadata.
package refresh

import (
	"context"
	"database/sql"
	"reflect"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/series"
	"github.com/uptrace/bun"
)

const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeNoOpinion = "no_opinion"
	OutcomeFailed    = "failed"
)

// Outcome is what one provider contributed to a refresh.
type Outcome struct {
	Provider     string   `json:"provider"`
	Status       string   `json:"status"`
	LockedFields []string `json:"locked_fields,omitempty"`
	Error        string   `json:"error,omitempty"`
}

type Result struct {
	BookID   int       `json:"book_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Failures returns the outcomes of the providers that failed.
func (r *Result) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

type Service struct {
	db        bun.IDB
	providers []metadata.Provider
}

func NewService(db bun.IDB, providers []metadata.Provider) *Service {
	return &Service{db, providers}
}

// RefreshMetadata asks every provider, in order, for a patch and applies
// each one on top of the result of the previous ones. Each patch is merged
// and persisted in its own transaction. A provider that fails, panics or
// proposes an invalid record only loses its own contribution; the error is
// recorded in the result and the next provider runs. Errors returned by
// this method are infrastructure failures or an unknown book.
func (svc *Service) RefreshMetadata(ctx context.Context, bookID int) (*Result, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"book_id": bookID})
	bookSvc := books.NewService(svc.db)

	book, err := bookSvc.RetrieveBookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	media, err := bookSvc.RetrieveMedia(ctx, bookID)
	if err != nil {
		return nil, err
	}

	result := &Result{BookID: bookID, Outcomes: make([]Outcome, 0, len(svc.providers))}
	for _, p := range svc.providers {
		outcome, err := svc.runProvider(ctx, p, book, media)
		if err != nil {
			return nil, err
		}
		if outcome.Status == OutcomeFailed {
			log.Warn("metadata provider failed", logger.Data{"provider": outcome.Provider, "error": outcome.Error})
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	log.Info("book metadata refreshed", logger.Data{"providers": len(svc.providers), "failures": len(result.Failures())})
	return result, nil
}

// RefreshSeriesMetadata refreshes every book of a series.
func (svc *Service) RefreshSeriesMetadata(ctx context.Context, seriesID int) ([]*Result, error) {
	if _, err := series.NewService(svc.db).RetrieveSeriesByID(ctx, seriesID); err != nil {
		return nil, err
	}
	bs, err := books.NewService(svc.db).ListBooks(ctx, books.ListBooksOptions{SeriesID: &seriesID})
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(bs))
	for _, b := range bs {
		r, err := svc.RefreshMetadata(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (svc *Service) runProvider(ctx context.Context, p metadata.Provider, book *models.Book, media *models.Media) (Outcome, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"book_id": book.ID, "provider": p.Name()})
	outcome := Outcome{Provider: p.Name()}

	patch, err := extract(ctx, p, book, media)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Error = err.Error()
		return outcome, nil
	}
	if patch == nil || (patch.IsEmpty() && (patch.Series == nil || patch.Series.IsEmpty())) {
		outcome.Status = OutcomeNoOpinion
		return outcome, nil
	}

	changed := false
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		bookSvc := books.NewService(tx)
		current, err := bookSvc.RetrieveBookMetadata(ctx, book.ID)
		if err != nil {
			return err
		}

		outcome.LockedFields = metadata.LockedBookFields(*patch, *current)
		updated := metadata.ApplyBook(*patch, *current)
		if !reflect.DeepEqual(updated, *current) {
			if err := bookSvc.UpdateBookMetadata(ctx, &updated); err != nil {
				return err
			}
			changed = true
		}

		if patch.Series == nil {
			return nil
		}

		seriesSvc := series.NewService(tx)
		currentSeries, err := seriesSvc.RetrieveSeriesMetadata(ctx, book.SeriesID)
		if err != nil {
			return err
		}
		for _, f := range metadata.LockedSeriesFields(*patch.Series, *currentSeries) {
			outcome.LockedFields = append(outcome.LockedFields, "series."+f)
		}
		updatedSeries := metadata.ApplySeries(*patch.Series, *currentSeries)
		if updatedSeries == *currentSeries {
			return nil
		}
		changed = true
		return seriesSvc.UpdateSeriesMetadata(ctx, &updatedSeries)
	})
	if err != nil {
		if errcodes.Code(err) == "validation_error" {
			outcome.Status = OutcomeFailed
			outcome.Error = err.Error()
			return outcome, nil
		}
		return outcome, err
	}

	if len(outcome.LockedFields) > 0 {
		log.Debug("field locked, skipping", logger.Data{"fields": outcome.LockedFields})
	}
	outcome.Status = OutcomeUnchanged
	if changed {
		outcome.Status = OutcomeApplied
		log.Debug("metadata updated")
	}
	return outcome, nil
}

// extract calls the provider and turns a panic into an error.
func extract(ctx context.Context, p metadata.Provider, book *models.Book, media *models.Media) (patch *metadata.BookPatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			patch = nil
			err = errors.Errorf("provider %s panicked: %v", p.Name(), r)
		}
	}()
	return p.Extract(ctx, book, media)
}
