package series

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveSeriesOptions struct {
	ID        *int
	URL       *string
	LibraryID *int
}

type ListSeriesOptions struct {
	Limit     *int
	Offset    *int
	LibraryID *int

	includeTotal bool
}

type UpdateSeriesOptions struct {
	Columns []string
}

// Service persists series and their metadata and owns the ordering of the
// books inside each series. Like books.Service it runs against a database
// or a transaction.
type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveSeries(ctx context.Context, opts RetrieveSeriesOptions) (*models.Series, error) {
	series := &models.Series{}

	q := svc.db.
		NewSelect().
		Model(series).
		Relation("Metadata").
		ColumnExpr("s.*").
		ColumnExpr("(SELECT COUNT(*) FROM books WHERE books.series_id = s.id) AS book_count")

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}
	if opts.URL != nil {
		q = q.Where("s.url = ?", *opts.URL)
	}
	if opts.LibraryID != nil {
		q = q.Where("s.library_id = ?", *opts.LibraryID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}

	return series, nil
}

func (svc *Service) RetrieveSeriesByID(ctx context.Context, id int) (*models.Series, error) {
	return svc.RetrieveSeries(ctx, RetrieveSeriesOptions{ID: &id})
}

func (svc *Service) ListSeries(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, error) {
	s, _, err := svc.listSeriesWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	opts.includeTotal = true
	return svc.listSeriesWithTotal(ctx, opts)
}

func (svc *Service) listSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	var series []*models.Series
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&series).
		Relation("Metadata").
		ColumnExpr("s.*").
		ColumnExpr("(SELECT COUNT(*) FROM books WHERE books.series_id = s.id) AS book_count").
		Order("metadata.title_sort ASC", "s.id ASC")

	if opts.LibraryID != nil {
		q = q.Where("s.library_id = ?", *opts.LibraryID)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return series, total, nil
}

func (svc *Service) UpdateSeries(ctx context.Context, series *models.Series, opts UpdateSeriesOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	series.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(series).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveSeriesMetadata(ctx context.Context, seriesID int) (*models.SeriesMetadata, error) {
	m := &models.SeriesMetadata{}

	err := svc.db.
		NewSelect().
		Model(m).
		Where("sm.series_id = ?", seriesID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series metadata")
		}
		return nil, errors.WithStack(err)
	}

	return m, nil
}

// UpdateSeriesMetadata normalizes, validates and writes the whole record.
func (svc *Service) UpdateSeriesMetadata(ctx context.Context, m *models.SeriesMetadata) error {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return err
	}
	m.UpdatedAt = time.Now()

	res, err := svc.db.
		NewUpdate().
		Model(m).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Series metadata")
	}
	return nil
}

// EditSeriesMetadata applies a manual edit, which may change locked fields
// and set or clear locks.
func (svc *Service) EditSeriesMetadata(ctx context.Context, seriesID int, edit metadata.SeriesEdit) (*models.SeriesMetadata, error) {
	var updated models.SeriesMetadata

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		txSvc := NewService(tx)
		current, err := txSvc.RetrieveSeriesMetadata(ctx, seriesID)
		if err != nil {
			return err
		}
		updated = metadata.ApplySeriesEdit(edit, *current)
		return txSvc.UpdateSeriesMetadata(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (svc *Service) insertSeries(ctx context.Context, series *models.Series) error {
	now := time.Now()
	if series.CreatedAt.IsZero() {
		series.CreatedAt = now
	}
	series.UpdatedAt = series.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(series).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	m := models.NewSeriesMetadata(series)
	m.Normalize()
	if err := m.Validate(); err != nil {
		return err
	}
	m.CreatedAt = series.CreatedAt
	m.UpdatedAt = series.CreatedAt
	_, err = svc.db.
		NewInsert().
		Model(m).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	series.Metadata = m
	return nil
}
