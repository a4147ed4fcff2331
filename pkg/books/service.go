package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID  *int
	URL *string
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	SeriesID  *int
	LibraryID *int
	IDs       []int

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

// Service persists books together with their metadata and media. It accepts
// either a database or a transaction so that callers can group several
// calls into one unit of work.
type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.URL != nil {
		q = q.Where("b.url = ?", *opts.URL)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) RetrieveBookByID(ctx context.Context, id int) (*models.Book, error) {
	return svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	var books []*models.Book
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.series_id ASC", "b.number ASC", "b.id ASC")

	if opts.SeriesID != nil {
		q = q.Where("b.series_id = ?", *opts.SeriesID)
	}
	if opts.LibraryID != nil {
		q = q.Where("b.library_id = ?", *opts.LibraryID)
	}
	if len(opts.IDs) > 0 {
		q = q.Where("b.id IN (?)", bun.In(opts.IDs))
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

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	book.UpdatedAt = time.Now()
	columns := append(append([]string{}, opts.Columns...), "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// DeleteBooks removes the books and everything they own. Rows are deleted
// children first so the operation never depends on foreign key cascades.
func (svc *Service) DeleteBooks(ctx context.Context, bookIDs []int) error {
	if len(bookIDs) == 0 {
		return nil
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		steps := []interface{}{
			(*models.MediaPage)(nil),
			(*models.MediaFile)(nil),
			(*models.Media)(nil),
			(*models.BookMetadataAuthor)(nil),
			(*models.BookMetadataTag)(nil),
			(*models.BookMetadata)(nil),
		}
		for _, model := range steps {
			_, err := tx.
				NewDelete().
				Model(model).
				Where("book_id IN (?)", bun.In(bookIDs)).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err := tx.
			NewDelete().
			Model((*models.Book)(nil)).
			Where("id IN (?)", bun.In(bookIDs)).
			Exec(ctx)
		return errors.WithStack(err)
	})
}
