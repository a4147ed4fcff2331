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

func (svc *Service) CreateMedia(ctx context.Context, media *models.Media) error {
	now := time.Now()
	if media.CreatedAt.IsZero() {
		media.CreatedAt = now
	}
	media.UpdatedAt = media.CreatedAt
	if media.Status == "" {
		media.Status = models.MediaStatusUnknown
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(media).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return writeMediaLists(ctx, tx, media)
	})
}

func (svc *Service) RetrieveMedia(ctx context.Context, bookID int) (*models.Media, error) {
	media := &models.Media{}

	err := svc.db.
		NewSelect().
		Model(media).
		Relation("Pages", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("mp.number ASC")
		}).
		Relation("Files", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("mf.file_name ASC")
		}).
		Where("m.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Media")
		}
		return nil, errors.WithStack(err)
	}

	return media, nil
}

// UpdateMedia writes the media row and replaces its pages and files.
func (svc *Service) UpdateMedia(ctx context.Context, media *models.Media) error {
	media.UpdatedAt = time.Now()

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewUpdate().
			Model(media).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().Model((*models.MediaPage)(nil)).Where("book_id = ?", media.BookID).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.MediaFile)(nil)).Where("book_id = ?", media.BookID).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return writeMediaLists(ctx, tx, media)
	})
}

// ResetMedia puts a book's media back into its unanalyzed state.
func (svc *Service) ResetMedia(ctx context.Context, bookID int) error {
	media := models.NewMedia(bookID)
	return svc.UpdateMedia(ctx, media)
}

func writeMediaLists(ctx context.Context, tx bun.Tx, media *models.Media) error {
	for _, p := range media.Pages {
		p.ID = 0
		p.BookID = media.BookID
	}
	for _, f := range media.Files {
		f.ID = 0
		f.BookID = media.BookID
	}

	if len(media.Pages) > 0 {
		if _, err := tx.NewInsert().Model(&media.Pages).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	if len(media.Files) > 0 {
		if _, err := tx.NewInsert().Model(&media.Files).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
