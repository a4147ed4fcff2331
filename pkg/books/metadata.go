package books

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

// CreateBookMetadata normalizes, validates and inserts the metadata of a
// book along with its authors and tags.
func (svc *Service) CreateBookMetadata(ctx context.Context, m *models.BookMetadata) error {
	if err := prepareBookMetadata(m); err != nil {
		return err
	}

	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = m.CreatedAt

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(m).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return writeMetadataLists(ctx, tx, m)
	})
}

func (svc *Service) RetrieveBookMetadata(ctx context.Context, bookID int) (*models.BookMetadata, error) {
	m := &models.BookMetadata{}

	err := svc.db.
		NewSelect().
		Model(m).
		Where("bm.book_id = ?", bookID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book metadata")
		}
		return nil, errors.WithStack(err)
	}

	var authors []*models.BookMetadataAuthor
	err = svc.db.
		NewSelect().
		Model(&authors).
		Where("bma.book_id = ?", bookID).
		Order("bma.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	m.Authors = make([]models.Author, 0, len(authors))
	for _, a := range authors {
		m.Authors = append(m.Authors, models.Author{Name: a.Name, Role: a.Role})
	}

	var tags []*models.BookMetadataTag
	err = svc.db.
		NewSelect().
		Model(&tags).
		Where("bmt.book_id = ?", bookID).
		Order("bmt.tag ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	m.Tags = make([]string, 0, len(tags))
	for _, t := range tags {
		m.Tags = append(m.Tags, t.Tag)
	}

	return m, nil
}

// UpdateBookMetadata normalizes, validates and writes the whole record.
// Authors and tags are rewritten wholesale.
func (svc *Service) UpdateBookMetadata(ctx context.Context, m *models.BookMetadata) error {
	if err := prepareBookMetadata(m); err != nil {
		return err
	}
	m.UpdatedAt = time.Now()

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewUpdate().
			Model(m).
			ExcludeColumn("created_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Book metadata")
		}

		_, err = tx.NewDelete().Model((*models.BookMetadataAuthor)(nil)).Where("book_id = ?", m.BookID).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.BookMetadataTag)(nil)).Where("book_id = ?", m.BookID).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return writeMetadataLists(ctx, tx, m)
	})
}

// EditBookMetadata applies a manual edit. Unlike automatic refreshes, a
// manual edit may change locked fields and may set or clear locks.
func (svc *Service) EditBookMetadata(ctx context.Context, bookID int, edit metadata.BookEdit) (*models.BookMetadata, error) {
	var updated models.BookMetadata

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		txSvc := NewService(tx)
		current, err := txSvc.RetrieveBookMetadata(ctx, bookID)
		if err != nil {
			return err
		}
		updated = metadata.ApplyBookEdit(edit, *current)
		return txSvc.UpdateBookMetadata(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func prepareBookMetadata(m *models.BookMetadata) error {
	if err := m.Normalize(); err != nil {
		return err
	}
	return m.Validate()
}

func writeMetadataLists(ctx context.Context, tx bun.Tx, m *models.BookMetadata) error {
	if len(m.Authors) > 0 {
		rows := make([]*models.BookMetadataAuthor, 0, len(m.Authors))
		for i, a := range m.Authors {
			rows = append(rows, &models.BookMetadataAuthor{
				BookID:   m.BookID,
				Position: i,
				Name:     a.Name,
				Role:     a.Role,
			})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}

	if len(m.Tags) > 0 {
		rows := make([]*models.BookMetadataTag, 0, len(m.Tags))
		for _, tag := range m.Tags {
			rows = append(rows, &models.BookMetadataTag{BookID: m.BookID, Tag: tag})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}
