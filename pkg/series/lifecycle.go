package series

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shoka/pkg/books"
	"github.com/shishobooks/shoka/pkg/errcodes"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/natsort"
	"github.com/uptrace/bun"
)

// Every operation in this file runs as one transaction. Within it the set
// of books of the series is read, changed and renumbered, so the ordinals
// of a series are always exactly 1..N once the transaction commits.

// CreateSeries persists a series, its metadata and the given books.
func (svc *Service) CreateSeries(ctx context.Context, series *models.Series, newBooks []*models.Book) error {
	if err := checkLibrary(series, newBooks); err != nil {
		return err
	}
	if strings.TrimSpace(series.Name) == "" {
		return errcodes.ValidationError("Name can't be blank.")
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := NewService(tx).insertSeries(ctx, series); err != nil {
			return err
		}
		if err := insertBooks(ctx, tx, series, newBooks, 0); err != nil {
			return err
		}
		return sortBooks(ctx, tx, series.ID)
	})
}

// DeleteSeries deletes every book of the series with everything they own,
// then the series metadata and the series itself.
func (svc *Service) DeleteSeries(ctx context.Context, seriesID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := NewService(tx).RetrieveSeriesByID(ctx, seriesID); err != nil {
			return err
		}

		bookSvc := books.NewService(tx)
		existing, err := bookSvc.ListBooks(ctx, books.ListBooksOptions{SeriesID: &seriesID})
		if err != nil {
			return err
		}
		if err := bookSvc.DeleteBooks(ctx, bookIDs(existing)); err != nil {
			return err
		}

		_, err = tx.NewDelete().Model((*models.SeriesMetadata)(nil)).Where("series_id = ?", seriesID).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().Model((*models.Series)(nil)).Where("id = ?", seriesID).Exec(ctx)
		return errors.WithStack(err)
	})
}

// SortBooks renumbers the books of a series in natural order of their names.
func (svc *Service) SortBooks(ctx context.Context, seriesID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := NewService(tx).RetrieveSeriesByID(ctx, seriesID); err != nil {
			return err
		}
		return sortBooks(ctx, tx, seriesID)
	})
}

// AddBooks attaches new books to a series. The whole batch is rejected if
// any book belongs to another library.
func (svc *Service) AddBooks(ctx context.Context, seriesID int, newBooks []*models.Book) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		series, err := NewService(tx).RetrieveSeriesByID(ctx, seriesID)
		if err != nil {
			return err
		}
		if err := checkLibrary(series, newBooks); err != nil {
			return err
		}
		if err := insertBooks(ctx, tx, series, newBooks, series.BookCount); err != nil {
			return err
		}
		return sortBooks(ctx, tx, seriesID)
	})
}

// RemoveBooksFromSeries deletes the books of the series whose URL matches
// one of the given books, then renumbers the rest.
func (svc *Service) RemoveBooksFromSeries(ctx context.Context, seriesID int, toRemove []*models.Book) error {
	urls := make(map[string]struct{}, len(toRemove))
	for _, b := range toRemove {
		urls[b.URL] = struct{}{}
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := NewService(tx).RetrieveSeriesByID(ctx, seriesID); err != nil {
			return err
		}

		bookSvc := books.NewService(tx)
		existing, err := bookSvc.ListBooks(ctx, books.ListBooksOptions{SeriesID: &seriesID})
		if err != nil {
			return err
		}

		var removed []int
		for _, b := range existing {
			if _, ok := urls[b.URL]; ok {
				removed = append(removed, b.ID)
			}
		}
		if err := bookSvc.DeleteBooks(ctx, removed); err != nil {
			return err
		}
		return sortBooks(ctx, tx, seriesID)
	})
}

// UpdateBooksForSeries makes the books of a series match desired. Books are
// matched by URL, and when desired names a URL more than once its last entry
// wins. Unmatched existing books are deleted and unmatched desired books are
// added. Matched books take the desired name and size, and have their media
// reset when their file changed.
func (svc *Service) UpdateBooksForSeries(ctx context.Context, seriesID int, desired []*models.Book) error {
	desired = lastByURL(desired)

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		log := logger.FromContext(ctx)

		series, err := NewService(tx).RetrieveSeriesByID(ctx, seriesID)
		if err != nil {
			return err
		}
		if err := checkLibrary(series, desired); err != nil {
			return err
		}

		bookSvc := books.NewService(tx)
		existing, err := bookSvc.ListBooks(ctx, books.ListBooksOptions{SeriesID: &seriesID})
		if err != nil {
			return err
		}

		// A URL held by more than one row keeps only its first row.
		var removed []int
		byURL := make(map[string]*models.Book, len(existing))
		for _, b := range existing {
			if _, dup := byURL[b.URL]; dup {
				removed = append(removed, b.ID)
				continue
			}
			byURL[b.URL] = b
		}

		var added []*models.Book
		for _, want := range desired {
			current, ok := byURL[want.URL]
			if !ok {
				added = append(added, want)
				continue
			}
			delete(byURL, want.URL)

			fileChanged := !current.FileLastModified.Equal(want.FileLastModified)
			if !fileChanged && current.Name == want.Name && current.FileSize == want.FileSize {
				continue
			}

			columns := []string{"name", "file_size"}
			current.Name = want.Name
			current.FileSize = want.FileSize
			if fileChanged {
				current.FileLastModified = want.FileLastModified
				columns = append(columns, "file_last_modified")
			}
			if err := bookSvc.UpdateBook(ctx, current, books.UpdateBookOptions{Columns: columns}); err != nil {
				return err
			}
			if !fileChanged {
				continue
			}

			log.Debug("book file changed", logger.Data{"book_id": current.ID, "url": current.URL})
			if err := bookSvc.ResetMedia(ctx, current.ID); err != nil {
				return err
			}
		}

		// Whatever is left in byURL was not desired.
		for _, b := range existing {
			if byURL[b.URL] == b {
				removed = append(removed, b.ID)
			}
		}
		if err := bookSvc.DeleteBooks(ctx, removed); err != nil {
			return err
		}

		if err := insertBooks(ctx, tx, series, added, len(existing)-len(removed)); err != nil {
			return err
		}
		return sortBooks(ctx, tx, seriesID)
	})
}

// lastByURL drops every book whose URL appears again later in bs.
func lastByURL(bs []*models.Book) []*models.Book {
	index := make(map[string]int, len(bs))
	out := make([]*models.Book, 0, len(bs))
	for _, b := range bs {
		if i, ok := index[b.URL]; ok {
			out[i] = b
			continue
		}
		index[b.URL] = len(out)
		out = append(out, b)
	}
	return out
}

func checkLibrary(series *models.Series, bs []*models.Book) error {
	for _, b := range bs {
		if b.LibraryID != series.LibraryID {
			return errcodes.LibraryMismatch(b.Name)
		}
	}
	return nil
}

func bookIDs(bs []*models.Book) []int {
	ids := make([]int, 0, len(bs))
	for _, b := range bs {
		ids = append(ids, b.ID)
	}
	return ids
}

// compareBooks orders books by name in natural order, falling back to the
// URL so that books with the same name keep a stable order.
func compareBooks(cmp *natsort.Comparator) func(a, b *models.Book) int {
	return func(a, b *models.Book) int {
		if r := cmp.Compare(a.Name, b.Name); r != 0 {
			return r
		}
		return strings.Compare(a.URL, b.URL)
	}
}

// insertBooks creates the book, media and metadata rows of each new book.
// The batch is numbered after the existing books in natural order; the
// following sortBooks call settles the final ordinals.
func insertBooks(ctx context.Context, tx bun.IDB, series *models.Series, newBooks []*models.Book, existing int) error {
	if len(newBooks) == 0 {
		return nil
	}

	ordered := slices.Clone(newBooks)
	slices.SortStableFunc(ordered, compareBooks(natsort.New()))

	bookSvc := books.NewService(tx)
	now := time.Now()
	for i, b := range ordered {
		if strings.TrimSpace(b.URL) == "" {
			return errcodes.Validationf("URL of book %q can't be blank.", b.Name)
		}

		b.ID = 0
		b.SeriesID = series.ID
		b.LibraryID = series.LibraryID
		b.Number = existing + i + 1
		if b.FileLastModified.IsZero() {
			b.FileLastModified = now
		}

		if err := bookSvc.CreateBook(ctx, b); err != nil {
			return err
		}
		if err := bookSvc.CreateMedia(ctx, models.NewMedia(b.ID)); err != nil {
			return err
		}
		if err := bookSvc.CreateBookMetadata(ctx, models.NewBookMetadata(b, b.Number)); err != nil {
			return err
		}
	}
	return nil
}

// sortBooks assigns ordinal i+1 to the i-th book of the series in natural
// order. Books whose ordinal changes also get their metadata number fields
// rewritten, unless those fields are locked.
func sortBooks(ctx context.Context, tx bun.IDB, seriesID int) error {
	bookSvc := books.NewService(tx)
	list, err := bookSvc.ListBooks(ctx, books.ListBooksOptions{SeriesID: &seriesID})
	if err != nil {
		return err
	}

	slices.SortStableFunc(list, compareBooks(natsort.New()))

	for i, b := range list {
		ordinal := i + 1
		if b.Number == ordinal {
			continue
		}
		b.Number = ordinal
		if err := bookSvc.UpdateBook(ctx, b, books.UpdateBookOptions{Columns: []string{"number"}}); err != nil {
			return err
		}

		current, err := bookSvc.RetrieveBookMetadata(ctx, b.ID)
		if err != nil {
			return err
		}
		updated := metadata.ApplyBook(metadata.NumberPatch(ordinal), *current)
		if updated.Number == current.Number && updated.NumberSort == current.NumberSort {
			continue
		}
		if err := bookSvc.UpdateBookMetadata(ctx, &updated); err != nil {
			return err
		}
	}
	return nil
}
