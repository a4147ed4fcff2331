// Package testutils holds helpers shared by package tests.
package testutils

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shishobooks/shoka/pkg/migrations"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// NewDB returns a migrated in-memory database that is closed when the test
// ends. The pool is limited to one connection so every query sees the same
// in-memory database.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CreateLibrary inserts a library directly, bypassing any service.
func CreateLibrary(t testing.TB, db bun.IDB, name string) *models.Library {
	t.Helper()

	library := &models.Library{Name: name, Root: "/libraries/" + name}
	_, err := db.NewInsert().Model(library).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return library
}

// CountRows returns the number of rows in table.
func CountRows(t testing.TB, db bun.IDB, table string) int {
	t.Helper()

	count, err := db.NewSelect().TableExpr(table).Count(context.Background())
	require.NoError(t, err)
	return count
}

// CreateSeries inserts a series and its metadata directly, bypassing any
// service. The series has no books.
func CreateSeries(t testing.TB, db bun.IDB, library *models.Library, name string) *models.Series {
	t.Helper()

	ctx := context.Background()
	series := &models.Series{
		LibraryID:        library.ID,
		Name:             name,
		URL:              library.Root + "/" + name,
		FileLastModified: time.Now(),
	}
	_, err := db.NewInsert().Model(series).Returning("*").Exec(ctx)
	require.NoError(t, err)

	series.Metadata = models.NewSeriesMetadata(series)
	_, err = db.NewInsert().Model(series.Metadata).Exec(ctx)
	require.NoError(t, err)
	return series
}
