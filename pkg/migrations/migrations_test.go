package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestBringUpToDateAndRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.False(t, group.IsZero())

	tableExists := func(name string) bool {
		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
		require.NoError(t, err)
		return count == 1
	}
	for _, table := range []string{"libraries", "series", "series_metadata", "books", "book_metadata", "book_metadata_authors", "book_metadata_tags", "media", "media_pages", "media_files", "jobs"} {
		assert.True(t, tableExists(table), table)
	}

	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.True(t, group.IsZero())

	_, err = Rollback(ctx, db)
	require.NoError(t, err)
	assert.False(t, tableExists("books"))
	assert.False(t, tableExists("jobs"))
}
