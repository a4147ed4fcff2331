package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		statements := []string{
			`CREATE TABLE libraries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				root TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX ux_libraries_name ON libraries (name COLLATE NOCASE)`,
			`CREATE TABLE series (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				name TEXT NOT NULL,
				url TEXT NOT NULL,
				file_last_modified TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX ix_series_library_id ON series (library_id)`,
			`CREATE UNIQUE INDEX ux_series_url ON series (library_id, url)`,
			`CREATE TABLE series_metadata (
				series_id INTEGER PRIMARY KEY REFERENCES series (id),
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				status TEXT NOT NULL,
				status_lock BOOLEAN NOT NULL DEFAULT FALSE,
				title TEXT NOT NULL,
				title_lock BOOLEAN NOT NULL DEFAULT FALSE,
				title_sort TEXT NOT NULL,
				title_sort_lock BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			// No unique index on (series_id, number): renumbering rewrites
			// ordinals one row at a time inside a transaction.
			`CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				series_id INTEGER REFERENCES series (id) NOT NULL,
				name TEXT NOT NULL,
				url TEXT NOT NULL,
				file_last_modified TIMESTAMPTZ NOT NULL,
				file_size INTEGER NOT NULL DEFAULT 0,
				number INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX ix_books_series_id ON books (series_id)`,
			`CREATE INDEX ix_books_url ON books (url)`,
			`CREATE TABLE book_metadata (
				book_id INTEGER PRIMARY KEY REFERENCES books (id),
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				title TEXT NOT NULL,
				title_lock BOOLEAN NOT NULL DEFAULT FALSE,
				summary TEXT NOT NULL DEFAULT '',
				summary_lock BOOLEAN NOT NULL DEFAULT FALSE,
				number TEXT NOT NULL,
				number_lock BOOLEAN NOT NULL DEFAULT FALSE,
				number_sort REAL NOT NULL,
				number_sort_lock BOOLEAN NOT NULL DEFAULT FALSE,
				reading_direction TEXT,
				reading_direction_lock BOOLEAN NOT NULL DEFAULT FALSE,
				publisher TEXT NOT NULL DEFAULT '',
				publisher_lock BOOLEAN NOT NULL DEFAULT FALSE,
				age_rating INTEGER,
				age_rating_lock BOOLEAN NOT NULL DEFAULT FALSE,
				release_date TIMESTAMPTZ,
				release_date_lock BOOLEAN NOT NULL DEFAULT FALSE,
				authors_lock BOOLEAN NOT NULL DEFAULT FALSE,
				tags_lock BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE TABLE book_metadata_authors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES book_metadata (book_id) NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				role TEXT NOT NULL
			)`,
			`CREATE INDEX ix_book_metadata_authors_book_id ON book_metadata_authors (book_id)`,
			`CREATE TABLE book_metadata_tags (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES book_metadata (book_id) NOT NULL,
				tag TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX ux_book_metadata_tags ON book_metadata_tags (book_id, tag)`,
			`CREATE TABLE media (
				book_id INTEGER PRIMARY KEY REFERENCES books (id),
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				status TEXT NOT NULL,
				media_type TEXT,
				thumbnail BLOB,
				comment TEXT
			)`,
			`CREATE TABLE media_pages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES media (book_id) NOT NULL,
				number INTEGER NOT NULL,
				file_name TEXT NOT NULL,
				media_type TEXT NOT NULL
			)`,
			`CREATE INDEX ix_media_pages_book_id ON media_pages (book_id)`,
			`CREATE TABLE media_files (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				book_id INTEGER REFERENCES media (book_id) NOT NULL,
				file_name TEXT NOT NULL
			)`,
			`CREATE INDEX ix_media_files_book_id ON media_files (book_id)`,
		}
		for _, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{
			"media_files",
			"media_pages",
			"media",
			"book_metadata_tags",
			"book_metadata_authors",
			"book_metadata",
			"books",
			"series_metadata",
			"series",
			"libraries",
		}
		for _, table := range tables {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
