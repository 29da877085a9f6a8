package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tagman/internal/schema"
	"github.com/roach88/tagman/internal/tag"
)

// book is the caller-owned object type used throughout the store tests.
type book struct {
	ID    int64
	Title string
}

func (b book) TaggableID() int64 { return b.ID }

func scanBook(row RowScanner) (book, error) {
	var b book
	err := row.Scan(&b.ID, &b.Title)
	return b, err
}

func booksSchema() schema.Object {
	return schema.Object{
		Table:   "books",
		Columns: []string{"rowid", "title"},
		OrderBy: "title",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createBooksDB creates a database file holding a books table with one row
// per title. Row ids follow argument order starting at 1.
func createBooksDB(t *testing.T, driver string, titles ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open(driver, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE books (title TEXT NOT NULL)`)
	require.NoError(t, err)
	for _, title := range titles {
		_, err = db.Exec(`INSERT INTO books (title) VALUES (?)`, title)
		require.NoError(t, err)
	}
	return path
}

// createTestStore opens a store over a fresh books table.
func createTestStore(t *testing.T, titles ...string) *Store[book] {
	t.Helper()
	return createTestStoreWith(t, DriverMattn, Options{}, titles...)
}

func createTestStoreWith(t *testing.T, driver string, opts Options, titles ...string) *Store[book] {
	t.Helper()
	path := createBooksDB(t, driver, titles...)

	opts.Driver = driver
	opts.Path = path
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}

	s, err := Open[book](context.Background(), opts, booksSchema(), scanBook)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// mustTag creates a tag or fails the test.
func mustTag(t *testing.T, s *Store[book], name string) tag.Tag {
	t.Helper()
	tg, err := s.CreateTag(context.Background(), name)
	require.NoError(t, err)
	return tg
}

// mustAssign creates assignments of tg to each object id.
func mustAssign(t *testing.T, s *Store[book], tg tag.Tag, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, s.CreateAssignment(context.Background(), tg, tag.ObjectID(id)))
	}
}

func bookIDs(books []book) []int64 {
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids
}
