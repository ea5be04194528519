// Package dbtest opens throwaway SQLite databases with the circulation
// schema applied, for tests in other packages.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bookhive-backend/internal/platform/db"
)

// Open returns a migrated handle backed by a file in t.TempDir().
func Open(t *testing.T) *db.Handle {
	t.Helper()

	ctx := context.Background()
	h, err := db.Connect(ctx, db.DatabaseConfig{
		Driver: string(db.SQLite),
		Path:   filepath.Join(t.TempDir(), "circulation.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	require.NoError(t, db.Migrate(ctx, h))
	return h
}

func SeedMember(t *testing.T, h *db.Handle, name string) int64 {
	t.Helper()
	return insert(t, h, `INSERT INTO members (name, credits) VALUES (?, 0)`, name)
}

// SeedBook inserts a book with every copy on the shelf.
func SeedBook(t *testing.T, h *db.Handle, title string, copies int) int64 {
	t.Helper()
	return insert(t, h, `INSERT INTO books (title, total_copies, available_copies) VALUES (?, ?, ?)`, title, copies, copies)
}

func insert(t *testing.T, h *db.Handle, q string, args ...any) int64 {
	t.Helper()
	res, err := h.ExecContext(context.Background(), h.Rebind(q), args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
