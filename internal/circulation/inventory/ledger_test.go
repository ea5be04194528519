package inventory_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhive-backend/internal/circulation/inventory"
	"bookhive-backend/internal/platform/db"
	"bookhive-backend/internal/platform/db/dbtest"
)

func inTx(t *testing.T, h *db.Handle, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	t.Helper()
	return db.RunInTx(context.Background(), h, nil, fn)
}

func TestLedger_DecrementThenOutOfStock(t *testing.T) {
	h := dbtest.Open(t)
	book := dbtest.SeedBook(t, h, "Dune", 1)
	l := inventory.NewLedger(h.Dialect)

	require.NoError(t, inTx(t, h, func(ctx context.Context, tx *sqlx.Tx) error {
		return l.DecrementAvailable(ctx, tx, book)
	}))

	err := inTx(t, h, func(ctx context.Context, tx *sqlx.Tx) error {
		return l.DecrementAvailable(ctx, tx, book)
	})
	assert.ErrorIs(t, err, inventory.ErrOutOfStock)

	c, err := l.Counts(context.Background(), h, book)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Total)
	assert.Equal(t, 0, c.Available)
	assert.Equal(t, 1, c.Outstanding())
}

func TestLedger_IncrementIsBoundedByTotal(t *testing.T) {
	h := dbtest.Open(t)
	book := dbtest.SeedBook(t, h, "Dune", 2)
	l := inventory.NewLedger(h.Dialect)

	err := inTx(t, h, func(ctx context.Context, tx *sqlx.Tx) error {
		return l.IncrementAvailable(ctx, tx, book)
	})
	assert.ErrorIs(t, err, inventory.ErrCounterOverflow)

	require.NoError(t, inTx(t, h, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := l.DecrementAvailable(ctx, tx, book); err != nil {
			return err
		}
		return l.IncrementAvailable(ctx, tx, book)
	}))

	c, err := l.Counts(context.Background(), h, book)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Available)
}

func TestLedger_UnknownBook(t *testing.T) {
	h := dbtest.Open(t)
	l := inventory.NewLedger(h.Dialect)

	err := inTx(t, h, func(ctx context.Context, tx *sqlx.Tx) error {
		return l.DecrementAvailable(ctx, tx, 999)
	})
	assert.ErrorIs(t, err, inventory.ErrBookNotFound)

	_, err = l.Counts(context.Background(), h, 999)
	assert.ErrorIs(t, err, inventory.ErrBookNotFound)
}

func TestLedger_RollbackRestoresCounter(t *testing.T) {
	h := dbtest.Open(t)
	book := dbtest.SeedBook(t, h, "Dune", 3)
	l := inventory.NewLedger(h.Dialect)

	boom := assert.AnError
	err := inTx(t, h, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := l.DecrementAvailable(ctx, tx, book); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	c, err := l.Counts(context.Background(), h, book)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Available)
}
