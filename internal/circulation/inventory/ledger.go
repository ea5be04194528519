// Package inventory keeps each book's available copy counter consistent
// with the loans that hold copies. Every mutation takes a *sqlx.Tx so it
// can only run inside the caller's transaction.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bookhive-backend/internal/platform/db"
)

var (
	ErrBookNotFound = errors.New("inventory: book not found")
	ErrOutOfStock   = errors.New("inventory: no available copies")
	// ErrCounterOverflow means a return would push available above total,
	// which only happens if an earlier write skipped the ledger.
	ErrCounterOverflow = errors.New("inventory: available copies already equal total copies")
)

// Counts is the catalog's view of one book's copies.
type Counts struct {
	BookID    int64 `db:"id"`
	Total     int   `db:"total_copies"`
	Available int   `db:"available_copies"`
}

// Outstanding is the number of copies currently attached to issued loans.
func (c Counts) Outstanding() int { return c.Total - c.Available }

type Ledger struct {
	dialect db.Dialect
}

func NewLedger(d db.Dialect) *Ledger { return &Ledger{dialect: d} }

const countsQuery = `SELECT id, total_copies, available_copies FROM books WHERE id = ?`

// Counts reads the counters without locking.
func (l *Ledger) Counts(ctx context.Context, q db.DBTX, bookID int64) (Counts, error) {
	var c Counts
	if err := sqlx.GetContext(ctx, q, &c, q.Rebind(countsQuery), bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counts{}, ErrBookNotFound
		}
		return Counts{}, err
	}
	return c, nil
}

// lock inventory row (books) by id
func (l *Ledger) lockCounts(ctx context.Context, tx *sqlx.Tx, bookID int64) (Counts, error) {
	var c Counts
	if err := tx.GetContext(ctx, &c, tx.Rebind(countsQuery+l.dialect.ForUpdate()), bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Counts{}, ErrBookNotFound
		}
		return Counts{}, err
	}
	return c, nil
}

// DecrementAvailable takes one copy out of circulation. ErrOutOfStock is an
// expected outcome and must not be retried by the caller.
func (l *Ledger) DecrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	c, err := l.lockCounts(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if c.Available < 1 {
		return ErrOutOfStock
	}

	// ロック済みでも条件付きUPDATEにしておく（ロックの無いSQLiteでも0未満にならない）
	const q = `UPDATE books SET available_copies = available_copies - 1 WHERE id = ? AND available_copies >= 1`
	return l.applyDelta(ctx, tx, q, bookID, ErrOutOfStock)
}

// IncrementAvailable puts one copy back.
func (l *Ledger) IncrementAvailable(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	c, err := l.lockCounts(ctx, tx, bookID)
	if err != nil {
		return err
	}
	if c.Available >= c.Total {
		return ErrCounterOverflow
	}

	const q = `UPDATE books SET available_copies = available_copies + 1 WHERE id = ? AND available_copies < total_copies`
	return l.applyDelta(ctx, tx, q, bookID, ErrCounterOverflow)
}

func (l *Ledger) applyDelta(ctx context.Context, tx *sqlx.Tx, q string, bookID int64, guardErr error) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(q), bookID)
	if err != nil {
		return fmt.Errorf("update books.available_copies: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return guardErr
	}
	return nil
}
