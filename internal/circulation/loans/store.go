package loans

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"bookhive-backend/internal/platform/db"
)

const loanColumns = `id, loan_ulid, book_id, member_id, status, issue_date, due_date, return_date, decided_by, decided_at, returned_by`

type Store struct {
	h *db.Handle
}

func NewStore(h *db.Handle) *Store { return &Store{h: h} }

func (s *Store) MemberExists(ctx context.Context, memberID int64) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM members WHERE id = ?`, memberID)
}

func (s *Store) BookExists(ctx context.Context, bookID int64) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM books WHERE id = ?`, bookID)
}

func (s *Store) exists(ctx context.Context, q string, id int64) (bool, error) {
	var one int
	err := s.h.QueryRowxContext(ctx, s.h.Rebind(q), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertLoan writes a new pending loan and fills in its id.
func (s *Store) InsertLoan(ctx context.Context, l *Loan) error {
	const q = `
	INSERT INTO loans
	(loan_ulid, book_id, member_id, status, issue_date, due_date)
	VALUES
	(?, ?, ?, ?, ?, ?)`
	args := []any{l.ULID, l.BookID, l.MemberID, l.Status, l.IssueDate, l.DueDate}

	if s.h.Dialect.SupportsReturning() {
		return s.h.QueryRowxContext(ctx, s.h.Rebind(q+` RETURNING id`), args...).Scan(&l.ID)
	}

	res, err := s.h.ExecContext(ctx, s.h.Rebind(q), args...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (s *Store) GetLoan(ctx context.Context, q db.DBTX, loanID int64) (*Loan, error) {
	var l Loan
	err := sqlx.GetContext(ctx, q, &l, q.Rebind(`SELECT `+loanColumns+` FROM loans WHERE id = ?`), loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("loan not found")
		}
		return nil, err
	}
	return &l, nil
}

// lock loan row
func (s *Store) GetLoanForUpdate(ctx context.Context, tx *sqlx.Tx, loanID int64) (*Loan, error) {
	var l Loan
	err := tx.GetContext(ctx, &l, tx.Rebind(`SELECT `+loanColumns+` FROM loans WHERE id = ?`+s.h.Dialect.ForUpdate()), loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("loan not found")
		}
		return nil, err
	}
	return &l, nil
}

// MarkDecidedTx moves a pending loan to issued or rejected. The status
// predicate makes a second decision on the same loan a no-op.
func (s *Store) MarkDecidedTx(ctx context.Context, tx *sqlx.Tx, loanID int64, to Status, decidedBy int64, at time.Time) error {
	const q = `
	UPDATE loans
	SET status = ?, decided_by = ?, decided_at = ?
	WHERE id = ? AND status = ?`
	return expectOneRow(tx.ExecContext(ctx, tx.Rebind(q), to, decidedBy, at, loanID, StatusPending))
}

func (s *Store) MarkReturnedTx(ctx context.Context, tx *sqlx.Tx, loanID int64, returnedBy int64, at time.Time) error {
	const q = `
	UPDATE loans
	SET status = ?, return_date = ?, returned_by = ?
	WHERE id = ? AND status = ?`
	return expectOneRow(tx.ExecContext(ctx, tx.Rebind(q), StatusReturned, at, returnedBy, loanID, StatusIssued))
}

func (s *Store) DeletePendingTx(ctx context.Context, tx *sqlx.Tx, loanID int64) error {
	const q = `DELETE FROM loans WHERE id = ? AND status = ?`
	return expectOneRow(tx.ExecContext(ctx, tx.Rebind(q), loanID, StatusPending))
}

func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return ErrInvalidTransition("loan status changed concurrently")
	}
	return nil
}
