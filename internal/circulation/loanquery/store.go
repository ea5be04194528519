package loanquery

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"bookhive-backend/internal/circulation/loans"
	"bookhive-backend/internal/platform/db"
)

// LoanView is a loan joined with the identity columns the UI displays.
type LoanView struct {
	loans.Loan
	BookTitle  string `db:"book_title"`
	MemberName string `db:"member_name"`
}

// filter is the WHERE side of a listing; zero values mean "no restriction".
type filter struct {
	Statuses []loans.Status
	MemberID int64
	// Search is already normalised (see normalizeSearch).
	Search string
}

type Store struct {
	h *db.Handle
}

func NewStore(h *db.Handle) *Store { return &Store{h: h} }

func (s *Store) base(f filter) *goqu.SelectDataset {
	ds := s.h.Dialect.Goqu().
		From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("l.member_id")))).
		Prepared(true)

	var where []exp.Expression
	switch len(f.Statuses) {
	case 0:
	case 1:
		where = append(where, goqu.I("l.status").Eq(string(f.Statuses[0])))
	default:
		in := make([]any, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			in = append(in, string(st))
		}
		where = append(where, goqu.I("l.status").In(in...))
	}
	if f.MemberID > 0 {
		where = append(where, goqu.I("l.member_id").Eq(f.MemberID))
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		where = append(where, goqu.Or(
			goqu.L(`LOWER(?) LIKE ? ESCAPE '!'`, goqu.I("b.title"), pattern),
			goqu.L(`LOWER(?) LIKE ? ESCAPE '!'`, goqu.I("m.name"), pattern),
		))
	}
	if len(where) > 0 {
		ds = ds.Where(where...)
	}
	return ds
}

var viewColumns = []any{
	goqu.I("l.id"), goqu.I("l.loan_ulid"), goqu.I("l.book_id"), goqu.I("l.member_id"),
	goqu.I("l.status"), goqu.I("l.issue_date"), goqu.I("l.due_date"), goqu.I("l.return_date"),
	goqu.I("l.decided_by"), goqu.I("l.decided_at"), goqu.I("l.returned_by"),
	goqu.I("b.title").As("book_title"), goqu.I("m.name").As("member_name"),
}

// Count returns the number of loans matching f.
func (s *Store) Count(ctx context.Context, f filter) (int64, error) {
	q, args, err := s.base(f).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.h.QueryRowxContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns matching loans newest first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, f filter, limit, offset int) ([]LoanView, error) {
	ds := s.base(f).Select(viewColumns...).Order(goqu.I("l.id").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
		if offset > 0 {
			ds = ds.Offset(uint(offset))
		}
	}
	q, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}

	out := []LoanView{}
	if err := sqlx.SelectContext(ctx, s.h, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike makes % and _ in user input match literally under ESCAPE '!'.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
