package loans

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	ulid "github.com/oklog/ulid/v2"

	"bookhive-backend/internal/circulation/inventory"
	"bookhive-backend/internal/platform/db"
)

// DefaultLoanPeriod is the span between request time and due date.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// -------------- Clock & ID --------------

type Clock interface{ Now() time.Time }

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// -------------- Service --------------

// Service is the loan state machine: the only writer of loan status and
// the only caller of the inventory ledger.
type Service struct {
	h      *db.Handle
	store  *Store
	ledger *inventory.Ledger
	clock  Clock
	id     IDGen
	period time.Duration
	log    *slog.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }
func WithIDGen(g IDGen) Option { return func(s *Service) { s.id = g } }
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }
func WithLoanPeriod(d time.Duration) Option { return func(s *Service) { s.period = d } }
func WithLedger(l *inventory.Ledger) Option { return func(s *Service) { s.ledger = l } }

func NewService(h *db.Handle, opts ...Option) *Service {
	s := &Service{
		h:      h,
		store:  NewStore(h),
		ledger: inventory.NewLedger(h.Dialect),
		clock:  SystemClock{},
		id:     ulidGen{},
		period: DefaultLoanPeriod,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request records a borrow request. Availability is not checked here; it
// is enforced when a librarian issues the loan.
func (s *Service) Request(ctx context.Context, actor Actor, bookID int64) (Loan, error) {
	if actor.MemberID <= 0 {
		return Loan{}, ErrInvalid("member id required")
	}
	if bookID <= 0 {
		return Loan{}, ErrInvalid("book_id must be > 0")
	}

	ok, err := s.store.MemberExists(ctx, actor.MemberID)
	if err != nil {
		return Loan{}, s.fail(ctx, "request", 0, ErrPersistence(err))
	}
	if !ok {
		return Loan{}, s.fail(ctx, "request", 0, ErrNotFound("member not found"))
	}
	ok, err = s.store.BookExists(ctx, bookID)
	if err != nil {
		return Loan{}, s.fail(ctx, "request", 0, ErrPersistence(err))
	}
	if !ok {
		return Loan{}, s.fail(ctx, "request", 0, ErrNotFound("book not found"))
	}

	now := s.clock.Now()
	l := Loan{
		ULID:      s.id.NewULID(now),
		BookID:    bookID,
		MemberID:  actor.MemberID,
		Status:    StatusPending,
		IssueDate: now,
		DueDate:   now.Add(s.period),
	}
	if err := s.store.InsertLoan(ctx, &l); err != nil {
		return Loan{}, s.fail(ctx, "request", 0, ErrCreateFailed(err))
	}

	s.log.InfoContext(ctx, "loan requested",
		slog.Int64("loan_id", l.ID), slog.Int64("book_id", l.BookID), slog.Int64("member_id", l.MemberID))
	return l, nil
}

// Decide applies a librarian's decision to a pending loan. Issuing takes a
// copy from the ledger in the same transaction as the status write.
func (s *Service) Decide(ctx context.Context, actor Actor, loanID int64, decision Decision) (Loan, error) {
	if !actor.Librarian {
		return Loan{}, s.fail(ctx, "decide", loanID, ErrForbidden("only librarians can decide loan requests"))
	}
	target, err := decision.target()
	if err != nil {
		return Loan{}, err
	}

	var out Loan
	err = db.RunInTx(ctx, s.h, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		l, err := s.store.GetLoanForUpdate(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if err := CheckTransition(l.Status, target); err != nil {
			return err
		}

		switch target {
		case StatusIssued:
			if err := s.ledger.DecrementAvailable(ctx, tx, l.BookID); err != nil {
				return ledgerError(err)
			}
		case StatusRejected:
		}

		now := s.clock.Now()
		if err := s.store.MarkDecidedTx(ctx, tx, l.ID, target, actor.MemberID, now); err != nil {
			return err
		}
		l.Status = target
		l.DecidedBy = sql.NullInt64{Int64: actor.MemberID, Valid: true}
		l.DecidedAt = sql.NullTime{Time: now, Valid: true}
		out = *l
		return nil
	})
	if err != nil {
		return Loan{}, s.fail(ctx, "decide", loanID, err)
	}

	s.log.InfoContext(ctx, "loan decided",
		slog.Int64("loan_id", out.ID), slog.Int64("book_id", out.BookID), slog.String("status", string(out.Status)))
	return out, nil
}

// Return completes an issued loan and puts the copy back. A second call
// fails with ALREADY_RETURNED and leaves the ledger untouched.
func (s *Service) Return(ctx context.Context, actor Actor, loanID int64) (Loan, error) {
	var out Loan
	err := db.RunInTx(ctx, s.h, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		l, err := s.store.GetLoanForUpdate(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if !actor.Librarian && !l.OwnedBy(actor.MemberID) {
			return ErrForbidden("loan belongs to another member")
		}
		if err := CheckTransition(l.Status, StatusReturned); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := s.store.MarkReturnedTx(ctx, tx, l.ID, actor.MemberID, now); err != nil {
			return err
		}
		if err := s.ledger.IncrementAvailable(ctx, tx, l.BookID); err != nil {
			return ledgerError(err)
		}
		l.Status = StatusReturned
		l.ReturnDate = sql.NullTime{Time: now, Valid: true}
		l.ReturnedBy = sql.NullInt64{Int64: actor.MemberID, Valid: true}
		out = *l
		return nil
	})
	if err != nil {
		return Loan{}, s.fail(ctx, "return", loanID, err)
	}

	s.log.InfoContext(ctx, "loan returned",
		slog.Int64("loan_id", out.ID), slog.Int64("book_id", out.BookID))
	return out, nil
}

// Cancel withdraws the caller's own pending request by deleting it.
func (s *Service) Cancel(ctx context.Context, actor Actor, loanID int64) error {
	err := db.RunInTx(ctx, s.h, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		l, err := s.store.GetLoanForUpdate(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if !l.OwnedBy(actor.MemberID) {
			return ErrForbidden("only the requesting member can cancel a loan")
		}
		if l.Status != StatusPending {
			return ErrInvalidTransition("loan is " + string(l.Status) + "; only pending loans can be cancelled")
		}
		return s.store.DeletePendingTx(ctx, tx, l.ID)
	})
	if err != nil {
		return s.fail(ctx, "cancel", loanID, err)
	}

	s.log.InfoContext(ctx, "loan cancelled", slog.Int64("loan_id", loanID))
	return nil
}

// Get returns one loan to its owner or to a librarian.
func (s *Service) Get(ctx context.Context, actor Actor, loanID int64) (Loan, error) {
	l, err := s.store.GetLoan(ctx, s.h, loanID)
	if err != nil {
		return Loan{}, s.fail(ctx, "get", loanID, err)
	}
	if !actor.Librarian && !l.OwnedBy(actor.MemberID) {
		return Loan{}, ErrForbidden("loan belongs to another member")
	}
	return *l, nil
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, inventory.ErrOutOfStock):
		return ErrOutOfStock()
	case errors.Is(err, inventory.ErrBookNotFound):
		return ErrNotFound("book not found")
	case errors.Is(err, inventory.ErrCounterOverflow):
		return &APIError{Code: CodeInternal, Message: "inventory counter is inconsistent", Err: err}
	}
	return err
}

// fail converts err to an *APIError and logs it at a level matching its kind.
func (s *Service) fail(ctx context.Context, op string, loanID int64, err error) *APIError {
	api := asAPIError(err)
	attrs := []any{slog.String("op", op), slog.String("code", string(api.Code)), slog.Any("err", err)}
	if loanID > 0 {
		attrs = append(attrs, slog.Int64("loan_id", loanID))
	}
	if api.expected() {
		s.log.WarnContext(ctx, "loan operation rejected", attrs...)
	} else {
		s.log.ErrorContext(ctx, "loan operation failed", attrs...)
	}
	return api
}
