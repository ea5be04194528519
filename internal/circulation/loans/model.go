package loans

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// Status is the closed set of loan states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusIssued   Status = "issued"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

// Statuses lists every state in lifecycle order.
var Statuses = []Status{StatusPending, StatusIssued, StatusRejected, StatusReturned}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusIssued, StatusRejected, StatusReturned:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown loan status %q", s)
}

// Scan rejects values outside the enumeration at the storage boundary.
func (s *Status) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("loans.Status: cannot scan %T", src)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Status) Value() (driver.Value, error) {
	if _, err := ParseStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusReturned:
		return true
	case StatusPending, StatusIssued:
		return false
	}
	panic(fmt.Sprintf("loans: unhandled status %q", string(s)))
}

// CheckTransition is the state machine:
//
//	pending --issued--> issued --returned--> returned
//	pending --rejected--> rejected
//
// Cancellation (hard delete of a pending loan) is not a status and is
// guarded separately.
func CheckTransition(from, to Status) error {
	switch from {
	case StatusPending:
		if to == StatusIssued || to == StatusRejected {
			return nil
		}
	case StatusIssued:
		if to == StatusReturned {
			return nil
		}
	case StatusReturned:
		if to == StatusReturned {
			return ErrAlreadyReturned()
		}
	case StatusRejected:
	default:
		return ErrInternal(fmt.Sprintf("unknown loan status %q", string(from)))
	}
	return ErrInvalidTransition(fmt.Sprintf("loan is %s; cannot move to %s", from, to))
}

// Decision is the librarian's verdict on a pending loan.
type Decision string

const (
	DecisionIssued   Decision = Decision(StatusIssued)
	DecisionRejected Decision = Decision(StatusRejected)
)

func (d Decision) target() (Status, error) {
	switch d {
	case DecisionIssued:
		return StatusIssued, nil
	case DecisionRejected:
		return StatusRejected, nil
	}
	return "", ErrInvalid(fmt.Sprintf("decision must be %q or %q", DecisionIssued, DecisionRejected))
}

// Actor is the caller identity, supplied explicitly by the transport layer.
type Actor struct {
	MemberID  int64
	Librarian bool
}

// Loan は loans テーブルの1行を表す
type Loan struct {
	ID         int64         `db:"id"`
	ULID       string        `db:"loan_ulid"`
	BookID     int64         `db:"book_id"`
	MemberID   int64         `db:"member_id"`
	Status     Status        `db:"status"`
	IssueDate  time.Time     `db:"issue_date"`
	DueDate    time.Time     `db:"due_date"`
	ReturnDate sql.NullTime  `db:"return_date"`
	DecidedBy  sql.NullInt64 `db:"decided_by"`
	DecidedAt  sql.NullTime  `db:"decided_at"`
	ReturnedBy sql.NullInt64 `db:"returned_by"`
}

// OwnedBy reports whether the loan was requested by the member.
func (l Loan) OwnedBy(memberID int64) bool { return l.MemberID == memberID }
