package loans

import "time"

// 貸出リクエスト（member 本人が申請する）
type CreateLoanRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

// 貸出可否の判定（librarian のみ）
type DecideRequest struct {
	Decision Decision `json:"decision" binding:"required"`
}

type LoanResponse struct {
	ID         int64      `json:"id"`
	ULID       string     `json:"loan_ulid"`
	BookID     int64      `json:"book_id"`
	MemberID   int64      `json:"member_id"`
	Status     Status     `json:"status"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	DecidedBy  *int64     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	ReturnedBy *int64     `json:"returned_by,omitempty"`
	Terminal   bool       `json:"terminal"`
}

// ToResponse flattens nullable columns for JSON.
func ToResponse(l Loan) LoanResponse {
	resp := LoanResponse{
		ID:        l.ID,
		ULID:      l.ULID,
		BookID:    l.BookID,
		MemberID:  l.MemberID,
		Status:    l.Status,
		IssueDate: l.IssueDate,
		DueDate:   l.DueDate,
		Terminal:  l.Status.Terminal(),
	}
	if l.ReturnDate.Valid {
		v := l.ReturnDate.Time
		resp.ReturnDate = &v
	}
	if l.DecidedBy.Valid {
		v := l.DecidedBy.Int64
		resp.DecidedBy = &v
	}
	if l.DecidedAt.Valid {
		v := l.DecidedAt.Time
		resp.DecidedAt = &v
	}
	if l.ReturnedBy.Valid {
		v := l.ReturnedBy.Int64
		resp.ReturnedBy = &v
	}
	return resp
}
