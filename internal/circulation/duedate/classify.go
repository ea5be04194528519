package duedate

import (
	"time"

	"bookhive-backend/internal/circulation/loans"
)

const DefaultHorizonDays = 7

type DueTodayResult struct {
	DueToday []loans.Loan
	Overdue  []loans.Loan
}

type DueSoonResult struct {
	DueSoon []loans.Loan
	Overdue []loans.Loan
}

// ClassifyDueTodayAndOverdue splits issued loans into those due on today and
// those due before it. Loans due later, and loans in any other status, are
// left out. Input order is kept within each bucket.
func ClassifyDueTodayAndOverdue(ls []loans.Loan, today Date, loc *time.Location) DueTodayResult {
	var out DueTodayResult
	for _, l := range ls {
		if l.Status != loans.StatusIssued {
			continue
		}
		switch due := DateOf(l.DueDate, loc); {
		case due == today:
			out.DueToday = append(out.DueToday, l)
		case due.Before(today):
			out.Overdue = append(out.Overdue, l)
		}
	}
	return out
}

// ClassifyDueSoonAndOverdue puts issued loans due within [today, today+horizonDays]
// into DueSoon and those due before today into Overdue. A negative horizon is
// treated as zero.
func ClassifyDueSoonAndOverdue(ls []loans.Loan, today Date, horizonDays int, loc *time.Location) DueSoonResult {
	if horizonDays < 0 {
		horizonDays = 0
	}
	last := today.AddDays(horizonDays)

	var out DueSoonResult
	for _, l := range ls {
		if l.Status != loans.StatusIssued {
			continue
		}
		due := DateOf(l.DueDate, loc)
		switch {
		case due.Before(today):
			out.Overdue = append(out.Overdue, l)
		case !due.After(last):
			out.DueSoon = append(out.DueSoon, l)
		}
	}
	return out
}
