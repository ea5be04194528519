// Package loanquery is the read side of circulation: listings joined with
// book and member identity, and the due-date report.
package loanquery

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bookhive-backend/internal/circulation/duedate"
	"bookhive-backend/internal/circulation/loans"
	"bookhive-backend/internal/platform/db"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// StatusAll disables the status filter.
	StatusAll = "all"
)

type ListQuery struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

type Page struct {
	Items      []LoanView
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

type DueReport struct {
	Today       duedate.Date
	HorizonDays int
	DueToday    []LoanView
	DueSoon     []LoanView
	Overdue     []LoanView
}

type Service struct {
	store   *Store
	clock   loans.Clock
	loc     *time.Location
	horizon int
	log     *slog.Logger
}

type Option func(*Service)

func WithClock(c loans.Clock) Option { return func(s *Service) { s.clock = c } }

// WithLocation sets the zone whose calendar decides "today" and due days.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithDueSoonDays(n int) Option { return func(s *Service) { s.horizon = n } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func NewService(h *db.Handle, opts ...Option) *Service {
	s := &Service{
		store:   NewStore(h),
		clock:   loans.SystemClock{},
		loc:     time.UTC,
		horizon: duedate.DefaultHorizonDays,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll pages through every loan, newest first. TotalPages is computed
// over the filtered set and is 0 when nothing matches.
func (s *Service) ListAll(ctx context.Context, q ListQuery) (Page, error) {
	f, err := buildFilter(q)
	if err != nil {
		return Page{}, err
	}
	page, size := normalizePaging(q.Page, q.PageSize)

	total, err := s.store.Count(ctx, f)
	if err != nil {
		return Page{}, s.fail(ctx, "list_all", err)
	}
	items := []LoanView{}
	if total > 0 {
		items, err = s.store.List(ctx, f, size, (page-1)*size)
		if err != nil {
			return Page{}, s.fail(ctx, "list_all", err)
		}
	}

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// ListByMember returns every loan of one member, newest first.
func (s *Service) ListByMember(ctx context.Context, memberID int64) ([]LoanView, error) {
	if memberID <= 0 {
		return nil, loans.ErrInvalid("member id must be > 0")
	}
	items, err := s.store.List(ctx, filter{MemberID: memberID}, 0, 0)
	if err != nil {
		return nil, s.fail(ctx, "list_by_member", err)
	}
	return items, nil
}

// ListActive returns pending and issued loans, newest first.
func (s *Service) ListActive(ctx context.Context) ([]LoanView, error) {
	items, err := s.store.List(ctx, filter{Statuses: []loans.Status{loans.StatusPending, loans.StatusIssued}}, 0, 0)
	if err != nil {
		return nil, s.fail(ctx, "list_active", err)
	}
	return items, nil
}

// DueReport classifies issued loans against today's date in the configured
// zone. horizonDays < 0 selects the configured default.
func (s *Service) DueReport(ctx context.Context, horizonDays int) (DueReport, error) {
	if horizonDays < 0 {
		horizonDays = s.horizon
	}
	views, err := s.store.List(ctx, filter{Statuses: []loans.Status{loans.StatusIssued}}, 0, 0)
	if err != nil {
		return DueReport{}, s.fail(ctx, "due_report", err)
	}

	byID := make(map[int64]LoanView, len(views))
	ls := make([]loans.Loan, 0, len(views))
	for _, v := range views {
		byID[v.ID] = v
		ls = append(ls, v.Loan)
	}
	pick := func(in []loans.Loan) []LoanView {
		out := make([]LoanView, 0, len(in))
		for _, l := range in {
			out = append(out, byID[l.ID])
		}
		return out
	}

	today := duedate.DateOf(s.clock.Now(), s.loc)
	todayRes := duedate.ClassifyDueTodayAndOverdue(ls, today, s.loc)
	soonRes := duedate.ClassifyDueSoonAndOverdue(ls, today, horizonDays, s.loc)

	return DueReport{
		Today:       today,
		HorizonDays: horizonDays,
		DueToday:    pick(todayRes.DueToday),
		DueSoon:     pick(soonRes.DueSoon),
		Overdue:     pick(soonRes.Overdue),
	}, nil
}

func buildFilter(q ListQuery) (filter, error) {
	var f filter
	st := strings.ToLower(strings.TrimSpace(q.Status))
	if st != "" && st != StatusAll {
		parsed, err := loans.ParseStatus(st)
		if err != nil {
			return filter{}, loans.ErrInvalid(`status must be "all" or one of pending, issued, rejected, returned`)
		}
		f.Statuses = []loans.Status{parsed}
	}
	f.Search = normalizeSearch(q.Search)
	return f, nil
}

func normalizePaging(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// normalizeSearch folds full-width and compatibility forms (ＡＢＣ → abc)
// so they match what LOWER() sees in the database.
func normalizeSearch(s string) string {
	return strings.TrimSpace(db.Fold(s))
}

func (s *Service) fail(ctx context.Context, op string, err error) *loans.APIError {
	api := loans.ErrPersistence(err)
	s.log.ErrorContext(ctx, "loan query failed", slog.String("op", op), slog.Any("err", err))
	return api
}
