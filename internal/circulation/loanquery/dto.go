package loanquery

import "bookhive-backend/internal/circulation/loans"

type LoanViewResponse struct {
	loans.LoanResponse
	BookTitle  string `json:"book_title"`
	MemberName string `json:"member_name"`
}

type PageResponse struct {
	Items      []LoanViewResponse `json:"items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"total_pages"`
}

type ListResponse struct {
	Items []LoanViewResponse `json:"items"`
}

type DueReportResponse struct {
	Today       string             `json:"today"`
	HorizonDays int                `json:"horizon_days"`
	DueToday    []LoanViewResponse `json:"due_today"`
	DueSoon     []LoanViewResponse `json:"due_soon"`
	Overdue     []LoanViewResponse `json:"overdue"`
}

func toViewResponses(vs []LoanView) []LoanViewResponse {
	out := make([]LoanViewResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, LoanViewResponse{
			LoanResponse: loans.ToResponse(v.Loan),
			BookTitle:    v.BookTitle,
			MemberName:   v.MemberName,
		})
	}
	return out
}

func toPageResponse(p Page) PageResponse {
	return PageResponse{
		Items:      toViewResponses(p.Items),
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

func toDueReportResponse(r DueReport) DueReportResponse {
	return DueReportResponse{
		Today:       r.Today.String(),
		HorizonDays: r.HorizonDays,
		DueToday:    toViewResponses(r.DueToday),
		DueSoon:     toViewResponses(r.DueSoon),
		Overdue:     toViewResponses(r.Overdue),
	}
}
