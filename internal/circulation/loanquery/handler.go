package loanquery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookhive-backend/internal/circulation/loans"
	"bookhive-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes expects r to sit behind auth.RequireAuth.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	librarian := auth.RequireRole(auth.RoleLibrarian)

	r.GET("/members/me/loans", h.ListMine)

	r.GET("/loans", librarian, h.ListAll)
	r.GET("/loans/active", librarian, h.ListActive)
	r.GET("/loans/due", librarian, h.Due)
	r.GET("/members/:id/loans", librarian, h.ListByMember)
}

// ListAll godoc
// @Summary  List loans with paging, status filter and search
// @Tags     loans
// @Produce  json
// @Param    page      query int    false "page (1-based)"
// @Param    page_size query int    false "items per page (max 100)"
// @Param    status    query string false "all|pending|issued|rejected|returned"
// @Param    q         query string false "book title or member name"
// @Success  200 {object} PageResponse
// @Security BearerAuth
// @Router   /loans [get]
func (h *Handler) ListAll(c *gin.Context) {
	p, err := h.svc.ListAll(c.Request.Context(), ListQuery{
		Page:     parseIntDefault(c.Query("page"), 1),
		PageSize: parseIntDefault(c.Query("page_size"), DefaultPageSize),
		Status:   c.Query("status"),
		Search:   c.Query("q"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPageResponse(p))
}

func (h *Handler) ListActive(c *gin.Context) {
	items, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: toViewResponses(items)})
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := loans.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(loans.CodeUnauthenticated, "missing identity"))
		return
	}
	h.listMember(c, actor.MemberID)
}

func (h *Handler) ListByMember(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(loans.CodeInvalidArgument, "id must be a positive integer"))
		return
	}
	h.listMember(c, id)
}

func (h *Handler) listMember(c *gin.Context, memberID int64) {
	items, err := h.svc.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: toViewResponses(items)})
}

// Due godoc
// @Summary  Issued loans due today, due soon and overdue
// @Tags     loans
// @Produce  json
// @Param    horizon query int false "due-soon window in days (default from config)"
// @Success  200 {object} DueReportResponse
// @Security BearerAuth
// @Router   /loans/due [get]
func (h *Handler) Due(c *gin.Context) {
	horizon := -1
	if v := c.Query("horizon"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorBody(loans.CodeInvalidArgument, "horizon must be a non-negative integer"))
			return
		}
		horizon = n
	}
	r, err := h.svc.DueReport(c.Request.Context(), horizon)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDueReportResponse(r))
}

// ---------- helpers ----------

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    loans.Code `json:"code"`
		Message string     `json:"message"`
	} `json:"error"`
}

func errorBody(code loans.Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func writeError(c *gin.Context, err error) {
	var api *loans.APIError
	if !errors.As(err, &api) {
		api = loans.ErrPersistence(err)
	}
	c.JSON(loans.ToHTTPStatus(api), errorBody(api.Code, api.Message))
}
