package loans

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookhive-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes expects r to sit behind auth.RequireAuth.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// member
	r.POST("/loans", h.Request)
	r.GET("/loans/:id", h.Get)
	r.DELETE("/loans/:id", h.Cancel)
	r.POST("/loans/:id/return", h.Return)

	// librarian
	r.POST("/loans/:id/decision", auth.RequireRole(auth.RoleLibrarian), h.Decide)
}

// ---------- handlers ----------

// Request godoc
// @Summary  Request to borrow a book
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    body body CreateLoanRequest true "book to borrow"
// @Success  201 {object} LoanResponse
// @Failure  404 {object} errorDTO
// @Security BearerAuth
// @Router   /loans [post]
func (h *Handler) Request(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing book_id"))
		return
	}
	l, err := h.svc.Request(c.Request.Context(), actor, req.BookID)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/loans/"+strconv.FormatInt(l.ID, 10))
	c.JSON(http.StatusCreated, ToResponse(l))
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	l, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, ToResponse(l))
}

// Decide godoc
// @Summary  Issue or reject a pending loan
// @Tags     loans
// @Accept   json
// @Produce  json
// @Param    id   path int          true "loan id"
// @Param    body body DecideRequest true "issued or rejected"
// @Success  200 {object} LoanResponse
// @Failure  409 {object} errorDTO
// @Security BearerAuth
// @Router   /loans/{id}/decision [post]
func (h *Handler) Decide(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing decision"))
		return
	}
	l, err := h.svc.Decide(c.Request.Context(), actor, id, req.Decision)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, ToResponse(l))
}

func (h *Handler) Return(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	l, err := h.svc.Return(c.Request.Context(), actor, id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, ToResponse(l))
}

func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), actor, id); err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ---------- helpers ----------

// ActorFrom builds the explicit actor from the identity set by auth.RequireAuth.
func ActorFrom(c *gin.Context) (Actor, bool) {
	memberID, role, ok := auth.Identity(c)
	if !ok {
		return Actor{}, false
	}
	return Actor{MemberID: memberID, Librarian: role == auth.RoleLibrarian}, true
}

func actorFrom(c *gin.Context) (Actor, bool) {
	actor, ok := ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody(CodeUnauthenticated, "missing identity"))
	}
	return actor, ok
}

func loanIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// errorFromErr never exposes wrapped storage errors to the client.
func errorFromErr(err error) errorDTO {
	api := asAPIError(err)
	return errorBody(api.Code, api.Message)
}
