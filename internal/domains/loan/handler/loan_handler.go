package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new loan handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// GetLoan handles GET /api/v1/loans/:id
func (h *Handler) GetLoan(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid loan ID format")
		return
	}

	loan, err := h.service.GetLoan(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

// ListLoans handles GET /api/v1/loans?reader_id=&open=&overdue=
// Without reader_id the listing defaults to the acting user's own loans.
func (h *Handler) ListLoans(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	readerID := actor.UserID
	if raw := c.Query("reader_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid reader ID format")
			return
		}
		readerID = parsed
	}

	filter := model.ListLoansFilter{
		OnlyOpen:    c.Query("open") == "true",
		OnlyOverdue: c.Query("overdue") == "true",
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	res, err := h.service.ListReaderLoans(c.Request.Context(), actor, readerID, filter)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, res.Loans, &response.Meta{
		Page:  res.Page,
		Limit: res.Limit,
		Total: res.Total,
	})
}

// ListOverdue handles GET /api/v1/loans/overdue
func (h *Handler) ListOverdue(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	loans, err := h.service.ListOverdue(c.Request.Context(), actor, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, loans)
}

// Return handles POST /api/v1/loans/:id/return
func (h *Handler) Return(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid loan ID format")
		return
	}

	loan, err := h.service.Return(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

// Renew handles POST /api/v1/loans/:id/renew
func (h *Handler) Renew(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid loan ID format")
		return
	}

	loan, err := h.service.Renew(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}

// ReportLost handles POST /api/v1/copies/:id/lost
func (h *Handler) ReportLost(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	copyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid copy ID format")
		return
	}

	loan, err := h.service.ReportLost(c.Request.Context(), actor, copyID)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, loan)
}
