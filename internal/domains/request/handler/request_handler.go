package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/request/model"
	"library-backend/internal/domains/request/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new borrow-request handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{
		service: service,
	}
}

// Submit handles POST /api/v1/requests
func (h *Handler) Submit(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	request, err := h.service.Submit(c.Request.Context(), actor, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, request)
}

// Cancel handles POST /api/v1/requests/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request ID format")
		return
	}

	request, err := h.service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}

// Resolve handles POST /api/v1/requests/:id/resolve
func (h *Handler) Resolve(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request ID format")
		return
	}

	var req model.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	request, err := h.service.Resolve(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, request)
}

// ListPending handles GET /api/v1/requests?scope=mine|all
func (h *Handler) ListPending(c *gin.Context) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	scope := model.ListScope(c.DefaultQuery("scope", string(model.ScopeMine)))

	requests, err := h.service.ListPending(c.Request.Context(), actor, scope)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, requests)
}
