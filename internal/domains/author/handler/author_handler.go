package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pubrepo-backend/internal/domains/author/model"
	"pubrepo-backend/internal/domains/author/service"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/internal/shared/response"
	"pubrepo-backend/internal/shared/utils"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(s service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{service: s}
}

// Register handles POST /author and POST /register/author
func (h *AuthorHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	created, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// AssignToPublication handles POST /authors/assign-publication
func (h *AuthorHandler) AssignToPublication(c *gin.Context) {
	var req model.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	assignment, err := h.service.AssignToPublication(c.Request.Context(), req)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusCreated, assignment)
}

// RemoveAssignment handles POST /delete/author/assignment
func (h *AuthorHandler) RemoveAssignment(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "invalid author record id")
		return
	}

	if err := h.service.RemoveAssignment(c.Request.Context(), id); err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// DeleteUnassigned handles POST /delete/author/unassigned
func (h *AuthorHandler) DeleteUnassigned(c *gin.Context) {
	var req struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.service.DeleteUnassigned(c.Request.Context(), req.EmployeeID); err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GetUnassigned handles GET /authors/unassigned
func (h *AuthorHandler) GetUnassigned(c *gin.Context) {
	page := query.NormalizePage(
		utils.ParseIntDefault(c.Query("page"), 1),
		utils.ParseIntDefault(c.Query("limit"), query.DefaultLimit),
	)

	authors, total, err := h.service.GetUnassigned(c.Request.Context(), page)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, authors, response.NewMeta(page.Page, page.Limit, total))
}

// PublicationsOfAuthor handles GET /authors/publications?employee_id=
func (h *AuthorHandler) PublicationsOfAuthor(c *gin.Context) {
	employeeID := c.Query("employee_id")

	assignments, err := h.service.PublicationsOfAuthor(c.Request.Context(), employeeID)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, assignments)
}

// CoAuthors handles GET /publications/:id/co-authors?excluding=
func (h *AuthorHandler) CoAuthors(c *gin.Context) {
	publicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid publication id")
		return
	}

	var excluding *uuid.UUID
	if raw := c.Query("excluding"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid excluding id")
			return
		}
		excluding = &id
	}

	authors, err := h.service.CoAuthors(c.Request.Context(), publicationID, excluding)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, authors)
}

// Search handles GET /private-data/users; field comes from the query string.
func (h *AuthorHandler) Search(c *gin.Context) {
	h.search(c, model.SearchField(c.DefaultQuery("field", string(model.SearchFieldName))))
}

// SearchByEmail handles GET /search/email
func (h *AuthorHandler) SearchByEmail(c *gin.Context) {
	h.search(c, model.SearchFieldEmail)
}

// SearchByEmployeeID handles GET /search/employee-id
func (h *AuthorHandler) SearchByEmployeeID(c *gin.Context) {
	h.search(c, model.SearchFieldEmployeeID)
}

// SearchByFullname handles GET /search/fullname
func (h *AuthorHandler) SearchByFullname(c *gin.Context) {
	h.search(c, model.SearchFieldName)
}

func (h *AuthorHandler) search(c *gin.Context, field model.SearchField) {
	filter := model.SearchFilter{
		Fragment: c.DefaultQuery("query", c.Query("q")),
		Field:    field,
		Page:     utils.ParseIntDefault(c.Query("page"), 1),
		Limit:    utils.ParseIntDefault(c.Query("limit"), query.DefaultLimit),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
	}

	authors, total, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	page := query.NormalizePage(filter.Page, filter.Limit)
	response.SuccessWithMeta(c, http.StatusOK, authors, response.NewMeta(page.Page, page.Limit, total))
}
