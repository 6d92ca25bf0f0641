package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pubrepo-backend/internal/domains/department/model"
	"pubrepo-backend/internal/domains/department/service"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/internal/shared/response"
	"pubrepo-backend/internal/shared/utils"
)

type DepartmentHandler struct {
	service service.ServiceInterface
}

func NewDepartmentHandler(s service.ServiceInterface) *DepartmentHandler {
	return &DepartmentHandler{service: s}
}

// Create handles POST /department
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req model.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// GetByID handles GET /department/:id
func (h *DepartmentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid department id")
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, d)
}

// List handles GET /departments
func (h *DepartmentHandler) List(c *gin.Context) {
	filter := model.ListFilter{
		Search: c.Query("search"),
		Page:   utils.ParseIntDefault(c.Query("page"), 1),
		Limit:  utils.ParseIntDefault(c.Query("limit"), query.DefaultLimit),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	}

	departments, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	page := query.NormalizePage(filter.Page, filter.Limit)
	response.SuccessWithMeta(c, http.StatusOK, departments, response.NewMeta(page.Page, page.Limit, total))
}

// Delete handles POST /delete/department
func (h *DepartmentHandler) Delete(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "invalid department id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
