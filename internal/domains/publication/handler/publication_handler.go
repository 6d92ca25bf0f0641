package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pubrepo-backend/internal/domains/publication/model"
	"pubrepo-backend/internal/domains/publication/service"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/internal/shared/response"
	"pubrepo-backend/internal/shared/utils"
)

type PublicationHandler struct {
	service service.ServiceInterface
}

func NewPublicationHandler(s service.ServiceInterface) *PublicationHandler {
	return &PublicationHandler{service: s}
}

// Create handles POST /publication (multipart, one file field).
func (h *PublicationHandler) Create(c *gin.Context) {
	req := model.CreateRequest{
		Title:        c.PostForm("title"),
		Abstract:     c.PostForm("abstract"),
		Month:        utils.ParseIntDefault(c.PostForm("month"), 0),
		Year:         utils.ParseIntDefault(c.PostForm("year"), 0),
		ISBN:         c.PostForm("isbn"),
		JournalName:  c.PostForm("journal_name"),
		JournalType:  c.PostForm("journal_type"),
		ImpactFactor: c.PostForm("impact_factor"),
		DepartmentID: c.PostForm("department"),
		Keywords:     c.PostForm("keywords"),
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.Abort(c, model.ErrFileMissing)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "unable to read uploaded file")
		return
	}
	defer file.Close()

	created, err := h.service.Create(c.Request.Context(), req, &service.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created)
}

// GetByID handles GET /publication/:id
func (h *PublicationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid publication id")
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// List handles GET /publications
func (h *PublicationHandler) List(c *gin.Context) {
	h.search(c, filterFromQuery(c))
}

// AdvancedSearch handles GET /publications/search with all filters
// composable.
func (h *PublicationHandler) AdvancedSearch(c *gin.Context) {
	h.search(c, filterFromQuery(c))
}

// TextSearch handles GET /publications/text-search; relevance ranking
// overrides the requested sort.
func (h *PublicationHandler) TextSearch(c *gin.Context) {
	filter := filterFromQuery(c)
	if filter.Query == "" {
		response.BadRequest(c, "query is required")
		return
	}
	h.search(c, filter)
}

// AuthorSearch handles GET /publications/author-search
func (h *PublicationHandler) AuthorSearch(c *gin.Context) {
	filter := filterFromQuery(c)
	if filter.Author == "" {
		response.BadRequest(c, "author is required")
		return
	}
	h.search(c, filter)
}

// Related handles GET /publications/:id/related
func (h *PublicationHandler) Related(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid publication id")
		return
	}
	limit := utils.ParseIntDefault(c.Query("limit"), 5)

	related, err := h.service.Related(c.Request.Context(), id, limit)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, related)
}

// Export handles GET /publications/export; streams the current result set
// as an XLSX workbook.
func (h *PublicationHandler) Export(c *gin.Context) {
	data, err := h.service.Export(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	filename := fmt.Sprintf("publications-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Delete handles POST /delete/publication
func (h *PublicationHandler) Delete(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "invalid publication id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *PublicationHandler) search(c *gin.Context, filter model.SearchFilter) {
	publications, total, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	page := query.NormalizePage(filter.Page, filter.Limit)
	response.SuccessWithMeta(c, http.StatusOK, publications, response.NewMeta(page.Page, page.Limit, total))
}

func filterFromQuery(c *gin.Context) model.SearchFilter {
	return model.SearchFilter{
		Query:       c.Query("query"),
		Author:      c.Query("author"),
		Year:        intQuery(c, "year"),
		YearFrom:    intQuery(c, "year_from"),
		YearTo:      intQuery(c, "year_to"),
		JournalType: c.Query("journal_type"),
		Department:  c.Query("department"),
		Keyword:     c.Query("keywords"),
		Page:        utils.ParseIntDefault(c.Query("page"), 1),
		Limit:       utils.ParseIntDefault(c.Query("limit"), query.DefaultLimit),
		SortBy:      c.Query("sortBy"),
		Order:       c.Query("order"),
	}
}

func intQuery(c *gin.Context, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
