package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pubrepo-backend/internal/config"
	"pubrepo-backend/internal/domains/admin/model"
	"pubrepo-backend/internal/domains/admin/service"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/response"
)

type AdminHandler struct {
	service     service.ServiceInterface
	session     config.SessionConfig
	environment string
}

func NewAdminHandler(s service.ServiceInterface, sessionCfg config.SessionConfig, environment string) *AdminHandler {
	return &AdminHandler{service: s, session: sessionCfg, environment: environment}
}

// Register handles POST /admin/register and POST /register
func (h *AdminHandler) Register(c *gin.Context) {
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

// Login handles POST /admin/login; success sets the session cookie.
func (h *AdminHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	admin, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	h.setSessionCookie(c, token, int(h.session.TTL.Seconds()))
	response.Success(c, http.StatusOK, admin)
}

// Logout handles POST|GET /admin/logout; destroys the session record and
// expires the cookie.
func (h *AdminHandler) Logout(c *gin.Context) {
	sessionID := c.GetString("sessionID")

	if err := h.service.Logout(c.Request.Context(), sessionID); err != nil {
		apperrors.Abort(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Delete handles POST /delete/admin
func (h *AdminHandler) Delete(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		response.BadRequest(c, "invalid admin id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Counts handles GET /counts and GET /private-data/counts
func (h *AdminHandler) Counts(c *gin.Context) {
	counts, err := h.service.Counts(c.Request.Context())
	if err != nil {
		apperrors.Abort(c, err)
		return
	}

	response.Success(c, http.StatusOK, counts)
}

// setSessionCookie writes the httpOnly session cookie. SameSite is Lax in
// development and None+Secure in production for cross-origin frontends.
func (h *AdminHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	secure := false
	sameSite := http.SameSiteLaxMode
	if h.environment == "production" {
		secure = true
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie(h.session.CookieName, token, maxAge, "/", "", secure, true)
}
