package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adminmodel "pubrepo-backend/internal/domains/admin/model"
	"pubrepo-backend/internal/shared/middleware"
	"pubrepo-backend/internal/shared/response"
	"pubrepo-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	sessionGate := middleware.SessionGate(c.Config.Session.CookieName, c.Tokens, c.Sessions)
	manageRoles := middleware.RequireRole(
		adminmodel.RoleAdmin.String(), adminmodel.RoleSuperAdmin.String())
	superOnly := middleware.RequireRole(adminmodel.RoleSuperAdmin.String())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		// Public admin lifecycle
		v1.POST("/admin/register", c.AdminHandler.Register)
		v1.POST("/admin/login", c.AdminHandler.Login)

		// Any authenticated session: lookups, search, counts, logout
		authed := v1.Group("")
		authed.Use(sessionGate)
		{
			authed.POST("/admin/logout", c.AdminHandler.Logout)
			authed.GET("/admin/logout", c.AdminHandler.Logout)

			authed.GET("/counts", c.AdminHandler.Counts)
			authed.GET("/private-data/counts", c.AdminHandler.Counts)

			authed.GET("/departments", c.DepartmentHandler.List)
			authed.GET("/department/:id", c.DepartmentHandler.GetByID)

			authed.GET("/publications", c.PublicationHandler.List)
			authed.GET("/publications/search", c.PublicationHandler.AdvancedSearch)
			authed.GET("/publications/text-search", c.PublicationHandler.TextSearch)
			authed.GET("/publications/author-search", c.PublicationHandler.AuthorSearch)
			authed.GET("/publications/export", c.PublicationHandler.Export)
			authed.GET("/publications/:id/related", c.PublicationHandler.Related)
			authed.GET("/publications/:id/co-authors", c.AuthorHandler.CoAuthors)
			authed.GET("/publication/:id", c.PublicationHandler.GetByID)

			authed.GET("/authors/unassigned", c.AuthorHandler.GetUnassigned)
			authed.GET("/authors/publications", c.AuthorHandler.PublicationsOfAuthor)

			authed.GET("/private-data/users", c.AuthorHandler.Search)
			authed.GET("/search/email", c.AuthorHandler.SearchByEmail)
			authed.GET("/search/employee-id", c.AuthorHandler.SearchByEmployeeID)
			authed.GET("/search/fullname", c.AuthorHandler.SearchByFullname)
		}

		// Content management: admin or super-admin
		manage := v1.Group("")
		manage.Use(sessionGate, manageRoles)
		{
			manage.POST("/department", c.DepartmentHandler.Create)
			manage.POST("/publication", c.PublicationHandler.Create)
			manage.POST("/author", c.AuthorHandler.Register)
			manage.POST("/register/author", c.AuthorHandler.Register)
			manage.POST("/authors/assign-publication", c.AuthorHandler.AssignToPublication)

			manage.POST("/delete/author/unassigned", c.AuthorHandler.DeleteUnassigned)
			manage.POST("/delete/author/assignment", c.AuthorHandler.RemoveAssignment)
			manage.POST("/delete/publication", c.PublicationHandler.Delete)
			manage.POST("/delete/department", c.DepartmentHandler.Delete)
		}

		// Identity management: super-admin only
		super := v1.Group("")
		super.Use(sessionGate, superOnly)
		{
			super.POST("/register", c.AdminHandler.Register)
			super.POST("/delete/admin", c.AdminHandler.Delete)
		}
	}

	return router
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "UNHEALTHY", "database unreachable")
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "ok",
			"version": c.Config.App.Version,
		})
	}
}
