package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCatalogRoutes(v1, c)
		setupRequestRoutes(v1, c)
		setupLoanRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	books.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		books.GET("", c.CatalogHandler.ListBooks)
		books.GET("/:id/copies", c.CatalogHandler.ListCopiesStatus)
		books.POST("", c.CatalogHandler.AddBook)
		books.POST("/:id/copies", c.CatalogHandler.AddCopies)
		books.DELETE("/:id/copies", c.CatalogHandler.RemoveCopies)
	}

	copies := v1.Group("/copies")
	copies.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		copies.POST("/:id/lost", c.LoanHandler.ReportLost)
	}
}

func setupRequestRoutes(v1 *gin.RouterGroup, c *container.Container) {
	requests := v1.Group("/requests")
	requests.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		requests.POST("", c.RequestHandler.Submit)
		requests.GET("", c.RequestHandler.ListPending)
		requests.POST("/:id/cancel", c.RequestHandler.Cancel)
		requests.POST("/:id/resolve", c.RequestHandler.Resolve)
	}
}

func setupLoanRoutes(v1 *gin.RouterGroup, c *container.Container) {
	loans := v1.Group("/loans")
	loans.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		loans.GET("", c.LoanHandler.ListLoans)
		loans.GET("/overdue", c.LoanHandler.ListOverdue)
		loans.GET("/:id", c.LoanHandler.GetLoan)
		loans.POST("/:id/return", c.LoanHandler.Return)
		loans.POST("/:id/renew", c.LoanHandler.Renew)
	}
}

func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		admin.POST("/readers", c.ReaderHandler.CreateReader)
		admin.GET("/readers", c.ReaderHandler.ListReaders)
		admin.PUT("/readers/:id/role", c.ReaderHandler.UpdateRole)
		admin.PUT("/readers/:id/status", c.ReaderHandler.UpdateStatus)

		admin.GET("/policy", c.PolicyHandler.GetPolicy)
		admin.PUT("/policy", c.PolicyHandler.UpdatePolicy)

		admin.GET("/overview", middleware.RequireRole(authz.RoleStaff), overviewHandler(c))
	}
}

// healthCheckHandler reports process and collaborator health.
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		dbStatus := "up"
		if err := c.DB.Ping(ctx.Request.Context()); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "disabled"
		if c.Cache != nil {
			cacheStatus = "up"
			if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
				cacheStatus = "down"
			}
		}

		status := http.StatusOK
		if dbStatus == "down" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":   dbStatus,
			"version":  c.Config.App.Version,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}

// overviewHandler aggregates the staff dashboard counters.
func overviewHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		reqCtx := ctx.Request.Context()

		books, err := c.CatalogService.CountBooks(reqCtx)
		if err != nil {
			response.Fail(ctx, err)
			return
		}
		pending, err := c.RequestService.CountPending(reqCtx)
		if err != nil {
			response.Fail(ctx, err)
			return
		}
		openLoans, err := c.LoanService.CountOpen(reqCtx)
		if err != nil {
			response.Fail(ctx, err)
			return
		}
		overdue, err := c.LoanService.CountOverdue(reqCtx)
		if err != nil {
			response.Fail(ctx, err)
			return
		}

		response.Success(ctx, http.StatusOK, gin.H{
			"books":            books,
			"pending_requests": pending,
			"open_loans":       openLoans,
			"overdue_loans":    overdue,
		})
	}
}
