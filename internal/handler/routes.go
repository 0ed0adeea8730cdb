package handler

import (
	"supplier-portal/internal/middleware"
	"supplier-portal/pkg/jwtutil"
	"supplier-portal/prometheus"

	"github.com/labstack/echo/v4"
)

// Handlers groups the route handlers
type Handlers struct {
	Auth       *AuthHandler
	Evaluation *EvaluationHandler
	Supplier   *SupplierHandler
	Reputation *ReputationHandler
	Management *ManagementHandler
}

// RegisterRoutes mounts every route on e. Management routes require a
// manager token issued by jwt.
func RegisterRoutes(e *echo.Echo, h Handlers, jwt *jwtutil.JWTUtil) {
	// Public routes that don't require authentication
	e.GET("/", Hello)
	e.GET("/health", HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	e.POST("/auth/login", h.Auth.Login)

	api := e.Group("/api")

	evaluations := api.Group("/evaluations")
	evaluations.GET("/orders/:ref", h.Evaluation.LookupOrder)
	evaluations.POST("", h.Evaluation.Submit)
	evaluations.POST("/issues", h.Evaluation.ReportIssue)

	suppliers := api.Group("/suppliers")
	suppliers.GET("", h.Supplier.List)
	suppliers.GET("/segments", h.Supplier.Segments)
	suppliers.GET("/:id", h.Supplier.Get)
	suppliers.GET("/:id/issues", h.Supplier.Issues)

	reputation := api.Group("/reputation")
	reputation.POST("/lookups", h.Reputation.Lookup)
	reputation.GET("/lookups/current", h.Reputation.Current)

	// Management endpoints require a manager token
	management := api.Group("/management")
	management.Use(middleware.ManagerAuth(jwt))
	management.GET("/dashboard", h.Management.Dashboard)
	management.GET("/suppliers", h.Management.SearchSuppliers)
	management.POST("/suppliers/import", h.Management.ImportSuppliers)
	management.POST("/suppliers/:id/warnings", h.Management.ApplyWarning)
	management.DELETE("/suppliers/:id/warnings", h.Management.ResetWarnings)
	management.GET("/suppliers/:id/warnings", h.Management.WarningLog)
	management.POST("/suppliers/:id/analysis", h.Management.Analyze)
	management.GET("/suppliers/:id/analysis", h.Management.LatestAnalysis)
	management.GET("/issues", h.Management.ListIssues)
	management.PATCH("/issues/:id/status", h.Management.AdvanceIssue)
	management.GET("/complaints", h.Management.ListComplaints)
	management.POST("/complaints/:id/response", h.Management.RespondComplaint)
}
