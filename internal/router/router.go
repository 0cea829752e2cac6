package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/funneldesk/backend/api/handler"
)

type Handlers struct {
	Auth        *apiHandler.AuthHandler
	Lead        *apiHandler.LeadHandler
	Report      *apiHandler.ReportHandler
	Observation *apiHandler.ObservationHandler
	Goal        *apiHandler.GoalHandler
	Catalog     *apiHandler.CatalogHandler
	Settings    *apiHandler.SettingsHandler
	Health      *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", handlers.Auth.Logout)

	// Leads
	r.GET("/api/v1/leads", authMiddleware(handlers.Lead.GetLeads))
	r.POST("/api/v1/leads", authMiddleware(handlers.Lead.CreateLead))
	r.DELETE("/api/v1/leads", authMiddleware(handlers.Lead.DeleteLeads))
	r.PATCH("/api/v1/leads/batch", authMiddleware(handlers.Lead.BatchUpdate))
	r.GET("/api/v1/leads/{id}", authMiddleware(handlers.Lead.GetLead))
	r.PATCH("/api/v1/leads/{id}", authMiddleware(handlers.Lead.UpdateLead))

	// Reports
	r.GET("/api/v1/reports/summary", authMiddleware(handlers.Report.GetSummary))
	r.GET("/api/v1/reports/daily", authMiddleware(handlers.Report.GetDaily))
	r.GET("/api/v1/reports/stalled", authMiddleware(handlers.Report.GetStalled))

	// Observations
	r.GET("/api/v1/observations", authMiddleware(handlers.Observation.GetObservations))
	r.POST("/api/v1/observations/done", authMiddleware(handlers.Observation.MarkDone))
	r.GET("/api/v1/admin/observations", authMiddleware(handlers.Observation.GetAllObservations))
	r.POST("/api/v1/admin/observations", authMiddleware(handlers.Observation.CreateObservation))
	r.POST("/api/v1/admin/observations/{id}/reopen", authMiddleware(handlers.Observation.Reopen))
	r.DELETE("/api/v1/admin/observations/{id}", authMiddleware(handlers.Observation.DeleteObservation))

	// Goals
	r.GET("/api/v1/goals", authMiddleware(handlers.Goal.GetGoals))
	r.GET("/api/v1/goals/mine", authMiddleware(handlers.Goal.GetOwnGoal))
	r.PUT("/api/v1/admin/goals", authMiddleware(handlers.Goal.UpsertGoal))

	// Catalogs
	r.GET("/api/v1/advisors", authMiddleware(handlers.Catalog.GetAdvisors))
	r.GET("/api/v1/products", authMiddleware(handlers.Catalog.GetProducts))
	r.GET("/api/v1/referrers", authMiddleware(handlers.Catalog.GetReferrers))
	r.GET("/api/v1/catalog", authMiddleware(handlers.Catalog.GetCatalog))

	// Settings
	r.GET("/api/v1/settings/thresholds", authMiddleware(handlers.Settings.GetThresholds))
	r.PUT("/api/v1/admin/settings/thresholds", authMiddleware(handlers.Settings.UpdateThresholds))

	return r
}
