package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Plan         *PlanHandler
	Profile      *ProfileHandler
	Resource     *ResourceHandler
	Consultation *ConsultationHandler
	Share        *ShareHandler
	Health       *HealthHandler
}

// RouteOptions controls where routes are mounted. ShareAuth guards the shared plan route.
type RouteOptions struct {
	APIPrefix   string
	MetricsPath string
	ShareAuth   gin.HandlerFunc
}

// RegisterRoutes mounts every API route on r.
func RegisterRoutes(r gin.IRouter, h Handlers, opts RouteOptions) {
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	if opts.MetricsPath != "" {
		r.GET(opts.MetricsPath, h.Health.Prometheus)
	}

	api := r.Group(opts.APIPrefix)
	api.GET("/health", h.Health.Health)

	plans := api.Group("/plan")
	plans.POST("/generate", h.Plan.Generate)
	plans.POST("/adapt/:studentId", h.Plan.Adapt)

	api.GET("/resources/:studentId", h.Resource.Resources)
	api.GET("/strategies/:challenge", h.Resource.Strategies)

	profiles := api.Group("/profile")
	profiles.GET("", h.Profile.List)
	profiles.POST("", h.Profile.Create)
	profiles.GET("/:id", h.Profile.Get)
	profiles.PUT("/:id", h.Profile.Update)
	profiles.DELETE("/:id", h.Profile.Delete)
	profiles.PUT("/:id/progress", h.Profile.UpdateProgress)
	profiles.PUT("/:id/calendar", h.Profile.UpdateCalendar)
	profiles.PUT("/:id/resources", h.Profile.UpdateResources)
	profiles.PUT("/:id/learning-style", h.Profile.UpdateLearningStyle)
	profiles.PUT("/:id/cultural", h.Profile.UpdateCultural)
	profiles.GET("/:id/plan", h.Plan.Latest)
	profiles.GET("/:id/plan/export", h.Plan.Export)
	profiles.POST("/:id/share", h.Share.Issue)
	profiles.GET("/:id/consultations", h.Consultation.List)
	profiles.POST("/:id/consultations", h.Consultation.Create)
	profiles.PUT("/:id/consultations/:consultationId", h.Consultation.Update)

	shared := api.Group("/shared")
	if opts.ShareAuth != nil {
		shared.Use(opts.ShareAuth)
	}
	shared.GET("/plan", h.Share.Shared)
}
