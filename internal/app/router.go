package app

import (
	"ethics_eval_backend/internal/config"
	"ethics_eval_backend/internal/middleware"
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.ConfigMiddleware(cfg), middleware.AuthMiddleware())
	{
		a.registerProjectRoutes(authGroup, c)
		authGroup.POST("/tensions/:tensionId/votes", c.tension.Vote)
	}
}

func (a *App) registerProjectRoutes(rg *gin.RouterGroup, c *controllers) {
	project := rg.Group("/projects/:projectId")
	{
		// evaluation workflow
		project.POST("/responses/draft", c.response.SaveDraft)
		project.POST("/responses/:responseId/submit", c.response.Submit)

		// scoring
		project.POST("/scores/compute", c.score.Compute)
		project.POST("/scores/recompute", middleware.RoleMiddleware(model.Admin), c.score.Recompute)

		// dashboard and reports
		project.GET("/analytics", c.analytics.GetAnalytics)
		project.GET("/risks", c.analytics.GetRisks)
		project.GET("/report-metrics", c.analytics.GetReportMetrics)

		// tensions
		project.GET("/tensions", c.tension.List)
		project.POST("/tensions", c.tension.Create)
	}
}
