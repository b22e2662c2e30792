package controller

import (
	"ethics_eval_backend/internal/util"
	"ethics_eval_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsController struct {
	Analytics AnalyticsReader
	Risks     RiskRanker
	Archive   ReportArchiver
}

func NewAnalyticsController(analytics AnalyticsReader, risks RiskRanker, archive ReportArchiver) *AnalyticsController {
	return &AnalyticsController{Analytics: analytics, Risks: risks, Archive: archive}
}

// @Summary Project dashboard
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "project id"
// @Param questionnaireKey query string false "questionnaire"
// @Success 200 {object} util.Response
// @Router /projects/{projectId}/analytics [get]
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	payload, err := c.Analytics.GetProjectAnalytics(ctx.Request.Context(), ctx.Param("projectId"), ctx.Query("questionnaireKey"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, payload)
}

func (c *AnalyticsController) GetRisks(ctx *gin.Context) {
	risks, err := c.Risks.RankRiskyQuestions(ctx.Request.Context(), ctx.Param("projectId"), ctx.Query("questionnaireKey"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, risks)
}

// @Summary Report metrics
// @Description Numeric ground truth for report generation. archive=true also stores a snapshot.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "project id"
// @Param questionnaireKey query string false "questionnaire"
// @Param archive query bool false "store a snapshot"
// @Success 200 {object} util.Response
// @Router /projects/{projectId}/report-metrics [get]
func (c *AnalyticsController) GetReportMetrics(ctx *gin.Context) {
	metrics, err := c.Analytics.BuildReportMetrics(ctx.Request.Context(), ctx.Param("projectId"), ctx.Query("questionnaireKey"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	result := gin.H{"metrics": metrics}
	if util.ParseBoolDefault(ctx.Query("archive"), false) && c.Archive != nil {
		url, err := c.Archive.Archive(ctx.Request.Context(), metrics)
		if err != nil {
			// the metrics are still useful without the snapshot
			logger.Log.Error("Failed to archive report metrics", zap.String("projectId", metrics.ProjectID), zap.Error(err))
		} else {
			result["archiveUrl"] = url
		}
	}
	util.Success(ctx, result)
}
