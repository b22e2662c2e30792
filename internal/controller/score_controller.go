package controller

import (
	"ethics_eval_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ScoreController struct {
	Service ScoreComputer
}

func NewScoreController(svc ScoreComputer) *ScoreController {
	return &ScoreController{Service: svc}
}

type computeScoresRequest struct {
	UserID           string `json:"userId"`
	QuestionnaireKey string `json:"questionnaireKey"`
}

// @Summary Recompute scores
// @Description Recomputes and upserts the Scores matched by the optional user and questionnaire.
// @Tags scores
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "project id"
// @Success 200 {object} util.Response
// @Router /projects/{projectId}/scores/compute [post]
func (c *ScoreController) Compute(ctx *gin.Context) {
	var req computeScoresRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	scores, err := c.Service.ComputeScores(ctx.Request.Context(), ctx.Param("projectId"), req.UserID, req.QuestionnaireKey)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"count":  len(scores),
		"scores": scores,
	})
}

// Recompute reruns every triple of the project; failing triples are listed
// in the result instead of failing the request.
func (c *ScoreController) Recompute(ctx *gin.Context) {
	result, err := c.Service.RecomputeProject(ctx.Request.Context(), ctx.Param("projectId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
