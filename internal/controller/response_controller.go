package controller

import (
	"ethics_eval_backend/internal/service"
	"ethics_eval_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResponseController struct {
	Service ResponseWorkflow
}

func NewResponseController(svc ResponseWorkflow) *ResponseController {
	return &ResponseController{Service: svc}
}

// @Summary Save questionnaire draft
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "project id"
// @Param body body service.SaveDraftRequest true "answers"
// @Success 200 {object} util.Response
// @Router /projects/{projectId}/responses/draft [post]
func (c *ResponseController) SaveDraft(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SaveDraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Service.SaveDraft(ctx.Request.Context(), ctx.Param("projectId"), user.UserID, user.Role, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// @Summary Submit questionnaire
// @Description Submits the response and recomputes the evaluator's Score.
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "project id"
// @Param responseId path string true "response id"
// @Success 200 {object} util.Response
// @Router /projects/{projectId}/responses/{responseId}/submit [post]
func (c *ResponseController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.Submit(ctx.Request.Context(), ctx.Param("responseId"), user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
