package controller

import (
	"ethics_eval_backend/internal/model"
	"ethics_eval_backend/internal/service"
	"ethics_eval_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TensionController struct {
	Service TensionWorkflow
}

func NewTensionController(svc TensionWorkflow) *TensionController {
	return &TensionController{Service: svc}
}

func (c *TensionController) List(ctx *gin.Context) {
	rows, err := c.Service.ListTensions(ctx.Request.Context(), ctx.Param("projectId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary Raise a tension
// @Tags tensions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param projectId path string true "project id"
// @Param body body service.CreateTensionRequest true "tension"
// @Success 201 {object} util.Response
// @Router /projects/{projectId}/tensions [post]
func (c *TensionController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateTensionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	row, err := c.Service.CreateTension(ctx.Request.Context(), ctx.Param("projectId"), user.UserID, user.Role, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, row)
}

type voteRequest struct {
	VoteType model.VoteType `json:"voteType" binding:"required,oneof=agree disagree"`
}

// @Summary Vote on a tension
// @Tags tensions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tensionId path string true "tension id"
// @Success 200 {object} util.Response
// @Router /tensions/{tensionId}/votes [post]
func (c *TensionController) Vote(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req voteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	row, err := c.Service.CastVote(ctx.Request.Context(), ctx.Param("tensionId"), user.UserID, user.Role, req.VoteType)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, row)
}
