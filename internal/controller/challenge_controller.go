package controller

import (
	"net/http"

	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

// ListChallenges godoc
// @Summary 挑战列表
// @Tags 挑战
// @Produce  json
// @Param   active query bool false "仅返回进行中的挑战"
// @Success 200 {object} util.Response{data=[]model.Challenge} "成功"
// @Router /api/challenges [get]
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	challenges, err := c.ChallengeService.ListChallenges(ctx.Request.Context(), ctx.Query("active") == "true")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, challenges)
}

// CreateChallenge godoc
// @Summary 创建挑战
// @Tags 挑战
// @Accept  json
// @Produce  json
// @Param   body body service.CreateChallengeRequest true "挑战"
// @Success 201 {object} util.Response{data=model.Challenge} "创建成功"
// @Router /api/challenges [post]
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	var req service.CreateChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.CreateChallenge(ctx.Request.Context(), util.GetUserFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, challenge)
}

// CompleteChallenge godoc
// @Summary 完成挑战
// @Description 首次完成发放奖励积分（201），重复完成返回已有记录（200）
// @Tags 挑战
// @Produce  json
// @Param   id path int true "挑战ID"
// @Success 201 {object} util.Response{data=service.ChallengeCompletion} "完成"
// @Success 200 {object} util.Response{data=service.ChallengeCompletion} "已完成"
// @Failure 400 {object} util.Response "不在挑战时间内"
// @Router /api/challenges/{id}/complete [post]
func (c *ChallengeController) CompleteChallenge(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	result, err := c.ChallengeService.CompleteChallenge(ctx.Request.Context(), util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if result.Created {
		util.Created(ctx, result)
		return
	}
	ctx.JSON(http.StatusOK, util.Response{Code: http.StatusOK, Message: "already completed", Data: result})
}
