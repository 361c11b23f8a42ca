package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	Progression *service.ProgressionService
}

func NewProgressionController(progression *service.ProgressionService) *ProgressionController {
	return &ProgressionController{Progression: progression}
}

// Leaderboard godoc
// @Summary 排行榜
// @Description 积分降序，同分按用户 ID 升序
// @Tags 排行榜
// @Produce  json
// @Param   limit query int false "数量，默认 8"
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "成功"
// @Router /api/leaderboard [get]
func (c *ProgressionController) Leaderboard(ctx *gin.Context) {
	entries, err := c.Progression.Leaderboard(ctx.Request.Context(), util.QueryInt(ctx, "limit", 0))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// UserPoints godoc
// @Summary 用户积分
// @Tags 排行榜
// @Produce  json
// @Param   username path string true "用户名"
// @Success 200 {object} util.Response{data=service.UserPoints} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/{username}/points [get]
func (c *ProgressionController) UserPoints(ctx *gin.Context) {
	points, err := c.Progression.UserPoints(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, points)
}

// UserAchievements godoc
// @Summary 用户成就
// @Description 先补发达到门槛的成就，再返回全部已获得成就
// @Tags 成就
// @Produce  json
// @Param   username path string true "用户名"
// @Success 200 {object} util.Response{data=service.UserAchievements} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/users/{username}/achievements [get]
func (c *ProgressionController) UserAchievements(ctx *gin.Context) {
	achievements, err := c.Progression.UserAchievements(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}
