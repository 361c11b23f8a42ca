package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// ListAchievements godoc
// @Summary 成就列表
// @Tags 成就
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Achievement} "成功"
// @Router /api/achievements [get]
func (c *AchievementController) ListAchievements(ctx *gin.Context) {
	achievements, err := c.AchievementService.ListAchievements(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// CreateAchievement godoc
// @Summary 创建成就（管理员）
// @Tags 成就
// @Accept  json
// @Produce  json
// @Param   body body service.CreateAchievementRequest true "成就"
// @Success 201 {object} util.Response{data=model.Achievement} "创建成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/achievements [post]
func (c *AchievementController) CreateAchievement(ctx *gin.Context) {
	var req service.CreateAchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	achievement, err := c.AchievementService.CreateAchievement(ctx.Request.Context(), util.GetUserFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, achievement)
}

// UploadIcon godoc
// @Summary 上传成就图标（管理员）
// @Description 图片会被缩放到 256x256 以内并转为 PNG
// @Tags 成就
// @Accept  multipart/form-data
// @Produce  json
// @Param   id path int true "成就ID"
// @Param   file formData file true "图标文件"
// @Success 200 {object} util.Response{data=model.Achievement} "成功"
// @Failure 400 {object} util.Response "文件无效"
// @Router /api/achievements/{id}/icon [post]
func (c *AchievementController) UploadIcon(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	if fileHeader.Size > util.MaxIconSize {
		util.BadRequest(ctx, "icon is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	achievement, err := c.AchievementService.UploadIcon(ctx.Request.Context(), util.GetUserFromContext(ctx), id, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, achievement)
}
