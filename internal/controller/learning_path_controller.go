package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	Service   *service.LearningPathService
	Resources *service.ResourceService
}

func NewLearningPathController(s *service.LearningPathService, resources *service.ResourceService) *LearningPathController {
	return &LearningPathController{Service: s, Resources: resources}
}

// ListAvailable godoc
// @Summary 可报名的学习路径
// @Description 返回当前用户尚未报名的学习路径
// @Tags 学习路径
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.LearningPath} "成功"
// @Router /api/learning-paths [get]
func (c *LearningPathController) ListAvailable(ctx *gin.Context) {
	paths, err := c.Service.ListAvailable(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, paths)
}

// ListEnrolled godoc
// @Summary 已报名的学习路径
// @Tags 学习路径
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.LearningPath} "成功"
// @Router /api/learning-paths/enrolled [get]
func (c *LearningPathController) ListEnrolled(ctx *gin.Context) {
	paths, err := c.Service.ListEnrolled(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, paths)
}

// GetPath godoc
// @Summary 学习路径详情
// @Tags 学习路径
// @Produce  json
// @Param   id path int true "路径ID"
// @Success 200 {object} util.Response{data=service.PathDetail} "成功"
// @Failure 404 {object} util.Response "路径不存在"
// @Router /api/learning-paths/{id} [get]
func (c *LearningPathController) GetPath(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	detail, err := c.Service.GetPath(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// Enroll godoc
// @Summary 报名学习路径
// @Description 幂等：首次报名返回 201，重复报名返回 200 与已有记录
// @Tags 学习路径
// @Produce  json
// @Param   id path int true "路径ID"
// @Success 201 {object} util.Response{data=model.UserLearningPath} "报名成功"
// @Success 200 {object} util.Response{data=model.UserLearningPath} "已报名"
// @Failure 404 {object} util.Response "路径不存在"
// @Router /api/learning-paths/{id}/enroll [post]
func (c *LearningPathController) Enroll(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	enrollment, created, err := c.Service.Enroll(ctx.Request.Context(), util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, enrollment)
		return
	}
	util.Success(ctx, enrollment)
}

// UpdateProgress godoc
// @Summary 更新学习进度
// @Tags 学习路径
// @Accept  json
// @Produce  json
// @Param   id path int true "路径ID"
// @Param   body body service.ProgressRequest true "进度"
// @Success 200 {object} util.Response{data=model.UserLearningPath} "成功"
// @Failure 404 {object} util.Response "未报名"
// @Router /api/learning-paths/{id}/progress [put]
func (c *LearningPathController) UpdateProgress(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.Service.UpdateProgress(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req.ProgressPercentage)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// CreatePath godoc
// @Summary 创建学习路径
// @Description 在一个事务中创建路径及嵌套的模块、资源与测验（Contributor）
// @Tags 学习路径
// @Accept  json
// @Produce  json
// @Param   body body service.LearningPathRequest true "路径内容"
// @Success 201 {object} util.Response{data=service.PathDetail} "创建成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/learning-paths [post]
func (c *LearningPathController) CreatePath(ctx *gin.Context) {
	var req service.LearningPathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	detail, err := c.Service.CreatePath(ctx.Request.Context(), util.GetUserFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, detail)
}

// GetPathForEdit godoc
// @Summary 读取待编辑的学习路径
// @Tags 学习路径
// @Produce  json
// @Param   id path int true "路径ID"
// @Success 200 {object} util.Response{data=service.PathDetail} "成功"
// @Failure 403 {object} util.Response "非路径作者"
// @Router /api/update-learning-path/{id} [get]
func (c *LearningPathController) GetPathForEdit(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	detail, err := c.Service.GetPathForEdit(ctx.Request.Context(), util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// UpdatePath godoc
// @Summary 更新学习路径
// @Description 带 id 的模块更新，不带 id 的模块新建（作者或管理员）
// @Tags 学习路径
// @Accept  json
// @Produce  json
// @Param   id path int true "路径ID"
// @Param   body body service.LearningPathRequest true "路径内容"
// @Success 200 {object} util.Response{data=service.PathDetail} "成功"
// @Failure 403 {object} util.Response "非路径作者"
// @Router /api/update-learning-path/{id} [put]
func (c *LearningPathController) UpdatePath(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.LearningPathRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	detail, err := c.Service.UpdatePath(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// DeletePath godoc
// @Summary 删除学习路径
// @Tags 学习路径
// @Produce  json
// @Param   id path int true "路径ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 403 {object} util.Response "非路径作者"
// @Router /api/learning-paths/{id} [delete]
func (c *LearningPathController) DeletePath(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.Service.DeletePath(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Learning path deleted"})
}

// ListModules godoc
// @Summary 路径下的模块
// @Tags 模块
// @Produce  json
// @Param   id path int true "路径ID"
// @Success 200 {object} util.Response{data=[]model.Module} "成功"
// @Router /api/learning-paths/{id}/modules [get]
func (c *LearningPathController) ListModules(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	modules, err := c.Service.ListModules(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// CreateModule godoc
// @Summary 新增模块
// @Tags 模块
// @Accept  json
// @Produce  json
// @Param   id path int true "路径ID"
// @Param   body body service.ModuleInput true "模块内容"
// @Success 201 {object} util.Response{data=service.ModuleDetail} "创建成功"
// @Router /api/learning-paths/{id}/modules [post]
func (c *LearningPathController) CreateModule(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ModuleInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.Service.CreateModule(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// ListResources godoc
// @Summary 模块资源
// @Description 学习者需先报名模块所属路径
// @Tags 资源
// @Produce  json
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response{data=[]model.Resource} "成功"
// @Failure 403 {object} util.Response "未报名"
// @Router /api/modules/{id}/resources [get]
func (c *LearningPathController) ListResources(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	resources, err := c.Service.ListResources(ctx.Request.Context(), util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, resources)
}

// CreateResource godoc
// @Summary 创建资源并挂到模块
// @Tags 资源
// @Accept  json
// @Produce  json
// @Param   id path int true "模块ID"
// @Param   body body service.ResourceInput true "资源内容"
// @Success 201 {object} util.Response{data=model.Resource} "创建成功"
// @Router /api/modules/{id}/resources [post]
func (c *LearningPathController) CreateResource(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ResourceInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resource, err := c.Resources.CreateResource(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, resource)
}

// GetResource godoc
// @Summary 资源详情
// @Tags 资源
// @Produce  json
// @Param   id path int true "资源ID"
// @Success 200 {object} util.Response{data=service.ResourceDetail} "成功"
// @Router /api/resources/{id} [get]
func (c *LearningPathController) GetResource(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	resource, err := c.Resources.GetResource(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, resource)
}
