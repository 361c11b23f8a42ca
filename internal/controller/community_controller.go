package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommunityController struct {
	CommunityService *service.CommunityService
	FeedbackService  *service.FeedbackService
}

func NewCommunityController(communityService *service.CommunityService, feedbackService *service.FeedbackService) *CommunityController {
	return &CommunityController{
		CommunityService: communityService,
		FeedbackService:  feedbackService,
	}
}

// ListComments godoc
// @Summary 评论列表
// @Tags 社区
// @Produce  json
// @Param   resource_id query int false "资源ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.Response{data=service.CommentPage} "成功"
// @Router /api/comments [get]
func (c *CommunityController) ListComments(ctx *gin.Context) {
	var resourceID *uint
	if raw := ctx.Query("resource_id"); raw != "" {
		id := util.MustParseUint(raw)
		if id == 0 {
			util.BadRequest(ctx, "invalid resource_id")
			return
		}
		resourceID = &id
	}

	page, err := c.CommunityService.ListComments(ctx.Request.Context(), resourceID,
		util.QueryInt(ctx, "page", 1), util.QueryInt(ctx, "limit", 20))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// GetComment godoc
// @Summary 评论详情（含回复）
// @Tags 社区
// @Produce  json
// @Param   id path int true "评论ID"
// @Success 200 {object} util.Response{data=service.CommentDetail} "成功"
// @Router /api/comments/{id} [get]
func (c *CommunityController) GetComment(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	comment, err := c.CommunityService.GetComment(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, comment)
}

// CreateComment godoc
// @Summary 发表评论
// @Tags 社区
// @Accept  json
// @Produce  json
// @Param   body body service.CommentRequest true "评论"
// @Success 201 {object} util.Response{data=model.Comment} "创建成功"
// @Router /api/comments [post]
func (c *CommunityController) CreateComment(ctx *gin.Context) {
	var req service.CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	comment, err := c.CommunityService.CreateComment(ctx.Request.Context(), util.GetUserFromContext(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, comment)
}

// UpdateComment godoc
// @Summary 修改评论（作者或管理员）
// @Tags 社区
// @Accept  json
// @Produce  json
// @Param   id path int true "评论ID"
// @Param   body body service.ContentRequest true "内容"
// @Success 200 {object} util.Response{data=model.Comment} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/comments/{id} [put]
func (c *CommunityController) UpdateComment(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	comment, err := c.CommunityService.UpdateComment(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, comment)
}

// DeleteComment godoc
// @Summary 删除评论及其回复（作者或管理员）
// @Tags 社区
// @Produce  json
// @Param   id path int true "评论ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/comments/{id} [delete]
func (c *CommunityController) DeleteComment(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.CommunityService.DeleteComment(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Comment deleted"})
}

// ListReplies godoc
// @Summary 回复列表
// @Tags 社区
// @Produce  json
// @Param   id path int true "评论ID"
// @Success 200 {object} util.Response{data=[]repository.ReplyRow} "成功"
// @Router /api/comments/{id}/replies [get]
func (c *CommunityController) ListReplies(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	replies, err := c.CommunityService.ListReplies(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, replies)
}

// CreateReply godoc
// @Summary 回复评论
// @Tags 社区
// @Accept  json
// @Produce  json
// @Param   id path int true "评论ID"
// @Param   body body service.ContentRequest true "内容"
// @Success 201 {object} util.Response{data=model.Reply} "创建成功"
// @Router /api/comments/{id}/replies [post]
func (c *CommunityController) CreateReply(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	reply, err := c.CommunityService.CreateReply(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, reply)
}

// UpdateReply godoc
// @Summary 修改回复（作者或管理员）
// @Tags 社区
// @Accept  json
// @Produce  json
// @Param   id path int true "评论ID"
// @Param   replyId path int true "回复ID"
// @Param   body body service.ContentRequest true "内容"
// @Success 200 {object} util.Response{data=model.Reply} "成功"
// @Router /api/comments/{id}/replies/{replyId} [put]
func (c *CommunityController) UpdateReply(ctx *gin.Context) {
	commentID, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	replyID, err := util.ParamID(ctx, "replyId")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	reply, err := c.CommunityService.UpdateReply(ctx.Request.Context(), util.GetUserFromContext(ctx), commentID, replyID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}

// DeleteReply godoc
// @Summary 删除回复（作者或管理员）
// @Tags 社区
// @Produce  json
// @Param   id path int true "评论ID"
// @Param   replyId path int true "回复ID"
// @Success 200 {object} util.Response "删除成功"
// @Router /api/comments/{id}/replies/{replyId} [delete]
func (c *CommunityController) DeleteReply(ctx *gin.Context) {
	commentID, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	replyID, err := util.ParamID(ctx, "replyId")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.CommunityService.DeleteReply(ctx.Request.Context(), util.GetUserFromContext(ctx), commentID, replyID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Reply deleted"})
}

// ListFeedback godoc
// @Summary 资源反馈列表
// @Tags 反馈
// @Produce  json
// @Param   id path int true "资源ID"
// @Success 200 {object} util.Response{data=[]model.Feedback} "成功"
// @Router /api/resources/{id}/feedback [get]
func (c *CommunityController) ListFeedback(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	feedback, err := c.FeedbackService.ListFeedback(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}

// CreateFeedback godoc
// @Summary 提交资源反馈
// @Tags 反馈
// @Accept  json
// @Produce  json
// @Param   id path int true "资源ID"
// @Param   body body service.FeedbackRequest true "评分与评价"
// @Success 201 {object} util.Response{data=model.Feedback} "创建成功"
// @Router /api/resources/{id}/feedback [post]
func (c *CommunityController) CreateFeedback(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	feedback, err := c.FeedbackService.CreateFeedback(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, feedback)
}

// UpdateFeedback godoc
// @Summary 修改反馈（作者或管理员）
// @Tags 反馈
// @Accept  json
// @Produce  json
// @Param   id path int true "反馈ID"
// @Param   body body service.FeedbackRequest true "评分与评价"
// @Success 200 {object} util.Response{data=model.Feedback} "成功"
// @Router /api/feedback/{id} [put]
func (c *CommunityController) UpdateFeedback(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	feedback, err := c.FeedbackService.UpdateFeedback(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}

// DeleteFeedback godoc
// @Summary 删除反馈（作者或管理员）
// @Tags 反馈
// @Produce  json
// @Param   id path int true "反馈ID"
// @Success 200 {object} util.Response "删除成功"
// @Router /api/feedback/{id} [delete]
func (c *CommunityController) DeleteFeedback(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.FeedbackService.DeleteFeedback(ctx.Request.Context(), util.GetUserFromContext(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Feedback deleted"})
}
