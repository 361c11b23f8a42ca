package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// ListQuizzes godoc
// @Summary 模块下的测验
// @Tags 测验
// @Produce  json
// @Param   id path int true "模块ID"
// @Success 200 {object} util.Response{data=[]model.QuizContent} "成功"
// @Router /api/modules/{id}/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	quizzes, err := c.QuizService.ListQuizzes(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 支持 questions 树形写法或 question/options/correct_option 扁平写法（Contributor）
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   id path int true "模块ID"
// @Param   body body service.CreateQuizRequest true "测验内容"
// @Success 201 {object} util.Response{data=service.QuizTree} "创建成功"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/modules/{id}/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tree, err := c.QuizService.CreateQuiz(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, tree)
}

// GetQuiz godoc
// @Summary 测验内容
// @Description 学习者看不到 isCorrect
// @Tags 测验
// @Produce  json
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizTree} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	tree, err := c.QuizService.GetQuiz(ctx.Request.Context(), util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tree)
}

// GetChildren godoc
// @Summary 测验节点的子节点
// @Tags 测验
// @Produce  json
// @Param   id path int true "节点ID"
// @Success 200 {object} util.Response{data=[]model.QuizContent} "成功"
// @Router /api/quiz-content/{id}/children [get]
func (c *QuizController) GetChildren(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	children, err := c.QuizService.GetChildren(ctx.Request.Context(), util.GetUserFromContext(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, children)
}

// Submit godoc
// @Summary 提交测验
// @Description selected_options 为选项 ID 列表；也可用 selected_option 按选项文本提交
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   id path int true "测验ID"
// @Param   body body service.SubmitQuizRequest true "作答"
// @Success 200 {object} util.Response{data=service.SubmissionResult} "成功"
// @Failure 400 {object} util.Response "未作答"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.Submit(ctx.Request.Context(), util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetSubmission godoc
// @Summary 最近一次提交
// @Tags 测验
// @Produce  json
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.QuizSubmission} "成功"
// @Failure 404 {object} util.Response "没有提交记录"
// @Router /api/quizzes/{id}/submission [get]
func (c *QuizController) GetSubmission(ctx *gin.Context) {
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sub, err := c.QuizService.GetSubmission(ctx.Request.Context(), user.ID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
