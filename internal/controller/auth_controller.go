package controller

import (
	"net/http"
	"strings"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	Session     *config.SessionConfig
}

func NewAuthController(authService *service.AuthService, session *config.SessionConfig) *AuthController {
	return &AuthController{
		AuthService: authService,
		Session:     session,
	}
}

type SessionUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Points   int    `json:"points"`
}

func (c *AuthController) sameSite() http.SameSite {
	switch strings.ToLower(c.Session.CookieSameSite) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	}
	return http.SameSiteNoneMode
}

func (c *AuthController) setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	ctx.SetSameSite(c.sameSite())
	ctx.SetCookie(c.Session.CookieName, value, maxAge, "/", "", c.Session.CookieSecure, true)
}

// Signup godoc
// @Summary 注册新用户
// @Description 角色缺省为 Learner；用户名或邮箱重复返回 409
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.SignupRequest true "注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户名或邮箱已被注册"
// @Router /api/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req service.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Signup(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"message": "User created successfully",
		"role":    user.Role,
	})
}

// Login godoc
// @Summary 用户登录
// @Description 登录成功后写入会话 Cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "登录凭证"
// @Success 200 {object} util.Response{data=SessionUser} "登录成功"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, session.Token, int(c.Session.ExpireTime.Seconds()))
	util.Success(ctx, SessionUser{
		ID:       session.User.ID,
		Username: session.User.Username,
		Email:    session.User.Email,
		Role:     string(session.User.Role),
		Points:   session.User.Points,
	})
}

// Logout godoc
// @Summary 注销
// @Description 吊销当前会话并清除 Cookie
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response "注销成功"
// @Failure 401 {object} util.Response "未登录"
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetClaimsFromContext(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setSessionCookie(ctx, "", -1)
	util.Success(ctx, gin.H{"message": "Logged out successfully"})
}

// Me godoc
// @Summary 当前用户
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=SessionUser} "成功"
// @Failure 401 {object} util.Response "未登录"
// @Router /api/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, SessionUser{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		Points:   user.Points,
	})
}
