package middleware

import (
	"context"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// Authenticator 根据会话令牌解析当前用户，由 service.AuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *util.Claims, error)
}

// SessionToken 优先读取会话 Cookie，其次读取 Authorization: Bearer
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func SessionAuth(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}

		util.SetUser(c, user, claims)
		c.Next()
	}
}

// RoleMiddleware 路由级角色校验，规则与 service.RequireRole 一致
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.RequireRole(util.GetUserFromContext(c), roles...); err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
