package app

import (
	"learnhub_backend/docs"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.SessionAuth(a.services.auth, cfg.Session.CookieName))
	{
		a.registerLearnerRoutes(authGroup, c)

		// 内容创作（Contributor，管理员同样放行）
		contributor := authGroup.Group("")
		contributor.Use(middleware.RoleMiddleware(model.Contributor))
		a.registerContributorRoutes(contributor, c)

		// 管理员
		admin := authGroup.Group("")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		a.registerAdminRoutes(admin, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/signup", c.auth.Signup)
		public.POST("/login", c.auth.Login)

		public.GET("/leaderboard", c.progression.Leaderboard)
		public.GET("/users/:username/points", c.progression.UserPoints)
		public.GET("/users/:username/achievements", c.progression.UserAchievements)

		public.GET("/achievements", c.achievement.ListAchievements)
		public.GET("/challenges", c.challenge.ListChallenges)

		public.GET("/resources/:id", c.learningPath.GetResource)
		public.GET("/resources/:id/feedback", c.community.ListFeedback)

		public.GET("/comments", c.community.ListComments)
		public.GET("/comments/:id", c.community.GetComment)
		public.GET("/comments/:id/replies", c.community.ListReplies)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/logout", c.auth.Logout)
	rg.GET("/me", c.auth.Me)

	// 学习路径
	rg.GET("/learning-paths", c.learningPath.ListAvailable)
	rg.GET("/learning-paths/enrolled", c.learningPath.ListEnrolled)
	rg.GET("/learning-paths/:id", c.learningPath.GetPath)
	rg.POST("/learning-paths/:id/enroll", c.learningPath.Enroll)
	rg.PUT("/learning-paths/:id/progress", c.learningPath.UpdateProgress)
	rg.GET("/learning-paths/:id/modules", c.learningPath.ListModules)
	rg.GET("/modules/:id/resources", c.learningPath.ListResources)

	// 测验
	rg.GET("/modules/:id/quizzes", c.quiz.ListQuizzes)
	rg.GET("/quizzes/:id", c.quiz.GetQuiz)
	rg.GET("/quiz-content/:id/children", c.quiz.GetChildren)
	rg.POST("/quizzes/:id/submit", c.quiz.Submit)
	rg.GET("/quizzes/:id/submission", c.quiz.GetSubmission)

	// 挑战
	rg.POST("/challenges/:id/complete", c.challenge.CompleteChallenge)

	// 评论、回复与反馈
	rg.POST("/comments", c.community.CreateComment)
	rg.PUT("/comments/:id", c.community.UpdateComment)
	rg.DELETE("/comments/:id", c.community.DeleteComment)
	rg.POST("/comments/:id/replies", c.community.CreateReply)
	rg.PUT("/comments/:id/replies/:replyId", c.community.UpdateReply)
	rg.DELETE("/comments/:id/replies/:replyId", c.community.DeleteReply)
	rg.POST("/resources/:id/feedback", c.community.CreateFeedback)
	rg.PUT("/feedback/:id", c.community.UpdateFeedback)
	rg.DELETE("/feedback/:id", c.community.DeleteFeedback)
}

func (a *App) registerContributorRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/learning-paths", c.learningPath.CreatePath)
	rg.GET("/update-learning-path/:id", c.learningPath.GetPathForEdit)
	rg.PUT("/update-learning-path/:id", c.learningPath.UpdatePath)
	rg.DELETE("/learning-paths/:id", c.learningPath.DeletePath)
	rg.POST("/learning-paths/:id/modules", c.learningPath.CreateModule)
	rg.POST("/modules/:id/resources", c.learningPath.CreateResource)
	rg.POST("/modules/:id/quizzes", c.quiz.CreateQuiz)
	rg.POST("/challenges", c.challenge.CreateChallenge)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/achievements", c.achievement.CreateAchievement)
	rg.POST("/achievements/:id/icon", c.achievement.UploadIcon)
}
