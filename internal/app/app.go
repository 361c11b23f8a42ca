package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/controller"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/configwatcher"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/security"
	"learnhub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Tracer          *sdktrace.TracerProvider
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	learningPath *repository.LearningPathRepository
	resource     *repository.ResourceRepository
	quiz         *repository.QuizRepository
	achievement  *repository.AchievementRepository
	leaderboard  *repository.LeaderboardRepository
	challenge    *repository.ChallengeRepository
	comment      *repository.CommentRepository
	feedback     *repository.FeedbackRepository
	session      *repository.SessionRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	progression  *service.ProgressionService
	quiz         *service.QuizService
	learningPath *service.LearningPathService
	resource     *service.ResourceService
	achievement  *service.AchievementService
	challenge    *service.ChallengeService
	community    *service.CommunityService
	feedback     *service.FeedbackService
}

type controllers struct {
	auth         *controller.AuthController
	learningPath *controller.LearningPathController
	quiz         *controller.QuizController
	progression  *controller.ProgressionController
	achievement  *controller.AchievementController
	challenge    *controller.ChallengeController
	community    *controller.CommunityController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		resource:     repository.NewResourceRepository(db),
		quiz:         repository.NewQuizRepository(db),
		achievement:  repository.NewAchievementRepository(db),
		leaderboard:  repository.NewLeaderboardRepository(db),
		challenge:    repository.NewChallengeRepository(db),
		comment:      repository.NewCommentRepository(db),
		feedback:     repository.NewFeedbackRepository(db),
		session:      repository.NewSessionRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(db, repos.user, repos.leaderboard, repos.session, cfg)
	s.progression = service.NewProgressionService(db, repos.user, repos.leaderboard, repos.achievement, cfg)
	s.quiz = service.NewQuizService(db, repos.quiz, repos.learningPath, s.progression)
	s.learningPath = service.NewLearningPathService(db, repos.learningPath, repos.resource, repos.quiz, s.quiz)
	s.resource = service.NewResourceService(db, repos.resource, repos.learningPath, repos.feedback)
	s.achievement = service.NewAchievementService(repos.achievement, s.storage)
	s.challenge = service.NewChallengeService(db, repos.challenge, s.progression)
	s.community = service.NewCommunityService(repos.comment, repos.resource)
	s.feedback = service.NewFeedbackService(repos.feedback, repos.resource)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth, &a.Config.Session),
		learningPath: controller.NewLearningPathController(s.learningPath, s.resource),
		quiz:         controller.NewQuizController(s.quiz),
		progression:  controller.NewProgressionController(s.progression),
		achievement:  controller.NewAchievementController(s.achievement),
		challenge:    controller.NewChallengeController(s.challenge),
		community:    controller.NewCommunityController(s.community, s.feedback),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.RequestLogger())
}

// registerConfigCallbacks 配置热更新：日志级别与排行榜条数
func (a *App) registerConfigCallbacks() {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.services.progression.SetLeaderboardSize(cfg.Leaderboard.DefaultSize, cfg.Leaderboard.MaxSize)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// 开发模式自动迁移；release 模式需显式 -migrate
	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}
	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services, db, rdb)
	app.registerConfigCallbacks()

	// 监控初始化
	monitoring.Init()
	controller.RegisterValidators()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("learnhub-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing, continuing without it", zap.Error(err))
			cfg.Tracing.Enabled = false
		} else {
			app.Tracer = tp
		}
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.ConfigFile != "" {
		go func() {
			err := configwatcher.WatchConfig(ctx, a.Config.ConfigFile, func(newCfg *config.Config) {
				for _, callback := range a.configCallbacks {
					callback(newCfg)
				}
			})
			if err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.Tracer != nil {
		if err := a.Tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
	_ = logger.Log.Sync()
}
