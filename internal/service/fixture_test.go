package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/database"

	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	cfg         *config.Config
	sessions    *memSessions
	auth        *AuthService
	progression *ProgressionService
	quizzes     *QuizService
	paths       *LearningPathService
	resources   *ResourceService
	challenges  *ChallengeService
	community   *CommunityService
	feedback    *FeedbackService
	achievement *AchievementService
}

// memSessions 内存版 SessionStore
type memSessions struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (m *memSessions) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[sessionID] = ttl
	return nil
}

func (m *memSessions) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[sessionID]
	return ok, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := database.OpenTestDB(t)
	cfg := &config.Config{
		Session: config.SessionConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Leaderboard: config.LeaderboardConfig{
			DefaultSize: 8,
			MaxSize:     100,
		},
	}

	userRepo := repository.NewUserRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	sessions := &memSessions{revoked: map[string]time.Duration{}}
	progression := NewProgressionService(db, userRepo, leaderboardRepo, achievementRepo, cfg)
	quizzes := NewQuizService(db, quizRepo, pathRepo, progression)

	return &fixture{
		db:          db,
		cfg:         cfg,
		sessions:    sessions,
		auth:        NewAuthService(db, userRepo, leaderboardRepo, sessions, cfg),
		progression: progression,
		quizzes:     quizzes,
		paths:       NewLearningPathService(db, pathRepo, resourceRepo, quizRepo, quizzes),
		resources:   NewResourceService(db, resourceRepo, pathRepo, feedbackRepo),
		challenges:  NewChallengeService(db, challengeRepo, progression),
		community:   NewCommunityService(commentRepo, resourceRepo),
		feedback:    NewFeedbackService(feedbackRepo, resourceRepo),
		achievement: NewAchievementService(achievementRepo, NewStorageService(cfg)),
	}
}

// user 直接写库创建用户与排行榜记录，跳过 bcrypt
func (f *fixture) user(t *testing.T, username string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	if err := f.db.Create(&model.Leaderboard{UserID: u.ID}).Error; err != nil {
		t.Fatalf("create leaderboard row: %v", err)
	}
	return u
}

func (f *fixture) achievementAt(t *testing.T, name string, threshold int) *model.Achievement {
	t.Helper()
	a := &model.Achievement{Name: name, PointsRequired: threshold}
	if err := f.db.Create(a).Error; err != nil {
		t.Fatalf("create achievement: %v", err)
	}
	return a
}

func (f *fixture) reload(t *testing.T, id uint) *model.User {
	t.Helper()
	var u model.User
	if err := f.db.First(&u, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &u
}

func (f *fixture) boardScore(t *testing.T, userID uint) int {
	t.Helper()
	var entry model.Leaderboard
	if err := f.db.Where("user_id = ?", userID).First(&entry).Error; err != nil {
		t.Fatalf("leaderboard row for %d: %v", userID, err)
	}
	return entry.Score
}

// module 创建一个带单模块的路径，返回模块
func (f *fixture) module(t *testing.T, owner *model.User) *model.Module {
	t.Helper()
	detail, err := f.paths.CreatePath(context.Background(), owner, LearningPathRequest{
		Title:   "Go basics",
		Modules: []ModuleInput{{Title: "Syntax"}},
	})
	if err != nil {
		t.Fatalf("create path: %v", err)
	}
	return &detail.Modules[0].Module
}
