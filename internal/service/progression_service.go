package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressionService 积分、排行榜与成就的联动
type ProgressionService struct {
	DB              *gorm.DB
	UserRepo        *repository.UserRepository
	LeaderboardRepo *repository.LeaderboardRepository
	AchievementRepo *repository.AchievementRepository

	// 排行榜默认/最大条数，配置热更新时替换
	boardDefault atomic.Int64
	boardMax     atomic.Int64
}

func NewProgressionService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	leaderboardRepo *repository.LeaderboardRepository,
	achievementRepo *repository.AchievementRepository,
	cfg *config.Config,
) *ProgressionService {
	s := &ProgressionService{
		DB:              db,
		UserRepo:        userRepo,
		LeaderboardRepo: leaderboardRepo,
		AchievementRepo: achievementRepo,
	}
	s.SetLeaderboardSize(8, 100)
	if cfg != nil {
		s.SetLeaderboardSize(cfg.Leaderboard.DefaultSize, cfg.Leaderboard.MaxSize)
	}
	return s
}

func (s *ProgressionService) SetLeaderboardSize(def, max int) {
	if def <= 0 {
		return
	}
	if max < def {
		max = def
	}
	s.boardDefault.Store(int64(def))
	s.boardMax.Store(int64(max))
}

// AwardResult 一次加分的结果
type AwardResult struct {
	PointsAwarded   int                 `json:"pointsAwarded"`
	TotalPoints     int                 `json:"totalPoints"`
	NewAchievements []model.Achievement `json:"newAchievements"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

type UserPoints struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

type AchievementView struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	IconURL        string    `json:"iconUrl"`
	PointsRequired int       `json:"pointsRequired"`
	EarnedAt       time.Time `json:"earnedAt"`
	New            bool      `json:"new"`
}

type UserAchievements struct {
	UserID       uint              `json:"userId"`
	Username     string            `json:"username"`
	Points       int               `json:"points"`
	Achievements []AchievementView `json:"achievements"`
	NewlyEarned  int               `json:"newlyEarned"`
}

func (s *ProgressionService) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.DB
}

// AddPoints 原子累加用户积分，并把排行榜分数覆盖为新的总分
func (s *ProgressionService) AddPoints(ctx context.Context, tx *gorm.DB, userID uint, delta int) (int, error) {
	if delta < 0 {
		return 0, util.Validation("points delta must not be negative")
	}
	db := s.conn(tx)

	total, err := s.UserRepo.WithTx(db).IncrementPoints(ctx, userID, delta)
	if err != nil {
		return 0, util.UserNotFoundOr(err)
	}

	if err := s.LeaderboardRepo.WithTx(db).Upsert(ctx, userID, total); err != nil {
		return 0, err
	}
	return total, nil
}

// EvaluateAchievements 为积分达到门槛且尚未获得的成就补发记录，幂等且不撤销
func (s *ProgressionService) EvaluateAchievements(ctx context.Context, tx *gorm.DB, userID uint) ([]model.Achievement, error) {
	db := s.conn(tx)

	user, err := s.UserRepo.WithTx(db).FindByID(ctx, userID)
	if err != nil {
		return nil, util.UserNotFoundOr(err)
	}

	achievementRepo := s.AchievementRepo.WithTx(db)
	eligible, err := achievementRepo.FindUnearnedEligible(ctx, user.ID, user.Points)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	earned := make([]model.Achievement, 0, len(eligible))
	for _, a := range eligible {
		inserted, err := achievementRepo.Grant(ctx, user.ID, a.ID, now)
		if err != nil {
			return nil, err
		}
		if inserted {
			earned = append(earned, a)
		}
	}
	return earned, nil
}

// Award 加分后立即评估成就，tx 为空时自行开启事务
func (s *ProgressionService) Award(ctx context.Context, tx *gorm.DB, userID uint, delta int) (*AwardResult, error) {
	if tx == nil {
		var result *AwardResult
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			result, err = s.Award(ctx, tx, userID, delta)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.Observe(userID, result)
		return result, nil
	}

	total, err := s.AddPoints(ctx, tx, userID, delta)
	if err != nil {
		return nil, err
	}
	earned, err := s.EvaluateAchievements(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	return &AwardResult{
		PointsAwarded:   delta,
		TotalPoints:     total,
		NewAchievements: earned,
	}, nil
}

// Observe 事务提交后记录指标与日志
func (s *ProgressionService) Observe(userID uint, result *AwardResult) {
	if result == nil {
		return
	}
	if result.PointsAwarded > 0 {
		monitoring.PointsAwarded.Add(float64(result.PointsAwarded))
		logger.Log.Info("points awarded",
			zap.Uint("user_id", userID),
			zap.Int("delta", result.PointsAwarded),
			zap.Int("total", result.TotalPoints),
		)
	}
	for _, a := range result.NewAchievements {
		monitoring.AchievementsUnlocked.Inc()
		logger.Log.Info("achievement unlocked",
			zap.Uint("user_id", userID),
			zap.Uint("achievement_id", a.ID),
			zap.String("name", a.Name),
		)
	}
}

func (s *ProgressionService) leaderboardLimit(limit int) int {
	def, max := int(s.boardDefault.Load()), int(s.boardMax.Load())
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// Leaderboard 积分降序，同分按用户 ID 升序
func (s *ProgressionService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.LeaderboardRepo.Top(ctx, s.leaderboardLimit(limit))
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			Rank:     i + 1,
			ID:       row.UserID,
			Username: row.Username,
			Points:   row.Points,
		}
	}
	return entries, nil
}

func (s *ProgressionService) UserPoints(ctx context.Context, username string) (*UserPoints, error) {
	user, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, util.UserNotFoundOr(err)
	}
	return &UserPoints{ID: user.ID, Username: user.Username, Points: user.Points}, nil
}

// UserAchievements 先补发满足门槛的成就，再返回全部已获得成就
func (s *ProgressionService) UserAchievements(ctx context.Context, username string) (*UserAchievements, error) {
	user, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, util.UserNotFoundOr(err)
	}

	var newly []model.Achievement
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		newly, err = s.EvaluateAchievements(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Observe(user.ID, &AwardResult{NewAchievements: newly})

	earned, err := s.AchievementRepo.ListEarned(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isNew := make(map[uint]bool, len(newly))
	for _, a := range newly {
		isNew[a.ID] = true
	}

	views := make([]AchievementView, len(earned))
	for i, e := range earned {
		views[i] = AchievementView{
			ID:             e.ID,
			Name:           e.Name,
			Description:    e.Description,
			IconURL:        e.IconURL,
			PointsRequired: e.PointsRequired,
			EarnedAt:       e.EarnedAt,
			New:            isNew[e.ID],
		}
	}

	return &UserAchievements{
		UserID:       user.ID,
		Username:     user.Username,
		Points:       user.Points,
		Achievements: views,
		NewlyEarned:  len(newly),
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
