package repository

import (
	"context"
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) WithTx(tx *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: tx}
}

func (r *AchievementRepository) Create(ctx context.Context, a *model.Achievement) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *AchievementRepository) FindByID(ctx context.Context, id uint) (*model.Achievement, error) {
	var a model.Achievement
	err := r.DB.WithContext(ctx).First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AchievementRepository) List(ctx context.Context) ([]model.Achievement, error) {
	var as []model.Achievement
	err := r.DB.WithContext(ctx).Order("points_required ASC, id ASC").Find(&as).Error
	return as, err
}

func (r *AchievementRepository) UpdateIcon(ctx context.Context, id uint, iconURL string) error {
	return r.DB.WithContext(ctx).Model(&model.Achievement{}).
		Where("id = ?", id).
		Update("icon_url", iconURL).Error
}

// FindUnearnedEligible 返回门槛不高于 points 且用户尚未获得的成就
func (r *AchievementRepository) FindUnearnedEligible(ctx context.Context, userID uint, points int) ([]model.Achievement, error) {
	var as []model.Achievement
	earned := r.DB.Model(&model.UserAchievement{}).Select("achievement_id").Where("user_id = ?", userID)
	err := r.DB.WithContext(ctx).
		Where("points_required <= ?", points).
		Where("id NOT IN (?)", earned).
		Order("points_required ASC, id ASC").
		Find(&as).Error
	return as, err
}

// Grant 插入用户成就；唯一索引冲突时忽略，返回是否新插入
func (r *AchievementRepository) Grant(ctx context.Context, userID, achievementID uint, at time.Time) (bool, error) {
	ua := model.UserAchievement{UserID: userID, AchievementID: achievementID, EarnedAt: at}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ua)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type EarnedAchievement struct {
	model.Achievement
	EarnedAt time.Time `json:"earnedAt"`
}

func (r *AchievementRepository) ListEarned(ctx context.Context, userID uint) ([]EarnedAchievement, error) {
	var rows []EarnedAchievement
	err := r.DB.WithContext(ctx).Model(&model.Achievement{}).
		Select("achievements.*, user_achievements.earned_at").
		Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Order("user_achievements.earned_at ASC, achievements.id ASC").
		Scan(&rows).Error
	return rows, err
}
