package repository

import (
	"context"
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) WithTx(tx *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: tx}
}

func (r *ChallengeRepository) Create(ctx context.Context, c *model.Challenge) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *ChallengeRepository) FindByID(ctx context.Context, id uint) (*model.Challenge, error) {
	var c model.Challenge
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List activeAt 非空时只返回该时刻进行中的挑战
func (r *ChallengeRepository) List(ctx context.Context, activeAt *time.Time) ([]model.Challenge, error) {
	var cs []model.Challenge
	query := r.DB.WithContext(ctx).Model(&model.Challenge{})
	if activeAt != nil {
		query = query.Where("start_date <= ? AND end_date >= ?", *activeAt, *activeAt)
	}
	err := query.Order("end_date ASC, id ASC").Find(&cs).Error
	return cs, err
}

func (r *ChallengeRepository) FindCompletion(ctx context.Context, userID, challengeID uint) (*model.UserChallenge, error) {
	var uc model.UserChallenge
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&uc).Error
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (r *ChallengeRepository) SaveCompletion(ctx context.Context, uc *model.UserChallenge) error {
	return r.DB.WithContext(ctx).Save(uc).Error
}
