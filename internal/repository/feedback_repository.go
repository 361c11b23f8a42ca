package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

func (r *FeedbackRepository) FindByID(ctx context.Context, id uint) (*model.Feedback, error) {
	var f model.Feedback
	err := r.DB.WithContext(ctx).First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FeedbackRepository) Update(ctx context.Context, f *model.Feedback) error {
	return r.DB.WithContext(ctx).Save(f).Error
}

func (r *FeedbackRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.Feedback{}, id).Error
}

func (r *FeedbackRepository) ListByResource(ctx context.Context, resourceID uint) ([]model.Feedback, error) {
	var fs []model.Feedback
	err := r.DB.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at DESC, id DESC").
		Find(&fs).Error
	return fs, err
}

// AverageRating 资源平均评分，无反馈时为 0
func (r *FeedbackRepository) AverageRating(ctx context.Context, resourceID uint) (float64, error) {
	var avg float64
	err := r.DB.WithContext(ctx).Model(&model.Feedback{}).
		Where("resource_id = ?", resourceID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	return avg, err
}
