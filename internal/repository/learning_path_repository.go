package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) WithTx(tx *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: tx}
}

func (r *LearningPathRepository) Create(ctx context.Context, path *model.LearningPath) error {
	return r.DB.WithContext(ctx).Create(path).Error
}

func (r *LearningPathRepository) FindByID(ctx context.Context, id uint) (*model.LearningPath, error) {
	var p model.LearningPath
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LearningPathRepository) Update(ctx context.Context, path *model.LearningPath) error {
	return r.DB.WithContext(ctx).Save(path).Error
}

// Delete 删除路径及其模块、模块资源关联、测验内容与报名记录
func (r *LearningPathRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&model.Module{}).Where("learning_path_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}

		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.ModuleResource{}).Error; err != nil {
				return err
			}
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&model.QuizContent{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("learning_path_id = ?", id).Delete(&model.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("learning_path_id = ?", id).Delete(&model.UserLearningPath{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.LearningPath{}, id).Error
	})
}

// ListExcludingEnrolled 返回用户尚未报名的路径
func (r *LearningPathRepository) ListExcludingEnrolled(ctx context.Context, userID uint) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	enrolled := r.DB.Model(&model.UserLearningPath{}).Select("learning_path_id").Where("user_id = ?", userID)
	err := r.DB.WithContext(ctx).
		Where("id NOT IN (?)", enrolled).
		Order("id ASC").
		Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) ListAll(ctx context.Context) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) ListEnrolled(ctx context.Context, userID uint) ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.WithContext(ctx).
		Joins("JOIN user_learning_paths ON user_learning_paths.learning_path_id = learning_paths.id").
		Where("user_learning_paths.user_id = ?", userID).
		Order("learning_paths.id ASC").
		Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) FindEnrollment(ctx context.Context, userID, pathID uint) (*model.UserLearningPath, error) {
	var e model.UserLearningPath
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND learning_path_id = ?", userID, pathID).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *LearningPathRepository) CreateEnrollment(ctx context.Context, e *model.UserLearningPath) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *LearningPathRepository) SaveEnrollment(ctx context.Context, e *model.UserLearningPath) error {
	return r.DB.WithContext(ctx).Save(e).Error
}

func (r *LearningPathRepository) CreateModule(ctx context.Context, m *model.Module) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *LearningPathRepository) UpdateModule(ctx context.Context, m *model.Module) error {
	return r.DB.WithContext(ctx).Save(m).Error
}

func (r *LearningPathRepository) FindModuleByID(ctx context.Context, id uint) (*model.Module, error) {
	var m model.Module
	err := r.DB.WithContext(ctx).First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *LearningPathRepository) ListModules(ctx context.Context, pathID uint) ([]model.Module, error) {
	var ms []model.Module
	err := r.DB.WithContext(ctx).
		Where("learning_path_id = ?", pathID).
		Order("id ASC").
		Find(&ms).Error
	return ms, err
}
