package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) WithTx(tx *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: tx}
}

func (r *QuizRepository) CreateNode(ctx context.Context, node *model.QuizContent) error {
	return r.DB.WithContext(ctx).Create(node).Error
}

func (r *QuizRepository) FindNode(ctx context.Context, id uint) (*model.QuizContent, error) {
	var node model.QuizContent
	err := r.DB.WithContext(ctx).First(&node, id).Error
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// FindQuiz 仅匹配 type = quiz 的节点
func (r *QuizRepository) FindQuiz(ctx context.Context, id uint) (*model.QuizContent, error) {
	var node model.QuizContent
	err := r.DB.WithContext(ctx).
		Where("id = ? AND type = ?", id, model.NodeQuiz).
		First(&node).Error
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *QuizRepository) ListQuizzesByModule(ctx context.Context, moduleID uint) ([]model.QuizContent, error) {
	var quizzes []model.QuizContent
	err := r.DB.WithContext(ctx).
		Where("module_id = ? AND type = ? AND parent_id IS NULL", moduleID, model.NodeQuiz).
		Order("id ASC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Children(ctx context.Context, parentIDs ...uint) ([]model.QuizContent, error) {
	var nodes []model.QuizContent
	if len(parentIDs) == 0 {
		return nodes, nil
	}
	err := r.DB.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("id ASC").
		Find(&nodes).Error
	return nodes, err
}

func (r *QuizRepository) CreateSubmission(ctx context.Context, s *model.QuizSubmission) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *QuizRepository) LatestSubmission(ctx context.Context, userID, quizID uint) (*model.QuizSubmission, error) {
	var s model.QuizSubmission
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("submitted_at DESC, id DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// BestScore 用户在该测验上的历史最高分，无提交时为 0
func (r *QuizRepository) BestScore(ctx context.Context, userID, quizID uint) (int, error) {
	var best int
	err := r.DB.WithContext(ctx).Model(&model.QuizSubmission{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Select("COALESCE(MAX(score), 0)").
		Scan(&best).Error
	return best, err
}
