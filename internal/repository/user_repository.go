package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// LockByID 对用户行加写锁（SELECT ... FOR UPDATE），须在事务内调用；SQLite 会忽略锁子句
func (r *UserRepository) LockByID(ctx context.Context, id uint) error {
	var user model.User
	return r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, id).Error
}

// IncrementPoints 单行原子自增，避免并发提交时丢失更新
func (r *UserRepository) IncrementPoints(ctx context.Context, userID uint, delta int) (int, error) {
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("points", gorm.Expr("points + ?", delta)).Error
	if err != nil {
		return 0, err
	}

	// MySQL 的 RowsAffected 不统计值未变化的行，这里以回读结果判断用户是否存在
	var points []int
	err = r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Pluck("points", &points).Error
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return points[0], nil
}
