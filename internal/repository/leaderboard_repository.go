package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

func (r *LeaderboardRepository) WithTx(tx *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: tx}
}

// Upsert 写入用户当前总分：不存在则插入，存在则覆盖 score
func (r *LeaderboardRepository) Upsert(ctx context.Context, userID uint, score int) error {
	entry := model.Leaderboard{UserID: userID, Score: score}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score"}),
		}).
		Create(&entry).Error
}

type LeaderboardRow struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// Top 按分数降序、用户 ID 升序返回前 limit 名
func (r *LeaderboardRepository) Top(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.DB.WithContext(ctx).Model(&model.Leaderboard{}).
		Select("leaderboards.user_id, users.username, leaderboards.score AS points").
		Joins("JOIN users ON users.id = leaderboards.user_id").
		Order("leaderboards.score DESC, leaderboards.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
