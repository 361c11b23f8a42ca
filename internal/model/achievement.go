package model

import "time"

type Achievement struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	IconURL        string    `gorm:"size:255" json:"iconUrl"`
	PointsRequired int       `gorm:"not null;default:0;index" json:"pointsRequired"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type UserAchievement struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"userId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}

// Leaderboard 与用户一对一，分数始终等于用户当前积分
type Leaderboard struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"userId"`
	Score  int  `gorm:"not null;default:0" json:"score"`
}

func (Leaderboard) TableName() string {
	return "leaderboards"
}
