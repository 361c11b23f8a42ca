package model

import "time"

type Challenge struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	PointsReward int       `gorm:"not null;default:0" json:"pointsReward"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (c *Challenge) ActiveAt(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

type UserChallenge struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint       `gorm:"uniqueIndex:idx_user_challenge;not null" json:"userId"`
	ChallengeID uint       `gorm:"uniqueIndex:idx_user_challenge;not null" json:"challengeId"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (UserChallenge) TableName() string {
	return "user_challenges"
}
