package model

import (
	"time"
)

// swagger:model LearningPath
type LearningPath struct {
	BaseModel
	Title         string `gorm:"size:100;not null" json:"title"`
	Description   string `gorm:"type:text" json:"description"`
	ContributorID uint   `gorm:"index" json:"contributorId"`
	Rating        int    `gorm:"default:0" json:"rating"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

type Module struct {
	BaseModel
	Title          string `gorm:"size:100;not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	LearningPathID uint   `gorm:"index;not null" json:"learningPathId"`
}

func (Module) TableName() string {
	return "modules"
}

// UserLearningPath 用户与学习路径的报名记录
type UserLearningPath struct {
	ID                 uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uint       `gorm:"uniqueIndex:idx_user_learning_path;not null" json:"userId"`
	LearningPathID     uint       `gorm:"uniqueIndex:idx_user_learning_path;not null" json:"learningPathId"`
	ProgressPercentage int        `gorm:"default:0" json:"progressPercentage"`
	LastAccessed       time.Time  `json:"lastAccessed"`
	StartedAt          time.Time  `json:"startedAt"`
	CompletedAt        *time.Time `json:"completedAt"`
}

func (UserLearningPath) TableName() string {
	return "user_learning_paths"
}
