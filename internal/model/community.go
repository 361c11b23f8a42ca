package model

import (
	"time"
)

// Comment 可独立存在，也可挂在某个资源下
type Comment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	ResourceID *uint     `gorm:"index" json:"resourceId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}

type Reply struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	CommentID uint      `gorm:"index;not null" json:"commentId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Reply) TableName() string {
	return "replies"
}

type Feedback struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	ResourceID uint      `gorm:"index;not null" json:"resourceId"`
	Comment    string    `gorm:"type:text" json:"comment"`
	Rating     int       `gorm:"not null" json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Feedback) TableName() string {
	return "feedback"
}
