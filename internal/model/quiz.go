package model

import (
	"time"

	"gorm.io/datatypes"
)

type QuizNodeType string

const (
	NodeQuiz     QuizNodeType = "quiz"
	NodeQuestion QuizNodeType = "question"
	NodeOption   QuizNodeType = "option"
)

// QuizContent 测验内容节点：quiz -> question -> option 三层，通过 parent_id 自关联
type QuizContent struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	ModuleID    uint         `gorm:"index" json:"moduleId"`
	ParentID    *uint        `gorm:"index" json:"parentId"`
	Type        QuizNodeType `gorm:"size:20;not null;index" json:"type"`
	ContentText string       `gorm:"type:text;not null" json:"contentText"`
	Points      *int         `json:"points,omitempty"`    // 仅 quiz/question
	IsCorrect   *bool        `json:"isCorrect,omitempty"` // 仅 option
	CreatedAt   time.Time    `json:"createdAt"`
}

func (QuizContent) TableName() string {
	return "quiz_content"
}

func (q *QuizContent) PointValue() int {
	if q.Points == nil {
		return 0
	}
	return *q.Points
}

func (q *QuizContent) Correct() bool {
	return q.IsCorrect != nil && *q.IsCorrect
}

// QuizSubmission 存储用户的测验提交
type QuizSubmission struct {
	ID              uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint           `gorm:"index;not null" json:"userId"`
	QuizID          uint           `gorm:"index;not null" json:"quizId"`
	SelectedOptions datatypes.JSON `json:"selectedOptions"`
	Score           int            `gorm:"not null" json:"score"`
	PointsAwarded   int            `gorm:"not null;default:0" json:"pointsAwarded"`
	SubmittedAt     time.Time      `gorm:"index" json:"submittedAt"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}
