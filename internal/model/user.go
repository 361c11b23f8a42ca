package model

import (
	"time"
)

type UserRole string

const (
	Admin       UserRole = "Admin"
	Contributor UserRole = "Contributor"
	Learner     UserRole = "Learner"
)

func (r UserRole) Valid() bool {
	switch r {
	case Admin, Contributor, Learner:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Role         UserRole  `gorm:"size:50;not null;default:'Learner'" json:"role"`
	Points       int       `gorm:"not null;default:0" json:"points"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"dateJoined"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
