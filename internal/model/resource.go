package model

import "time"

type ResourceType string

const (
	Video    ResourceType = "Video"
	Article  ResourceType = "Article"
	Tutorial ResourceType = "Tutorial"
)

func (t ResourceType) Valid() bool {
	switch t {
	case Video, Article, Tutorial:
		return true
	}
	return false
}

// Resource represents a learning resource
// swagger:model Resource
type Resource struct {
	BaseModel
	Title         string       `gorm:"size:100;not null" json:"title"`
	URL           string       `gorm:"size:200" json:"url"`
	Type          ResourceType `gorm:"size:20;not null" json:"type"`
	Description   string       `gorm:"type:text" json:"description"`
	ContributorID uint         `gorm:"index" json:"contributorId"`
}

func (Resource) TableName() string {
	return "resources"
}

type ModuleResource struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ModuleID   uint      `gorm:"uniqueIndex:idx_module_resource;not null" json:"moduleId"`
	ResourceID uint      `gorm:"uniqueIndex:idx_module_resource;not null" json:"resourceId"`
	AddedAt    time.Time `json:"addedAt"`
}

func (ModuleResource) TableName() string {
	return "module_resources"
}
