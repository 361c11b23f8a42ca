package repository

import (
	"context"
	"time"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func (r *ResourceRepository) WithTx(tx *gorm.DB) *ResourceRepository {
	return &ResourceRepository{DB: tx}
}

func (r *ResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	return r.DB.WithContext(ctx).Create(resource).Error
}

func (r *ResourceRepository) FindByID(ctx context.Context, id uint) (*model.Resource, error) {
	var res model.Resource
	err := r.DB.WithContext(ctx).First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// LinkModule 幂等地把资源挂到模块下
func (r *ResourceRepository) LinkModule(ctx context.Context, moduleID, resourceID uint) error {
	link := model.ModuleResource{ModuleID: moduleID, ResourceID: resourceID}
	return r.DB.WithContext(ctx).
		Where(model.ModuleResource{ModuleID: moduleID, ResourceID: resourceID}).
		Attrs(model.ModuleResource{AddedAt: time.Now()}).
		FirstOrCreate(&link).Error
}

func (r *ResourceRepository) ListByModule(ctx context.Context, moduleID uint) ([]model.Resource, error) {
	var resources []model.Resource
	err := r.DB.WithContext(ctx).
		Joins("JOIN module_resources ON module_resources.resource_id = resources.id").
		Where("module_resources.module_id = ?", moduleID).
		Order("module_resources.added_at ASC, resources.id ASC").
		Find(&resources).Error
	return resources, err
}
