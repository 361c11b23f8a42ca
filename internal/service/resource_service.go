package service

import (
	"context"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

type ResourceService struct {
	DB           *gorm.DB
	Repo         *repository.ResourceRepository
	PathRepo     *repository.LearningPathRepository
	FeedbackRepo *repository.FeedbackRepository
}

func NewResourceService(
	db *gorm.DB,
	repo *repository.ResourceRepository,
	pathRepo *repository.LearningPathRepository,
	feedbackRepo *repository.FeedbackRepository,
) *ResourceService {
	return &ResourceService{
		DB:           db,
		Repo:         repo,
		PathRepo:     pathRepo,
		FeedbackRepo: feedbackRepo,
	}
}

type ResourceDetail struct {
	model.Resource
	AverageRating float64 `json:"averageRating"`
}

func newResource(actor *model.User, in ResourceInput) (*model.Resource, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, util.Validation("resource title is required")
	}
	rt := model.ResourceType(strings.TrimSpace(in.Type))
	if !rt.Valid() {
		return nil, util.Validation("resource type must be one of Video, Article, Tutorial")
	}
	return &model.Resource{
		Title:         title,
		URL:           strings.TrimSpace(in.URL),
		Type:          rt,
		Description:   in.Description,
		ContributorID: actor.ID,
	}, nil
}

// CreateResource 创建资源并挂到模块下（路径作者或管理员）
func (s *ResourceService) CreateResource(ctx context.Context, actor *model.User, moduleID uint, in ResourceInput) (*model.Resource, error) {
	if _, err := requireModuleOwner(ctx, s.PathRepo, actor, moduleID); err != nil {
		return nil, err
	}

	resource, err := newResource(actor, in)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)
		if err := repo.Create(ctx, resource); err != nil {
			return err
		}
		return repo.LinkModule(ctx, moduleID, resource.ID)
	})
	if err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *ResourceService) GetResource(ctx context.Context, id uint) (*ResourceDetail, error) {
	resource, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, util.NotFoundOr(err, "resource")
	}
	avg, err := s.FeedbackRepo.AverageRating(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ResourceDetail{Resource: *resource, AverageRating: avg}, nil
}
