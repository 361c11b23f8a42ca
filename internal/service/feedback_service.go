package service

import (
	"context"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
)

type FeedbackService struct {
	Repo         *repository.FeedbackRepository
	ResourceRepo *repository.ResourceRepository
}

func NewFeedbackService(repo *repository.FeedbackRepository, resourceRepo *repository.ResourceRepository) *FeedbackService {
	return &FeedbackService{Repo: repo, ResourceRepo: resourceRepo}
}

type FeedbackRequest struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
}

func validRating(rating int) error {
	if rating < 1 || rating > 5 {
		return util.Validation("rating must be between 1 and 5")
	}
	return nil
}

func (s *FeedbackService) CreateFeedback(ctx context.Context, actor *model.User, resourceID uint, req FeedbackRequest) (*model.Feedback, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	if err := validRating(req.Rating); err != nil {
		return nil, err
	}
	if _, err := s.ResourceRepo.FindByID(ctx, resourceID); err != nil {
		return nil, util.NotFoundOr(err, "resource")
	}

	f := &model.Feedback{
		UserID:     actor.ID,
		ResourceID: resourceID,
		Comment:    req.Comment,
		Rating:     req.Rating,
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeedbackService) ListFeedback(ctx context.Context, resourceID uint) ([]model.Feedback, error) {
	if _, err := s.ResourceRepo.FindByID(ctx, resourceID); err != nil {
		return nil, util.NotFoundOr(err, "resource")
	}
	return s.Repo.ListByResource(ctx, resourceID)
}

func (s *FeedbackService) UpdateFeedback(ctx context.Context, actor *model.User, id uint, req FeedbackRequest) (*model.Feedback, error) {
	f, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, util.NotFoundOr(err, "feedback")
	}
	if err := RequireOwnerOrAdmin(actor, f.UserID); err != nil {
		return nil, err
	}
	if err := validRating(req.Rating); err != nil {
		return nil, err
	}

	f.Comment = req.Comment
	f.Rating = req.Rating
	if err := s.Repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *FeedbackService) DeleteFeedback(ctx context.Context, actor *model.User, id uint) error {
	f, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return util.NotFoundOr(err, "feedback")
	}
	if err := RequireOwnerOrAdmin(actor, f.UserID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, f.ID)
}
