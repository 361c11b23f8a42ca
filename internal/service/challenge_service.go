package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

type ChallengeService struct {
	DB          *gorm.DB
	Repo        *repository.ChallengeRepository
	Progression *ProgressionService
}

func NewChallengeService(db *gorm.DB, repo *repository.ChallengeRepository, progression *ProgressionService) *ChallengeService {
	return &ChallengeService{DB: db, Repo: repo, Progression: progression}
}

type CreateChallengeRequest struct {
	Title        string    `json:"title" binding:"required,max=100"`
	Description  string    `json:"description"`
	PointsReward int       `json:"points_reward" binding:"min=0"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	EndDate      time.Time `json:"end_date" binding:"required"`
}

type ChallengeCompletion struct {
	Completion    *model.UserChallenge `json:"completion"`
	Created       bool                 `json:"created"`
	PointsAwarded int                  `json:"pointsAwarded"`
	TotalPoints   int                  `json:"totalPoints,omitempty"`
}

func (s *ChallengeService) ListChallenges(ctx context.Context, activeOnly bool) ([]model.Challenge, error) {
	if activeOnly {
		now := time.Now()
		return s.Repo.List(ctx, &now)
	}
	return s.Repo.List(ctx, nil)
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, actor *model.User, req CreateChallengeRequest) (*model.Challenge, error) {
	if err := RequireRole(actor, model.Contributor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.Validation("title is required")
	}
	if req.PointsReward < 0 {
		return nil, util.Validation("points_reward must not be negative")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, util.Validation("end_date must not be before start_date")
	}

	challenge := &model.Challenge{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		PointsReward: req.PointsReward,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if err := s.Repo.Create(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// CompleteChallenge 仅在挑战时间窗内可完成；重复完成直接返回已有记录
func (s *ChallengeService) CompleteChallenge(ctx context.Context, actor *model.User, challengeID uint) (*ChallengeCompletion, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	challenge, err := s.Repo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, util.NotFoundOr(err, "challenge")
	}

	existing, err := s.Repo.FindCompletion(ctx, actor.ID, challengeID)
	if err == nil && existing.CompletedAt != nil {
		return &ChallengeCompletion{Completion: existing}, nil
	}
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	now := time.Now()
	if !challenge.ActiveAt(now) {
		return nil, util.Validation("challenge %d is not active", challengeID)
	}

	result := &ChallengeCompletion{}
	var award *AwardResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)

		completion := existing
		if completion == nil {
			completion = &model.UserChallenge{UserID: actor.ID, ChallengeID: challengeID}
		}
		completion.CompletedAt = &now
		if err := repo.SaveCompletion(ctx, completion); err != nil {
			return err
		}
		result.Completion = completion

		var err error
		award, err = s.Progression.Award(ctx, tx, actor.ID, challenge.PointsReward)
		return err
	})
	if err != nil {
		// 并发完成时唯一索引冲突，返回先写入的那条
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.Repo.FindCompletion(ctx, actor.ID, challengeID)
			if findErr != nil {
				return nil, findErr
			}
			return &ChallengeCompletion{Completion: existing}, nil
		}
		return nil, err
	}

	s.Progression.Observe(actor.ID, award)
	result.Created = true
	result.PointsAwarded = award.PointsAwarded
	result.TotalPoints = award.TotalPoints
	return result, nil
}
