package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	Storage         *StorageService
}

func NewAchievementService(achievementRepo *repository.AchievementRepository, storage *StorageService) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		Storage:         storage,
	}
}

type CreateAchievementRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Description    string `json:"description"`
	IconURL        string `json:"icon_url" binding:"omitempty,max=255"`
	PointsRequired int    `json:"points_required" binding:"min=0"`
}

func (s *AchievementService) CreateAchievement(ctx context.Context, actor *model.User, req CreateAchievementRequest) (*model.Achievement, error) {
	if err := RequireRole(actor, model.Admin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, util.Validation("name is required")
	}
	if req.PointsRequired < 0 {
		return nil, util.Validation("points_required must not be negative")
	}

	a := &model.Achievement{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		IconURL:        req.IconURL,
		PointsRequired: req.PointsRequired,
	}
	if err := s.AchievementRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AchievementService) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	return s.AchievementRepo.List(ctx)
}

// UploadIcon 图标统一缩放到 IconEdge 以内并转成 PNG 后上传
func (s *AchievementService) UploadIcon(ctx context.Context, actor *model.User, id uint, src io.Reader) (*model.Achievement, error) {
	if err := RequireRole(actor, model.Admin); err != nil {
		return nil, err
	}
	a, err := s.AchievementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, util.NotFoundOr(err, "achievement")
	}

	raw, err := io.ReadAll(io.LimitReader(src, util.MaxIconSize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > util.MaxIconSize {
		return nil, util.Validation("icon exceeds %d bytes", util.MaxIconSize)
	}

	if _, err := util.ValidateMimeType(bytes.NewReader(raw), []string{util.MimeImage}); err != nil {
		return nil, util.Validation("%s", err.Error())
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, util.Validation("icon is not a decodable image")
	}
	icon := imaging.Fit(img, util.IconEdge, util.IconEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, icon, imaging.PNG); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("achievements/%s/%s.png", time.Now().Format("20060102"), uuid.NewString())
	url, err := s.Storage.Upload(ctx, key, &buf, int64(buf.Len()), util.MimePNG)
	if err != nil {
		return nil, err
	}

	if err := s.AchievementRepo.UpdateIcon(ctx, a.ID, url); err != nil {
		return nil, err
	}
	a.IconURL = url

	logger.Log.Info("achievement icon uploaded", zap.Uint("achievement_id", a.ID), zap.String("url", url))
	return a, nil
}
