package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LearningPathService struct {
	DB           *gorm.DB
	Repo         *repository.LearningPathRepository
	ResourceRepo *repository.ResourceRepository
	QuizRepo     *repository.QuizRepository
	Quizzes      *QuizService
}

func NewLearningPathService(
	db *gorm.DB,
	repo *repository.LearningPathRepository,
	resourceRepo *repository.ResourceRepository,
	quizRepo *repository.QuizRepository,
	quizzes *QuizService,
) *LearningPathService {
	return &LearningPathService{
		DB:           db,
		Repo:         repo,
		ResourceRepo: resourceRepo,
		QuizRepo:     quizRepo,
		Quizzes:      quizzes,
	}
}

type ResourceInput struct {
	Title       string `json:"title" binding:"required,max=100"`
	URL         string `json:"url" binding:"omitempty,url,max=200"`
	Type        string `json:"type" binding:"required,resource_type"`
	Description string `json:"description"`
}

type ModuleInput struct {
	ID          *uint               `json:"id"`
	Title       string              `json:"title" binding:"required,max=100"`
	Description string              `json:"description"`
	Resources   []ResourceInput     `json:"resources" binding:"dive"`
	Quizzes     []CreateQuizRequest `json:"quizzes"`
}

// LearningPathRequest 创建与更新共用的组合请求
type LearningPathRequest struct {
	Title       string        `json:"title" binding:"required,max=100"`
	Description string        `json:"description"`
	Modules     []ModuleInput `json:"modules" binding:"dive"`
}

type ProgressRequest struct {
	ProgressPercentage int `json:"progress_percentage" binding:"min=0,max=100"`
}

type ModuleDetail struct {
	model.Module
	Resources []model.Resource    `json:"resources"`
	Quizzes   []model.QuizContent `json:"quizzes"`
}

type PathDetail struct {
	model.LearningPath
	Modules []ModuleDetail `json:"modules"`
}

// ListAvailable 返回调用者尚未报名的路径
func (s *LearningPathService) ListAvailable(ctx context.Context, actor *model.User) ([]model.LearningPath, error) {
	if actor == nil {
		return s.Repo.ListAll(ctx)
	}
	return s.Repo.ListExcludingEnrolled(ctx, actor.ID)
}

func (s *LearningPathService) ListEnrolled(ctx context.Context, actor *model.User) ([]model.LearningPath, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	return s.Repo.ListEnrolled(ctx, actor.ID)
}

func (s *LearningPathService) GetPath(ctx context.Context, id uint) (*PathDetail, error) {
	return s.loadDetail(ctx, s.Repo, s.ResourceRepo, s.QuizRepo, id)
}

// Enroll 幂等报名：首次创建返回 created=true，否则返回已有记录
func (s *LearningPathService) Enroll(ctx context.Context, actor *model.User, pathID uint) (*model.UserLearningPath, bool, error) {
	if actor == nil {
		return nil, false, util.ErrUnauthenticated
	}
	if _, err := s.Repo.FindByID(ctx, pathID); err != nil {
		return nil, false, util.NotFoundOr(err, "learning path")
	}

	existing, err := s.Repo.FindEnrollment(ctx, actor.ID, pathID)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	now := time.Now()
	enrollment := &model.UserLearningPath{
		UserID:         actor.ID,
		LearningPathID: pathID,
		StartedAt:      now,
		LastAccessed:   now,
	}
	if err := s.Repo.CreateEnrollment(ctx, enrollment); err != nil {
		// 并发报名时唯一索引冲突，返回先写入的那条
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.Repo.FindEnrollment(ctx, actor.ID, pathID)
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	logger.Log.Info("learning path enrolled",
		zap.Uint("user_id", actor.ID),
		zap.Uint("learning_path_id", pathID),
	)
	return enrollment, true, nil
}

// UpdateProgress 更新报名进度，达到 100 时记录完成时间
func (s *LearningPathService) UpdateProgress(ctx context.Context, actor *model.User, pathID uint, percent int) (*model.UserLearningPath, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	if percent < 0 || percent > 100 {
		return nil, util.Validation("progress_percentage must be between 0 and 100")
	}

	enrollment, err := s.Repo.FindEnrollment(ctx, actor.ID, pathID)
	if err != nil {
		return nil, util.NotFoundOr(err, "enrollment")
	}

	now := time.Now()
	enrollment.ProgressPercentage = percent
	enrollment.LastAccessed = now
	if percent == 100 && enrollment.CompletedAt == nil {
		enrollment.CompletedAt = &now
	}
	if percent < 100 {
		enrollment.CompletedAt = nil
	}

	if err := s.Repo.SaveEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// CreatePath 在一个事务中创建路径及其模块、资源与测验
func (s *LearningPathService) CreatePath(ctx context.Context, actor *model.User, req LearningPathRequest) (*PathDetail, error) {
	if err := RequireRole(actor, model.Contributor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.Validation("title is required")
	}

	var detail *PathDetail
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)

		path := &model.LearningPath{
			Title:         strings.TrimSpace(req.Title),
			Description:   req.Description,
			ContributorID: actor.ID,
		}
		if err := repo.Create(ctx, path); err != nil {
			return err
		}

		for _, in := range req.Modules {
			if in.ID != nil {
				return util.Validation("new learning path cannot reference existing module %d", *in.ID)
			}
			if err := s.createModuleTx(ctx, tx, actor, path.ID, in); err != nil {
				return err
			}
		}

		var err error
		detail, err = s.loadDetail(ctx, repo, s.ResourceRepo.WithTx(tx), s.QuizRepo.WithTx(tx), path.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("learning path created",
		zap.Uint("learning_path_id", detail.ID),
		zap.Uint("contributor_id", actor.ID),
		zap.Int("modules", len(detail.Modules)),
	)
	return detail, nil
}

// GetPathForEdit 读取待编辑的路径，要求拥有者或管理员
func (s *LearningPathService) GetPathForEdit(ctx context.Context, actor *model.User, id uint) (*PathDetail, error) {
	if err := RequireRole(actor, model.Contributor); err != nil {
		return nil, err
	}
	detail, err := s.GetPath(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := RequireOwnerOrAdmin(actor, detail.ContributorID); err != nil {
		return nil, err
	}
	return detail, nil
}

// UpdatePath 带 id 的模块就地更新，不带 id 的模块新建
func (s *LearningPathService) UpdatePath(ctx context.Context, actor *model.User, id uint, req LearningPathRequest) (*PathDetail, error) {
	if err := RequireRole(actor, model.Contributor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.Validation("title is required")
	}

	var detail *PathDetail
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.Repo.WithTx(tx)

		path, err := repo.FindByID(ctx, id)
		if err != nil {
			return util.NotFoundOr(err, "learning path")
		}
		if err := RequireOwnerOrAdmin(actor, path.ContributorID); err != nil {
			return err
		}

		path.Title = strings.TrimSpace(req.Title)
		path.Description = req.Description
		if err := repo.Update(ctx, path); err != nil {
			return err
		}

		for _, in := range req.Modules {
			if in.ID == nil {
				if err := s.createModuleTx(ctx, tx, actor, path.ID, in); err != nil {
					return err
				}
				continue
			}

			module, err := repo.FindModuleByID(ctx, *in.ID)
			if err != nil {
				return util.NotFoundOr(err, "module")
			}
			if module.LearningPathID != path.ID {
				return util.Validation("module %d does not belong to learning path %d", module.ID, path.ID)
			}
			module.Title = strings.TrimSpace(in.Title)
			module.Description = in.Description
			if err := repo.UpdateModule(ctx, module); err != nil {
				return err
			}
			if err := s.attachContentTx(ctx, tx, actor, module.ID, in); err != nil {
				return err
			}
		}

		detail, err = s.loadDetail(ctx, repo, s.ResourceRepo.WithTx(tx), s.QuizRepo.WithTx(tx), path.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// DeletePath 级联删除模块、资源关联、测验内容和报名记录
func (s *LearningPathService) DeletePath(ctx context.Context, actor *model.User, id uint) error {
	if err := RequireRole(actor, model.Contributor); err != nil {
		return err
	}
	path, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return util.NotFoundOr(err, "learning path")
	}
	if err := RequireOwnerOrAdmin(actor, path.ContributorID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("learning path deleted", zap.Uint("learning_path_id", id), zap.Uint("actor_id", actor.ID))
	return nil
}

func (s *LearningPathService) ListModules(ctx context.Context, pathID uint) ([]model.Module, error) {
	if _, err := s.Repo.FindByID(ctx, pathID); err != nil {
		return nil, util.NotFoundOr(err, "learning path")
	}
	return s.Repo.ListModules(ctx, pathID)
}

// CreateModule 向已有路径追加模块，要求路径拥有者或管理员
func (s *LearningPathService) CreateModule(ctx context.Context, actor *model.User, pathID uint, in ModuleInput) (*ModuleDetail, error) {
	if err := RequireRole(actor, model.Contributor); err != nil {
		return nil, err
	}
	path, err := s.Repo.FindByID(ctx, pathID)
	if err != nil {
		return nil, util.NotFoundOr(err, "learning path")
	}
	if err := RequireOwnerOrAdmin(actor, path.ContributorID); err != nil {
		return nil, err
	}
	in.ID = nil

	var detail *ModuleDetail
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		module := &model.Module{
			Title:          strings.TrimSpace(in.Title),
			Description:    in.Description,
			LearningPathID: pathID,
		}
		if module.Title == "" {
			return util.Validation("module title is required")
		}
		if err := s.Repo.WithTx(tx).CreateModule(ctx, module); err != nil {
			return err
		}
		if err := s.attachContentTx(ctx, tx, actor, module.ID, in); err != nil {
			return err
		}
		detail, err = s.moduleDetail(ctx, s.ResourceRepo.WithTx(tx), s.QuizRepo.WithTx(tx), *module)
		return err
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// ListResources 学习者必须已报名模块所属路径
func (s *LearningPathService) ListResources(ctx context.Context, actor *model.User, moduleID uint) ([]model.Resource, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	module, err := s.Repo.FindModuleByID(ctx, moduleID)
	if err != nil {
		return nil, util.NotFoundOr(err, "module")
	}

	if actor.Role == model.Learner {
		if _, err := s.Repo.FindEnrollment(ctx, actor.ID, module.LearningPathID); err != nil {
			if isNotFound(err) {
				return nil, util.Forbiddenf("enroll in learning path %d to access its resources", module.LearningPathID)
			}
			return nil, err
		}
	}
	return s.ResourceRepo.ListByModule(ctx, moduleID)
}

func (s *LearningPathService) createModuleTx(ctx context.Context, tx *gorm.DB, actor *model.User, pathID uint, in ModuleInput) error {
	module := &model.Module{
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		LearningPathID: pathID,
	}
	if module.Title == "" {
		return util.Validation("module title is required")
	}
	if err := s.Repo.WithTx(tx).CreateModule(ctx, module); err != nil {
		return err
	}
	return s.attachContentTx(ctx, tx, actor, module.ID, in)
}

// attachContentTx 为模块创建并关联资源，创建测验
func (s *LearningPathService) attachContentTx(ctx context.Context, tx *gorm.DB, actor *model.User, moduleID uint, in ModuleInput) error {
	resourceRepo := s.ResourceRepo.WithTx(tx)
	for _, r := range in.Resources {
		resource, err := newResource(actor, r)
		if err != nil {
			return err
		}
		if err := resourceRepo.Create(ctx, resource); err != nil {
			return err
		}
		if err := resourceRepo.LinkModule(ctx, moduleID, resource.ID); err != nil {
			return err
		}
	}

	for _, q := range in.Quizzes {
		if _, err := s.Quizzes.createQuizTx(ctx, tx, moduleID, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *LearningPathService) loadDetail(
	ctx context.Context,
	repo *repository.LearningPathRepository,
	resourceRepo *repository.ResourceRepository,
	quizRepo *repository.QuizRepository,
	id uint,
) (*PathDetail, error) {
	path, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, util.NotFoundOr(err, "learning path")
	}
	modules, err := repo.ListModules(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &PathDetail{LearningPath: *path, Modules: make([]ModuleDetail, 0, len(modules))}
	for _, m := range modules {
		md, err := s.moduleDetail(ctx, resourceRepo, quizRepo, m)
		if err != nil {
			return nil, err
		}
		detail.Modules = append(detail.Modules, *md)
	}
	return detail, nil
}

func (s *LearningPathService) moduleDetail(
	ctx context.Context,
	resourceRepo *repository.ResourceRepository,
	quizRepo *repository.QuizRepository,
	m model.Module,
) (*ModuleDetail, error) {
	resources, err := resourceRepo.ListByModule(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	quizzes, err := quizRepo.ListQuizzesByModule(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return &ModuleDetail{Module: m, Resources: resources, Quizzes: quizzes}, nil
}
