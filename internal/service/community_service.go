package service

import (
	"context"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
)

type CommunityService struct {
	CommentRepo  *repository.CommentRepository
	ResourceRepo *repository.ResourceRepository
}

func NewCommunityService(commentRepo *repository.CommentRepository, resourceRepo *repository.ResourceRepository) *CommunityService {
	return &CommunityService{
		CommentRepo:  commentRepo,
		ResourceRepo: resourceRepo,
	}
}

type CommentRequest struct {
	Content    string `json:"content" binding:"required"`
	ResourceID *uint  `json:"resource_id"`
}

type ContentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentPage struct {
	Items []repository.CommentRow `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type CommentDetail struct {
	model.Comment
	Replies []repository.ReplyRow `json:"replies"`
}

func cleanContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", util.Validation("content is required")
	}
	return content, nil
}

func (s *CommunityService) CreateComment(ctx context.Context, actor *model.User, req CommentRequest) (*model.Comment, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}
	if req.ResourceID != nil {
		if _, err := s.ResourceRepo.FindByID(ctx, *req.ResourceID); err != nil {
			return nil, util.NotFoundOr(err, "resource")
		}
	}

	comment := &model.Comment{
		UserID:     actor.ID,
		ResourceID: req.ResourceID,
		Content:    content,
	}
	if err := s.CommentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommunityService) ListComments(ctx context.Context, resourceID *uint, page, limit int) (*CommentPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, total, err := s.CommentRepo.List(ctx, resourceID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &CommentPage{Items: rows, Total: total, Page: page, Limit: limit}, nil
}

func (s *CommunityService) GetComment(ctx context.Context, id uint) (*CommentDetail, error) {
	comment, err := s.CommentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, util.NotFoundOr(err, "comment")
	}
	replies, err := s.CommentRepo.ListReplies(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CommentDetail{Comment: *comment, Replies: replies}, nil
}

func (s *CommunityService) UpdateComment(ctx context.Context, actor *model.User, id uint, req ContentRequest) (*model.Comment, error) {
	comment, err := s.CommentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, util.NotFoundOr(err, "comment")
	}
	if err := RequireOwnerOrAdmin(actor, comment.UserID); err != nil {
		return nil, err
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	if err := s.CommentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment 删除评论并级联删除其回复
func (s *CommunityService) DeleteComment(ctx context.Context, actor *model.User, id uint) error {
	comment, err := s.CommentRepo.FindByID(ctx, id)
	if err != nil {
		return util.NotFoundOr(err, "comment")
	}
	if err := RequireOwnerOrAdmin(actor, comment.UserID); err != nil {
		return err
	}
	if err := s.CommentRepo.DeleteWithReplies(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("comment deleted", zap.Uint("comment_id", id), zap.Uint("actor_id", actor.ID))
	return nil
}

func (s *CommunityService) CreateReply(ctx context.Context, actor *model.User, commentID uint, req ContentRequest) (*model.Reply, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	if _, err := s.CommentRepo.FindByID(ctx, commentID); err != nil {
		return nil, util.NotFoundOr(err, "comment")
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	reply := &model.Reply{
		UserID:    actor.ID,
		CommentID: commentID,
		Content:   content,
	}
	if err := s.CommentRepo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *CommunityService) ListReplies(ctx context.Context, commentID uint) ([]repository.ReplyRow, error) {
	if _, err := s.CommentRepo.FindByID(ctx, commentID); err != nil {
		return nil, util.NotFoundOr(err, "comment")
	}
	return s.CommentRepo.ListReplies(ctx, commentID)
}

func (s *CommunityService) UpdateReply(ctx context.Context, actor *model.User, commentID, replyID uint, req ContentRequest) (*model.Reply, error) {
	reply, err := s.CommentRepo.FindReply(ctx, commentID, replyID)
	if err != nil {
		return nil, util.NotFoundOr(err, "reply")
	}
	if err := RequireOwnerOrAdmin(actor, reply.UserID); err != nil {
		return nil, err
	}
	content, err := cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	reply.Content = content
	if err := s.CommentRepo.UpdateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *CommunityService) DeleteReply(ctx context.Context, actor *model.User, commentID, replyID uint) error {
	reply, err := s.CommentRepo.FindReply(ctx, commentID, replyID)
	if err != nil {
		return util.NotFoundOr(err, "reply")
	}
	if err := RequireOwnerOrAdmin(actor, reply.UserID); err != nil {
		return err
	}
	return s.CommentRepo.DeleteReply(ctx, reply.ID)
}
