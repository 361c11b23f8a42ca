package repository

import (
	"context"

	"learnhub_backend/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

type CommentRow struct {
	model.Comment
	Username   string `json:"username"`
	ReplyCount int    `json:"replyCount"`
}

type ReplyRow struct {
	model.Reply
	Username string `json:"username"`
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var c model.Comment
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) Update(ctx context.Context, c *model.Comment) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

// List resourceID 为 nil 时返回全部评论
func (r *CommentRepository) List(ctx context.Context, resourceID *uint, offset, limit int) ([]CommentRow, int64, error) {
	var rows []CommentRow
	var total int64

	base := func() *gorm.DB {
		query := r.DB.WithContext(ctx).Model(&model.Comment{})
		if resourceID != nil {
			query = query.Where("comments.resource_id = ?", *resourceID)
		}
		return query
	}
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	replyCount := r.DB.Model(&model.Reply{}).Select("COUNT(*)").Where("replies.comment_id = comments.id")
	err := base().
		Select("comments.*, users.username, (?) AS reply_count", replyCount).
		Joins("JOIN users ON users.id = comments.user_id").
		Order("comments.created_at DESC, comments.id DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

// DeleteWithReplies 删除评论及其全部回复
func (r *CommentRepository) DeleteWithReplies(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&model.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Comment{}, id).Error
	})
}

func (r *CommentRepository) CreateReply(ctx context.Context, reply *model.Reply) error {
	return r.DB.WithContext(ctx).Create(reply).Error
}

func (r *CommentRepository) FindReply(ctx context.Context, commentID, replyID uint) (*model.Reply, error) {
	var reply model.Reply
	err := r.DB.WithContext(ctx).
		Where("id = ? AND comment_id = ?", replyID, commentID).
		First(&reply).Error
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *CommentRepository) UpdateReply(ctx context.Context, reply *model.Reply) error {
	return r.DB.WithContext(ctx).Save(reply).Error
}

func (r *CommentRepository) DeleteReply(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&model.Reply{}, id).Error
}

func (r *CommentRepository) ListReplies(ctx context.Context, commentID uint) ([]ReplyRow, error) {
	var rows []ReplyRow
	err := r.DB.WithContext(ctx).Model(&model.Reply{}).
		Select("replies.*, users.username").
		Joins("JOIN users ON users.id = replies.user_id").
		Where("replies.comment_id = ?", commentID).
		Order("replies.created_at ASC, replies.id ASC").
		Scan(&rows).Error
	return rows, err
}
