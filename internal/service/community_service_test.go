package service

import (
	"context"
	"errors"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

func TestDeleteCommentRemovesReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Learner)
	replier := f.user(t, "replier", model.Learner)

	comment, err := f.community.CreateComment(ctx, author, CommentRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	for _, text := range []string{"one", "two"} {
		if _, err := f.community.CreateReply(ctx, replier, comment.ID, ContentRequest{Content: text}); err != nil {
			t.Fatalf("create reply: %v", err)
		}
	}

	if err := f.community.DeleteComment(ctx, replier, comment.ID); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("non-author delete: expected forbidden, got %v", err)
	}
	if err := f.community.DeleteComment(ctx, author, comment.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var replies int64
	f.db.Model(&model.Reply{}).Where("comment_id = ?", comment.ID).Count(&replies)
	if replies != 0 {
		t.Fatalf("replies left behind: %d", replies)
	}
	if _, err := f.community.GetComment(ctx, comment.ID); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminMayEditAnyComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Learner)
	admin := f.user(t, "admin", model.Admin)

	comment, err := f.community.CreateComment(ctx, author, CommentRequest{Content: "typo"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	updated, err := f.community.UpdateComment(ctx, admin, comment.ID, ContentRequest{Content: "fixed"})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Content != "fixed" {
		t.Fatalf("content: got=%q", updated.Content)
	}

	if _, err := f.community.UpdateComment(ctx, author, comment.ID, ContentRequest{Content: "  "}); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("blank content: expected validation error, got %v", err)
	}
}

func TestCommentOnMissingResource(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", model.Learner)
	missing := uint(404)

	_, err := f.community.CreateComment(context.Background(), author, CommentRequest{Content: "hi", ResourceID: &missing})
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCommentsPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Learner)

	for i := 0; i < 3; i++ {
		c, err := f.community.CreateComment(ctx, author, CommentRequest{Content: "c"})
		if err != nil {
			t.Fatalf("create comment: %v", err)
		}
		if i == 0 {
			if _, err := f.community.CreateReply(ctx, author, c.ID, ContentRequest{Content: "r"}); err != nil {
				t.Fatalf("create reply: %v", err)
			}
		}
	}

	page, err := f.community.ListComments(ctx, nil, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 {
		t.Fatalf("page 1: total=%d items=%d", page.Total, len(page.Items))
	}
	page, err = f.community.ListComments(ctx, nil, 2, 2)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ReplyCount != 1 || page.Items[0].Username != "author" {
		t.Fatalf("page 2: %+v", page.Items)
	}
}

func TestReplyOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Learner)
	other := f.user(t, "other", model.Learner)

	comment, err := f.community.CreateComment(ctx, author, CommentRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	reply, err := f.community.CreateReply(ctx, author, comment.ID, ContentRequest{Content: "me too"})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}

	if _, err := f.community.UpdateReply(ctx, other, comment.ID, reply.ID, ContentRequest{Content: "x"}); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.community.DeleteReply(ctx, author, comment.ID+1, reply.ID); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("reply under wrong comment: expected not found, got %v", err)
	}
	if err := f.community.DeleteReply(ctx, author, comment.ID, reply.ID); err != nil {
		t.Fatalf("delete reply: %v", err)
	}
}

func TestFeedbackRatingAndAverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Contributor)
	m := f.module(t, author)
	res, err := f.resources.CreateResource(ctx, author, m.ID, ResourceInput{Title: "Doc", Type: "Article"})
	if err != nil {
		t.Fatalf("create resource: %v", err)
	}

	a := f.user(t, "a", model.Learner)
	b := f.user(t, "b", model.Learner)
	if _, err := f.feedback.CreateFeedback(ctx, a, res.ID, FeedbackRequest{Rating: 6}); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("rating 6: expected validation error, got %v", err)
	}
	if _, err := f.feedback.CreateFeedback(ctx, a, res.ID, FeedbackRequest{Rating: 4}); err != nil {
		t.Fatalf("feedback a: %v", err)
	}
	fb, err := f.feedback.CreateFeedback(ctx, b, res.ID, FeedbackRequest{Rating: 1})
	if err != nil {
		t.Fatalf("feedback b: %v", err)
	}
	if _, err := f.feedback.UpdateFeedback(ctx, b, fb.ID, FeedbackRequest{Rating: 2, Comment: "better"}); err != nil {
		t.Fatalf("update feedback: %v", err)
	}
	if err := f.feedback.DeleteFeedback(ctx, a, fb.ID); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("foreign delete: expected forbidden, got %v", err)
	}

	detail, err := f.resources.GetResource(ctx, res.ID)
	if err != nil {
		t.Fatalf("get resource: %v", err)
	}
	if detail.AverageRating != 3 {
		t.Fatalf("average rating: got=%v want=3", detail.AverageRating)
	}
}
