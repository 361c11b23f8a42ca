package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

func newChallenge(t *testing.T, f *fixture, start, end time.Time, reward int) *model.Challenge {
	t.Helper()
	author := f.user(t, "challenger", model.Contributor)
	c, err := f.challenges.CreateChallenge(context.Background(), author, CreateChallengeRequest{
		Title:        "Weekly",
		PointsReward: reward,
		StartDate:    start,
		EndDate:      end,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return c
}

func TestCompleteChallengeOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	c := newChallenge(t, f, now.Add(-time.Hour), now.Add(time.Hour), 30)
	learner := f.user(t, "learner", model.Learner)

	res, err := f.challenges.CompleteChallenge(ctx, learner, c.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !res.Created || res.PointsAwarded != 30 || res.TotalPoints != 30 {
		t.Fatalf("first completion: %+v", res)
	}

	res, err = f.challenges.CompleteChallenge(ctx, learner, c.ID)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if res.Created || res.PointsAwarded != 0 {
		t.Fatalf("second completion must be a no-op: %+v", res)
	}
	if got := f.reload(t, learner.ID).Points; got != 30 {
		t.Fatalf("points: got=%d want=30", got)
	}
}

func TestCompleteChallengeOutsideWindow(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	c := newChallenge(t, f, now.Add(-48*time.Hour), now.Add(-24*time.Hour), 10)
	learner := f.user(t, "learner", model.Learner)

	_, err := f.challenges.CompleteChallenge(context.Background(), learner, c.ID)
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateChallengeValidatesWindow(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author", model.Contributor)
	now := time.Now()

	_, err := f.challenges.CreateChallenge(context.Background(), author, CreateChallengeRequest{
		Title:     "Backwards",
		StartDate: now,
		EndDate:   now.Add(-time.Minute),
	})
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListChallengesActiveOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	author := f.user(t, "author", model.Contributor)

	windows := [][2]time.Time{
		{now.Add(-time.Hour), now.Add(time.Hour)},
		{now.Add(time.Hour), now.Add(2 * time.Hour)},
	}
	for _, w := range windows {
		if _, err := f.challenges.CreateChallenge(ctx, author, CreateChallengeRequest{
			Title: "c", StartDate: w[0], EndDate: w[1],
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := f.challenges.ListChallenges(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	active, err := f.challenges.ListChallenges(ctx, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(all) != 2 || len(active) != 1 {
		t.Fatalf("all=%d active=%d, want 2 and 1", len(all), len(active))
	}
}
