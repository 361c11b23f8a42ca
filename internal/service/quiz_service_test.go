package service

import (
	"context"
	"errors"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

// singleQuestionQuiz 题目 10 分，选项 A 正确、B 错误
func singleQuestionQuiz(t *testing.T, f *fixture) (*QuizTree, uint, uint) {
	t.Helper()
	author := f.user(t, "author", model.Contributor)
	m := f.module(t, author)

	tree, err := f.quizzes.CreateQuiz(context.Background(), author, m.ID, CreateQuizRequest{
		Question:      "Which keyword starts a goroutine?",
		Options:       []string{"go", "defer"},
		CorrectOption: "go",
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	opts := tree.Questions[0].Options
	return tree, opts[0].ID, opts[1].ID
}

func TestCreateQuizFlatForm(t *testing.T) {
	f := newFixture(t)
	tree, _, _ := singleQuestionQuiz(t, f)

	if tree.Title != "Which keyword starts a goroutine?" {
		t.Fatalf("title should default to question text, got %q", tree.Title)
	}
	if tree.Points != DefaultQuestionPoints {
		t.Fatalf("quiz points: got=%d want=%d", tree.Points, DefaultQuestionPoints)
	}
	if len(tree.Questions) != 1 || len(tree.Questions[0].Options) != 2 {
		t.Fatalf("unexpected tree shape: %+v", tree)
	}
	opts := tree.Questions[0].Options
	if opts[0].IsCorrect == nil || !*opts[0].IsCorrect || *opts[1].IsCorrect {
		t.Fatalf("correct flags not stored: %+v", opts)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Contributor)
	m := f.module(t, author)
	negative := -1

	cases := map[string]CreateQuizRequest{
		"empty":          {},
		"no options":     {Question: "Q", CorrectOption: "A"},
		"no correct":     {Question: "Q", Options: []string{"A", "B"}},
		"correct absent": {Question: "Q", Options: []string{"A", "B"}, CorrectOption: "C"},
		"negative points": {Questions: []QuizQuestionInput{{
			Text: "Q", Points: &negative, Options: []QuizOptionInput{{Text: "A", IsCorrect: true}},
		}}},
		"blank option": {Questions: []QuizQuestionInput{{
			Text: "Q", Options: []QuizOptionInput{{Text: " "}},
		}}},
		"tree without correct": {Questions: []QuizQuestionInput{{
			Text: "Q", Options: []QuizOptionInput{{Text: "A"}, {Text: "B"}},
		}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.quizzes.CreateQuiz(ctx, author, m.ID, req)
			if !errors.Is(err, util.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateQuizRequiresContributor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Contributor)
	learner := f.user(t, "learner", model.Learner)
	m := f.module(t, author)

	_, err := f.quizzes.CreateQuiz(ctx, learner, m.ID, CreateQuizRequest{
		Question: "Q", Options: []string{"A"}, CorrectOption: "A",
	})
	if !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = f.quizzes.CreateQuiz(ctx, author, 9999, CreateQuizRequest{
		Question: "Q", Options: []string{"A"}, CorrectOption: "A",
	})
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found for missing module, got %v", err)
	}
}

func TestScoreCountsDistinctCorrectOptions(t *testing.T) {
	f := newFixture(t)
	tree, a, b := singleQuestionQuiz(t, f)

	cases := []struct {
		name     string
		selected []uint
		want     int
	}{
		{"correct", []uint{a}, 10},
		{"wrong", []uint{b}, 0},
		{"both", []uint{a, b}, 10},
		{"none", []uint{}, 0},
		{"duplicate", []uint{a, a}, 10},
		{"unknown", []uint{a, 424242}, 10},
	}
	for _, tc := range cases {
		if got := tree.Score(tc.selected); got != tc.want {
			t.Fatalf("%s: got=%d want=%d", tc.name, got, tc.want)
		}
	}
}

func TestSubmitAwardsOnlyImprovement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tree, a, b := singleQuestionQuiz(t, f)
	learner := f.user(t, "learner", model.Learner)

	res, err := f.quizzes.Submit(ctx, learner, tree.ID, SubmitQuizRequest{SelectedOptions: []uint{b}})
	if err != nil {
		t.Fatalf("submit wrong: %v", err)
	}
	if res.Score != 0 || res.PointsAwarded != 0 {
		t.Fatalf("wrong answer: %+v", res)
	}

	res, err = f.quizzes.Submit(ctx, learner, tree.ID, SubmitQuizRequest{SelectedOptions: []uint{a}})
	if err != nil {
		t.Fatalf("submit correct: %v", err)
	}
	if res.Score != 10 || res.PointsAwarded != 10 || res.TotalPoints != 10 {
		t.Fatalf("correct answer: %+v", res)
	}

	res, err = f.quizzes.Submit(ctx, learner, tree.ID, SubmitQuizRequest{SelectedOptions: []uint{a}})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if res.PointsAwarded != 0 || res.TotalPoints != 10 {
		t.Fatalf("resubmission must not award again: %+v", res)
	}

	if got := f.reload(t, learner.ID).Points; got != 10 {
		t.Fatalf("points: got=%d want=10", got)
	}
	if got := f.boardScore(t, learner.ID); got != 10 {
		t.Fatalf("leaderboard: got=%d want=10", got)
	}

	var count int64
	f.db.Model(&model.QuizSubmission{}).Where("user_id = ?", learner.ID).Count(&count)
	if count != 3 {
		t.Fatalf("every submission is stored, got %d", count)
	}

	latest, err := f.quizzes.GetSubmission(ctx, learner.ID, tree.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if latest.Score != 10 || latest.PointsAwarded != 0 {
		t.Fatalf("latest submission: %+v", latest)
	}
}

func TestSubmitByOptionLabel(t *testing.T) {
	f := newFixture(t)
	tree, _, _ := singleQuestionQuiz(t, f)
	learner := f.user(t, "learner", model.Learner)
	label := "GO"

	res, err := f.quizzes.Submit(context.Background(), learner, tree.ID, SubmitQuizRequest{SelectedOption: &label})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Score != 10 {
		t.Fatalf("label match should be case-insensitive, got score %d", res.Score)
	}
}

func TestSubmitRejectsMissingSelection(t *testing.T) {
	f := newFixture(t)
	tree, _, _ := singleQuestionQuiz(t, f)
	learner := f.user(t, "learner", model.Learner)
	ctx := context.Background()

	if _, err := f.quizzes.Submit(ctx, learner, tree.ID, SubmitQuizRequest{}); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.quizzes.Submit(ctx, nil, tree.ID, SubmitQuizRequest{SelectedOptions: []uint{}}); !errors.Is(err, util.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, err := f.quizzes.Submit(ctx, learner, 9999, SubmitQuizRequest{SelectedOptions: []uint{}}); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitUnlocksAchievement(t *testing.T) {
	f := newFixture(t)
	tree, a, _ := singleQuestionQuiz(t, f)
	learner := f.user(t, "learner", model.Learner)
	f.achievementAt(t, "First Steps", 10)

	res, err := f.quizzes.Submit(context.Background(), learner, tree.ID, SubmitQuizRequest{SelectedOptions: []uint{a}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(res.NewAchievements) != 1 || res.NewAchievements[0].Name != "First Steps" {
		t.Fatalf("expected achievement unlock, got %+v", res.NewAchievements)
	}
}

func TestGetQuizHidesAnswersFromLearners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tree, _, _ := singleQuestionQuiz(t, f)
	learner := f.user(t, "learner", model.Learner)

	view, err := f.quizzes.GetQuiz(ctx, learner, tree.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	for _, o := range view.Questions[0].Options {
		if o.IsCorrect != nil {
			t.Fatalf("learner saw correct flag on option %d", o.ID)
		}
	}

	children, err := f.quizzes.GetChildren(ctx, nil, tree.Questions[0].ID)
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	for _, c := range children {
		if c.IsCorrect != nil {
			t.Fatalf("anonymous caller saw correct flag on node %d", c.ID)
		}
	}

	contributor := f.user(t, "editor", model.Contributor)
	full, err := f.quizzes.GetQuiz(ctx, contributor, tree.ID)
	if err != nil {
		t.Fatalf("get quiz as contributor: %v", err)
	}
	if full.Questions[0].Options[0].IsCorrect == nil {
		t.Fatalf("contributor should see correct flags")
	}
}

func TestSubmitLabelNeedsSingleQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "author", model.Contributor)
	m := f.module(t, author)

	truthy := func(text string) QuizQuestionInput {
		return QuizQuestionInput{Text: text, Options: []QuizOptionInput{
			{Text: "True", IsCorrect: true},
			{Text: "False"},
		}}
	}
	tree, err := f.quizzes.CreateQuiz(ctx, author, m.ID, CreateQuizRequest{
		Title:     "Facts",
		Questions: []QuizQuestionInput{truthy("Slices are references?"), truthy("Maps are references?"), truthy("Arrays are values?")},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	learner := f.user(t, "learner", model.Learner)
	label := "true"
	if _, err := f.quizzes.Submit(ctx, learner, tree.ID, SubmitQuizRequest{SelectedOption: &label}); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("label on multi-question quiz: expected validation error, got %v", err)
	}
	if got := f.reload(t, learner.ID).Points; got != 0 {
		t.Fatalf("rejected submission awarded points: %d", got)
	}

	ids := []uint{tree.Questions[0].Options[0].ID, tree.Questions[1].Options[1].ID}
	res, err := f.quizzes.Submit(ctx, learner, tree.ID, SubmitQuizRequest{SelectedOptions: ids})
	if err != nil {
		t.Fatalf("submit by ids: %v", err)
	}
	if res.Score != 10 || res.MaxScore != 30 {
		t.Fatalf("score=%d max=%d, want 10 and 30", res.Score, res.MaxScore)
	}
}

func TestSubmitUnknownUser(t *testing.T) {
	f := newFixture(t)
	tree, a, _ := singleQuestionQuiz(t, f)
	ghost := &model.User{ID: 9999, Role: model.Learner}

	_, err := f.quizzes.Submit(context.Background(), ghost, tree.ID, SubmitQuizRequest{SelectedOptions: []uint{a}})
	if !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	var count int64
	f.db.Model(&model.QuizSubmission{}).Where("user_id = ?", ghost.ID).Count(&count)
	if count != 0 {
		t.Fatalf("submission stored for unknown user")
	}
}
