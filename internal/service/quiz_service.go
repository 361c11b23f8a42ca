package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultQuestionPoints 创建测验时未给出分值的题目默认分值
const DefaultQuestionPoints = 10

type QuizService struct {
	DB          *gorm.DB
	QuizRepo    *repository.QuizRepository
	PathRepo    *repository.LearningPathRepository
	Progression *ProgressionService
}

func NewQuizService(
	db *gorm.DB,
	quizRepo *repository.QuizRepository,
	pathRepo *repository.LearningPathRepository,
	progression *ProgressionService,
) *QuizService {
	return &QuizService{
		DB:          db,
		QuizRepo:    quizRepo,
		PathRepo:    pathRepo,
		Progression: progression,
	}
}

type QuizOptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuizQuestionInput struct {
	Text    string            `json:"text"`
	Points  *int              `json:"points"`
	Options []QuizOptionInput `json:"options"`
}

// CreateQuizRequest 同时接受树形（questions）和扁平（question/options/correct_option）两种写法
type CreateQuizRequest struct {
	Title     string              `json:"title"`
	Questions []QuizQuestionInput `json:"questions"`

	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Points        *int     `json:"points"`
}

// normalize 把扁平写法转换为只有一道题的树形写法并校验
func (r CreateQuizRequest) normalize() (string, []QuizQuestionInput, error) {
	questions := r.Questions
	if len(questions) == 0 && strings.TrimSpace(r.Question) != "" {
		if len(r.Options) == 0 {
			return "", nil, util.Validation("options are required")
		}
		correct := strings.TrimSpace(r.CorrectOption)
		if correct == "" {
			return "", nil, util.Validation("correct_option is required")
		}
		q := QuizQuestionInput{Text: strings.TrimSpace(r.Question), Points: r.Points}
		matched := false
		for _, opt := range r.Options {
			isCorrect := strings.EqualFold(strings.TrimSpace(opt), correct)
			matched = matched || isCorrect
			q.Options = append(q.Options, QuizOptionInput{Text: strings.TrimSpace(opt), IsCorrect: isCorrect})
		}
		if !matched {
			return "", nil, util.Validation("correct_option must be one of options")
		}
		questions = []QuizQuestionInput{q}
	}

	if len(questions) == 0 {
		return "", nil, util.Validation("a quiz needs at least one question")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return "", nil, util.Validation("question %d has no text", i+1)
		}
		if q.Points != nil && *q.Points < 0 {
			return "", nil, util.Validation("question %d has negative points", i+1)
		}
		if len(q.Options) == 0 {
			return "", nil, util.Validation("question %d has no options", i+1)
		}
		hasCorrect := false
		for j, opt := range q.Options {
			if strings.TrimSpace(opt.Text) == "" {
				return "", nil, util.Validation("question %d option %d has no text", i+1, j+1)
			}
			hasCorrect = hasCorrect || opt.IsCorrect
		}
		if !hasCorrect {
			return "", nil, util.Validation("question %d has no correct option", i+1)
		}
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = strings.TrimSpace(questions[0].Text)
	}
	return title, questions, nil
}

// SubmitQuizRequest selected_options 为选项 ID；selected_option 按选项文本匹配
type SubmitQuizRequest struct {
	SelectedOptions []uint  `json:"selected_options"`
	SelectedOption  *string `json:"selected_option"`
}

type QuizOptionView struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect *bool  `json:"isCorrect,omitempty"`
}

type QuizQuestionView struct {
	ID      uint             `json:"id"`
	Text    string           `json:"text"`
	Points  int              `json:"points"`
	Options []QuizOptionView `json:"options"`
}

// QuizTree 固定三层：quiz -> questions -> options
type QuizTree struct {
	ID        uint               `json:"id"`
	ModuleID  uint               `json:"moduleId"`
	Title     string             `json:"title"`
	Points    int                `json:"points"`
	CreatedAt time.Time          `json:"createdAt"`
	Questions []QuizQuestionView `json:"questions"`
}

// Redacted 去掉正确答案标记
func (t *QuizTree) Redacted() *QuizTree {
	out := *t
	out.Questions = make([]QuizQuestionView, len(t.Questions))
	for i, q := range t.Questions {
		q.Options = append([]QuizOptionView(nil), q.Options...)
		for j := range q.Options {
			q.Options[j].IsCorrect = nil
		}
		out.Questions[i] = q
	}
	return &out
}

// Score 每个不重复的正确选项累加其所属题目的分值，未知选项忽略
func (t *QuizTree) Score(selected []uint) int {
	type optionInfo struct {
		points  int
		correct bool
	}
	options := make(map[uint]optionInfo)
	for _, q := range t.Questions {
		for _, o := range q.Options {
			options[o.ID] = optionInfo{points: q.Points, correct: o.IsCorrect != nil && *o.IsCorrect}
		}
	}

	score := 0
	seen := make(map[uint]bool, len(selected))
	for _, id := range selected {
		if seen[id] {
			continue
		}
		seen[id] = true
		if info, ok := options[id]; ok && info.correct {
			score += info.points
		}
	}
	return score
}

// MatchLabel 按文本（忽略大小写）在单题测验中找到对应的选项 ID；多题测验不接受文本作答
func (t *QuizTree) MatchLabel(label string) ([]uint, error) {
	if len(t.Questions) != 1 {
		return nil, util.Validation("selected_option is only accepted for single-question quizzes, use selected_options")
	}
	label = strings.TrimSpace(label)
	var ids []uint
	for _, o := range t.Questions[0].Options {
		if strings.EqualFold(strings.TrimSpace(o.Text), label) {
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

type SubmissionResult struct {
	Submission      *model.QuizSubmission `json:"submission"`
	Score           int                   `json:"score"`
	MaxScore        int                   `json:"maxScore"`
	PointsAwarded   int                   `json:"pointsAwarded"`
	TotalPoints     int                   `json:"totalPoints"`
	NewAchievements []model.Achievement   `json:"newAchievements"`
}

// CreateQuiz 在模块下创建测验（路径作者或管理员）
func (s *QuizService) CreateQuiz(ctx context.Context, actor *model.User, moduleID uint, req CreateQuizRequest) (*QuizTree, error) {
	if _, err := requireModuleOwner(ctx, s.PathRepo, actor, moduleID); err != nil {
		return nil, err
	}

	var quizID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		quizID, err = s.createQuizTx(ctx, tx, moduleID, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.loadTree(ctx, s.QuizRepo, quizID)
}

// createQuizTx 在给定事务中写入整棵测验树，路径级联创建时复用
func (s *QuizService) createQuizTx(ctx context.Context, tx *gorm.DB, moduleID uint, req CreateQuizRequest) (uint, error) {
	title, questions, err := req.normalize()
	if err != nil {
		return 0, err
	}

	repo := s.QuizRepo.WithTx(tx)

	total := 0
	for _, q := range questions {
		total += questionPoints(q)
	}

	quiz := &model.QuizContent{
		ModuleID:    moduleID,
		Type:        model.NodeQuiz,
		ContentText: title,
		Points:      intPtr(total),
	}
	if err := repo.CreateNode(ctx, quiz); err != nil {
		return 0, err
	}

	for _, q := range questions {
		question := &model.QuizContent{
			ModuleID:    moduleID,
			ParentID:    &quiz.ID,
			Type:        model.NodeQuestion,
			ContentText: strings.TrimSpace(q.Text),
			Points:      intPtr(questionPoints(q)),
		}
		if err := repo.CreateNode(ctx, question); err != nil {
			return 0, err
		}

		for _, opt := range q.Options {
			option := &model.QuizContent{
				ModuleID:    moduleID,
				ParentID:    &question.ID,
				Type:        model.NodeOption,
				ContentText: strings.TrimSpace(opt.Text),
				IsCorrect:   boolPtr(opt.IsCorrect),
			}
			if err := repo.CreateNode(ctx, option); err != nil {
				return 0, err
			}
		}
	}
	return quiz.ID, nil
}

func (s *QuizService) ListQuizzes(ctx context.Context, moduleID uint) ([]model.QuizContent, error) {
	if _, err := s.PathRepo.FindModuleByID(ctx, moduleID); err != nil {
		return nil, util.NotFoundOr(err, "module")
	}
	return s.QuizRepo.ListQuizzesByModule(ctx, moduleID)
}

// GetQuiz 学习者看不到正确答案
func (s *QuizService) GetQuiz(ctx context.Context, actor *model.User, quizID uint) (*QuizTree, error) {
	tree, err := s.loadTree(ctx, s.QuizRepo, quizID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Role == model.Learner {
		return tree.Redacted(), nil
	}
	return tree, nil
}

// GetChildren 返回任意节点的直接子节点
func (s *QuizService) GetChildren(ctx context.Context, actor *model.User, nodeID uint) ([]model.QuizContent, error) {
	if _, err := s.QuizRepo.FindNode(ctx, nodeID); err != nil {
		return nil, util.NotFoundOr(err, "quiz content")
	}
	children, err := s.QuizRepo.Children(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Role == model.Learner {
		for i := range children {
			children[i].IsCorrect = nil
		}
	}
	return children, nil
}

// Submit 评分并保存提交；加分只计超过历史最高分的部分，与提交在同一事务中完成
func (s *QuizService) Submit(ctx context.Context, actor *model.User, quizID uint, req SubmitQuizRequest) (*SubmissionResult, error) {
	if actor == nil {
		return nil, util.ErrUnauthenticated
	}
	if req.SelectedOptions == nil && req.SelectedOption == nil {
		return nil, util.Validation("selected_options is required")
	}

	tree, err := s.loadTree(ctx, s.QuizRepo, quizID)
	if err != nil {
		return nil, err
	}

	selected := dedupeIDs(req.SelectedOptions)
	if req.SelectedOptions == nil {
		if selected, err = tree.MatchLabel(*req.SelectedOption); err != nil {
			return nil, err
		}
	}
	score := tree.Score(selected)

	raw, err := json.Marshal(selected)
	if err != nil {
		return nil, err
	}

	var (
		submission *model.QuizSubmission
		award      *AwardResult
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.QuizRepo.WithTx(tx)

		// 锁住用户行，同一用户的并发提交串行读取历史最高分
		if err := s.Progression.UserRepo.WithTx(tx).LockByID(ctx, actor.ID); err != nil {
			return util.UserNotFoundOr(err)
		}
		best, err := repo.BestScore(ctx, actor.ID, quizID)
		if err != nil {
			return err
		}
		delta := score - best
		if delta < 0 {
			delta = 0
		}

		submission = &model.QuizSubmission{
			UserID:          actor.ID,
			QuizID:          quizID,
			SelectedOptions: datatypes.JSON(raw),
			Score:           score,
			PointsAwarded:   delta,
			SubmittedAt:     time.Now(),
		}
		if err := repo.CreateSubmission(ctx, submission); err != nil {
			return err
		}

		award, err = s.Progression.Award(ctx, tx, actor.ID, delta)
		return err
	})
	if err != nil {
		monitoring.QuizSubmissions.WithLabelValues("error").Inc()
		return nil, err
	}

	outcome := "zero"
	if score > 0 {
		outcome = "scored"
	}
	monitoring.QuizSubmissions.WithLabelValues(outcome).Inc()
	logger.Log.Info("quiz submitted",
		zap.Uint("user_id", actor.ID),
		zap.Uint("quiz_id", quizID),
		zap.Int("score", score),
		zap.Int("points_awarded", award.PointsAwarded),
	)
	s.Progression.Observe(actor.ID, award)

	return &SubmissionResult{
		Submission:      submission,
		Score:           score,
		MaxScore:        tree.Points,
		PointsAwarded:   award.PointsAwarded,
		TotalPoints:     award.TotalPoints,
		NewAchievements: award.NewAchievements,
	}, nil
}

// GetSubmission 返回用户在该测验上的最近一次提交
func (s *QuizService) GetSubmission(ctx context.Context, userID, quizID uint) (*model.QuizSubmission, error) {
	if _, err := s.QuizRepo.FindQuiz(ctx, quizID); err != nil {
		return nil, util.NotFoundOr(err, "quiz")
	}
	sub, err := s.QuizRepo.LatestSubmission(ctx, userID, quizID)
	if err != nil {
		return nil, util.NotFoundOr(err, "submission")
	}
	return sub, nil
}

func (s *QuizService) loadTree(ctx context.Context, repo *repository.QuizRepository, quizID uint) (*QuizTree, error) {
	quiz, err := repo.FindQuiz(ctx, quizID)
	if err != nil {
		return nil, util.NotFoundOr(err, "quiz")
	}

	questions, err := repo.Children(ctx, quiz.ID)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]uint, 0, len(questions))
	views := make([]QuizQuestionView, 0, len(questions))
	index := make(map[uint]int, len(questions))
	for _, q := range questions {
		if q.Type != model.NodeQuestion {
			continue
		}
		index[q.ID] = len(views)
		questionIDs = append(questionIDs, q.ID)
		views = append(views, QuizQuestionView{
			ID:      q.ID,
			Text:    q.ContentText,
			Points:  q.PointValue(),
			Options: []QuizOptionView{},
		})
	}

	options, err := repo.Children(ctx, questionIDs...)
	if err != nil {
		return nil, err
	}
	for _, o := range options {
		if o.Type != model.NodeOption || o.ParentID == nil {
			continue
		}
		i, ok := index[*o.ParentID]
		if !ok {
			continue
		}
		views[i].Options = append(views[i].Options, QuizOptionView{
			ID:        o.ID,
			Text:      o.ContentText,
			IsCorrect: boolPtr(o.Correct()),
		})
	}

	return &QuizTree{
		ID:        quiz.ID,
		ModuleID:  quiz.ModuleID,
		Title:     quiz.ContentText,
		Points:    quiz.PointValue(),
		CreatedAt: quiz.CreatedAt,
		Questions: views,
	}, nil
}

func questionPoints(q QuizQuestionInput) int {
	if q.Points == nil {
		return DefaultQuestionPoints
	}
	return *q.Points
}

func dedupeIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
