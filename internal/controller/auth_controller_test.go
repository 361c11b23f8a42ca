package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/database"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := database.OpenTestDB(t)
	cfg := &config.Config{
		Session: config.SessionConfig{
			Secret:     "controller-secret",
			ExpireTime: time.Hour,
			CookieName: "session",
		},
		Leaderboard: config.LeaderboardConfig{DefaultSize: 8, MaxSize: 100},
	}

	userRepo := repository.NewUserRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	authService := service.NewAuthService(db, userRepo, leaderboardRepo, repository.NewSessionRepository(nil), cfg)
	progression := service.NewProgressionService(db, userRepo, leaderboardRepo, achievementRepo, cfg)
	quizzes := service.NewQuizService(db, quizRepo, pathRepo, progression)
	paths := service.NewLearningPathService(db, pathRepo, resourceRepo, quizRepo, quizzes)

	authCtrl := NewAuthController(authService, &cfg.Session)
	pathCtrl := NewLearningPathController(paths, service.NewResourceService(db, resourceRepo, pathRepo, repository.NewFeedbackRepository(db)))
	progressionCtrl := NewProgressionController(progression)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/signup", authCtrl.Signup)
	api.POST("/login", authCtrl.Login)
	api.GET("/leaderboard", progressionCtrl.Leaderboard)

	auth := api.Group("")
	auth.Use(middleware.SessionAuth(authService, cfg.Session.CookieName))
	auth.GET("/me", authCtrl.Me)
	auth.POST("/logout", authCtrl.Logout)

	contrib := auth.Group("")
	contrib.Use(middleware.RoleMiddleware(model.Contributor))
	contrib.POST("/learning-paths", pathCtrl.CreatePath)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func TestSignupLoginMeFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(r, http.MethodPost, "/api/signup", gin.H{
		"username": "henry", "email": "henry@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(r, http.MethodPost, "/api/signup", gin.H{
		"username": "henry", "email": "other@example.com", "password": "secret1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: got=%d want=%d", rec.Code, http.StatusConflict)
	}

	rec = doJSON(r, http.MethodPost, "/api/login", gin.H{"username": "henry", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}

	rec = doJSON(r, http.MethodPost, "/api/login", gin.H{"username": "henry", "password": "secret1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got=%d body=%s", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}

	rec = doJSON(r, http.MethodGet, "/api/me", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: got=%d body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data SessionUser `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if body.Data.Username != "henry" || body.Data.Role != string(model.Learner) {
		t.Fatalf("me: %+v", body.Data)
	}

	rec = doJSON(r, http.MethodGet, "/api/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without cookie: got=%d", rec.Code)
	}
}

func TestSignupValidatesRoleTag(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(r, http.MethodPost, "/api/signup", gin.H{
		"username": "ivy", "email": "ivy@example.com", "password": "secret1", "role": "Superuser",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}

	rec = doJSON(r, http.MethodPost, "/api/signup", gin.H{
		"username": "ivy", "email": "not-an-email", "password": "secret1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreatePathRoleGateOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	login := func(username, role string) *http.Cookie {
		rec := doJSON(r, http.MethodPost, "/api/signup", gin.H{
			"username": username, "email": username + "@example.com", "password": "secret1", "role": role,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("signup %s: got=%d body=%s", username, rec.Code, rec.Body.String())
		}
		rec = doJSON(r, http.MethodPost, "/api/login", gin.H{"username": username, "password": "secret1"})
		return sessionCookie(t, rec)
	}
	learner := login("jack", "Learner")
	contributor := login("kate", "Contributor")

	path := gin.H{
		"title": "Databases",
		"modules": []gin.H{{
			"title":     "Indexes",
			"resources": []gin.H{{"title": "B-trees", "type": "Article", "url": "https://example.com/btree"}},
		}},
	}

	rec := doJSON(r, http.MethodPost, "/api/learning-paths", path, learner)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("learner: got=%d want=%d", rec.Code, http.StatusForbidden)
	}

	rec = doJSON(r, http.MethodPost, "/api/learning-paths", path, contributor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("contributor: got=%d body=%s", rec.Code, rec.Body.String())
	}

	bad := gin.H{
		"title":   "Databases",
		"modules": []gin.H{{"title": "Indexes", "resources": []gin.H{{"title": "x", "type": "Podcast"}}}},
	}
	rec = doJSON(r, http.MethodPost, "/api/learning-paths", bad, contributor)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid resource type: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestLeaderboardIsPublic(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(r, http.MethodGet, "/api/leaderboard?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: got=%d", rec.Code)
	}
	var body util.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != http.StatusOK {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}
