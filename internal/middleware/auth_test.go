package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type stubAuthenticator struct {
	tokens map[string]*model.User
	seen   string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, *util.Claims, error) {
	s.seen = token
	user, ok := s.tokens[token]
	if !ok {
		return nil, nil, util.ErrUnauthenticated
	}
	return user, &util.Claims{UserID: user.ID, Role: user.Role}, nil
}

func newRouter(auth Authenticator, roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{SessionAuth(auth, "session")}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).Username)
	})
	r.GET("/private", handlers...)
	return r
}

func TestSessionAuthReadsCookieThenBearer(t *testing.T) {
	auth := &stubAuthenticator{tokens: map[string]*model.User{
		"cookie-token": {ID: 1, Username: "cookie", Role: model.Learner},
		"bearer-token": {ID: 2, Username: "bearer", Role: model.Learner},
	}}
	r := newRouter(auth)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer bearer-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "cookie" {
		t.Fatalf("cookie should win: status=%d body=%q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer bearer-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "bearer" {
		t.Fatalf("bearer fallback: status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestSessionAuthRejectsMissingOrInvalidToken(t *testing.T) {
	auth := &stubAuthenticator{tokens: map[string]*model.User{}}
	r := newRouter(auth)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
	if auth.seen != "" {
		t.Fatalf("authenticator should not be called without a token")
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRoleMiddleware(t *testing.T) {
	auth := &stubAuthenticator{tokens: map[string]*model.User{
		"learner": {ID: 1, Username: "l", Role: model.Learner},
		"contrib": {ID: 2, Username: "c", Role: model.Contributor},
		"admin":   {ID: 3, Username: "a", Role: model.Admin},
	}}
	r := newRouter(auth, model.Contributor)

	cases := map[string]int{
		"learner": http.StatusForbidden,
		"contrib": http.StatusOK,
		"admin":   http.StatusOK,
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: got=%d want=%d", token, rec.Code, want)
		}
	}
}
