package service

import (
	"context"
	"errors"
	"testing"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
)

func TestSignupCreatesLeaderboardRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, SignupRequest{
		Username: "dana",
		Email:    "Dana@Example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Role != model.Learner {
		t.Fatalf("default role: got=%s want=Learner", user.Role)
	}
	if user.Email != "dana@example.com" {
		t.Fatalf("email should be normalised, got %q", user.Email)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear text")
	}
	if got := f.boardScore(t, user.ID); got != 0 {
		t.Fatalf("leaderboard score: got=%d want=0", got)
	}
}

func TestSignupConflictsAndRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.auth.Signup(ctx, SignupRequest{Username: "eve", Email: "eve@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	cases := []struct {
		name string
		req  SignupRequest
		want error
	}{
		{"duplicate username", SignupRequest{Username: "eve", Email: "other@example.com", Password: "secret1"}, util.ErrConflict},
		{"duplicate email", SignupRequest{Username: "eve2", Email: "EVE@example.com", Password: "secret1"}, util.ErrConflict},
		{"unknown role", SignupRequest{Username: "mallory", Email: "m@example.com", Password: "secret1", Role: "Owner"}, util.ErrValidation},
		{"admin disabled", SignupRequest{Username: "root", Email: "r@example.com", Password: "secret1", Role: "Admin"}, util.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.auth.Signup(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	contributor, err := f.auth.Signup(ctx, SignupRequest{Username: "carl", Email: "carl@example.com", Password: "secret1", Role: "Contributor"})
	if err != nil {
		t.Fatalf("contributor signup: %v", err)
	}
	if contributor.Role != model.Contributor {
		t.Fatalf("role: got=%s", contributor.Role)
	}

	f.cfg.Auth.AllowAdminSignup = true
	admin, err := f.auth.Signup(ctx, SignupRequest{Username: "root", Email: "r@example.com", Password: "secret1", Role: "Admin"})
	if err != nil {
		t.Fatalf("admin signup when enabled: %v", err)
	}
	if admin.Role != model.Admin {
		t.Fatalf("role: got=%s", admin.Role)
	}
}

func TestLoginAuthenticateLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.auth.Signup(ctx, SignupRequest{Username: "frank", Email: "frank@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := f.auth.Login(ctx, LoginRequest{Username: "frank", Password: "wrong"}); !errors.Is(err, util.ErrUnauthenticated) {
		t.Fatalf("bad password: expected unauthenticated, got %v", err)
	}
	if _, err := f.auth.Login(ctx, LoginRequest{Username: "nobody", Password: "secret1"}); !errors.Is(err, util.ErrUnauthenticated) {
		t.Fatalf("unknown user: expected unauthenticated, got %v", err)
	}

	session, err := f.auth.Login(ctx, LoginRequest{Username: "frank", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	user, claims, err := f.auth.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Username != "frank" || claims.ID != session.Claims.ID {
		t.Fatalf("unexpected identity: user=%s claims=%s", user.Username, claims.ID)
	}

	if err := f.auth.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := f.auth.Authenticate(ctx, session.Token); !errors.Is(err, util.ErrUnauthenticated) {
		t.Fatalf("revoked session: expected unauthenticated, got %v", err)
	}
	if ttl := f.sessions.revoked[claims.ID]; ttl <= 0 {
		t.Fatalf("revocation should live until token expiry, got ttl=%v", ttl)
	}
}

func TestAuthenticateRejectsForeignToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "grace", model.Learner)

	token, _, err := util.GenerateSessionToken(u, "another-secret", f.cfg.Session.ExpireTime)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := f.auth.Authenticate(ctx, token); !errors.Is(err, util.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if _, _, err := f.auth.Authenticate(ctx, ""); !errors.Is(err, util.ErrUnauthenticated) {
		t.Fatalf("empty token: expected unauthenticated, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	learner := &model.User{ID: 1, Role: model.Learner}
	contributor := &model.User{ID: 2, Role: model.Contributor}
	admin := &model.User{ID: 3, Role: model.Admin}

	if err := RequireRole(nil, model.Learner); !errors.Is(err, util.ErrUnauthenticated) {
		t.Fatalf("nil actor: %v", err)
	}
	if err := RequireRole(learner, model.Contributor); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("learner as contributor: %v", err)
	}
	if err := RequireRole(contributor, model.Contributor); err != nil {
		t.Fatalf("contributor: %v", err)
	}
	if err := RequireRole(admin, model.Contributor); err != nil {
		t.Fatalf("admin passes every gate: %v", err)
	}
	if err := RequireOwnerOrAdmin(learner, 2); !errors.Is(err, util.ErrForbidden) {
		t.Fatalf("non-owner: %v", err)
	}
	if err := RequireOwnerOrAdmin(admin, 1); err != nil {
		t.Fatalf("admin as owner: %v", err)
	}
}
