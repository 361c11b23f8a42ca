package util

import (
	"testing"
	"time"

	"learnhub_backend/internal/model"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	user := &model.User{ID: 42, Role: model.Contributor}

	token, issued, err := GenerateSessionToken(user, "s3cret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if issued.ID == "" {
		t.Fatalf("session id (jti) must be set")
	}

	claims, err := ParseSessionToken(token, "s3cret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Contributor || claims.ID != issued.ID {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if ttl := claims.TTL(); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("ttl out of range: %v", ttl)
	}

	if _, err := ParseSessionToken(token, "other"); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestExpiredSessionToken(t *testing.T) {
	token, _, err := GenerateSessionToken(&model.User{ID: 1, Role: model.Learner}, "s3cret", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := ParseSessionToken(token, "s3cret"); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}
