package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore 会话吊销存储，Redis 实现见 repository.SessionRepository
type SessionStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type AuthService struct {
	DB              *gorm.DB
	UserRepo        *repository.UserRepository
	LeaderboardRepo *repository.LeaderboardRepository
	Sessions        SessionStore
	Cfg             *config.Config
}

func NewAuthService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	leaderboardRepo *repository.LeaderboardRepository,
	sessions SessionStore,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		DB:              db,
		UserRepo:        userRepo,
		LeaderboardRepo: leaderboardRepo,
		Sessions:        sessions,
		Cfg:             cfg,
	}
}

type SignupRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email,max=150"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,user_role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Session 登录成功后下发的会话
type Session struct {
	User   *model.User
	Token  string
	Claims *util.Claims
}

func (s *AuthService) resolveSignupRole(raw string) (model.UserRole, error) {
	if strings.TrimSpace(raw) == "" {
		return model.Learner, nil
	}
	role := model.UserRole(strings.TrimSpace(raw))
	if !role.Valid() {
		return "", util.ErrInvalidRole
	}
	if role == model.Admin && (s.Cfg == nil || !s.Cfg.Auth.AllowAdminSignup) {
		return "", util.ErrInvalidRole
	}
	return role, nil
}

// Signup 注册用户并创建其排行榜记录
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return nil, util.Validation("username, email and password are required")
	}

	role, err := s.resolveSignupRole(req.Role)
	if err != nil {
		return nil, err
	}

	if taken, err := s.UserRepo.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, util.ErrUsernameTaken
	}
	if taken, err := s.UserRepo.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, util.ErrEmailRegistered
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.UserRepo.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.LeaderboardRepo.WithTx(tx).Upsert(ctx, user.ID, user.Points)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	user, err := s.UserRepo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if isNotFound(err) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, claims, err := util.GenerateSessionToken(user, s.Cfg.Session.Secret, s.Cfg.Session.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, Claims: claims}, nil
}

// Logout 吊销会话直到其自然过期
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || s.Sessions == nil {
		return nil
	}
	return s.Sessions.Revoke(ctx, claims.ID, claims.TTL())
}

// Authenticate 解析会话令牌并加载当前用户
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, *util.Claims, error) {
	if token == "" {
		return nil, nil, util.ErrUnauthenticated
	}

	claims, err := util.ParseSessionToken(token, s.Cfg.Session.Secret)
	if err != nil {
		return nil, nil, util.ErrUnauthenticated
	}

	if s.Sessions != nil {
		revoked, err := s.Sessions.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, util.ErrUnauthenticated
		}
	}

	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, util.ErrUnauthenticated
		}
		return nil, nil, err
	}
	return user, claims, nil
}
