package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/internal/app/repository"
	"github.com/ikkim/toolchest-backend/pkg/logger"
	"github.com/ikkim/toolchest-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("admin user not found")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// TokenRevoker stores logged-out token ids until they expire (redis blacklist)
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.AdminUser, *util.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	RefreshTokens(ctx context.Context, refreshToken string) (*util.TokenPair, error)
	GetAdminByID(ctx context.Context, id uint) (*model.AdminUser, error)
}

type authService struct {
	adminRepo     repository.AdminUserRepository
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	revoker       TokenRevoker
	now           func() time.Time
}

func NewAuthService(
	adminRepo repository.AdminUserRepository,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
	revoker TokenRevoker,
) AuthService {
	return &authService{
		adminRepo:     adminRepo,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		revoker:       revoker,
		now:           time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.AdminUser, *util.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, nil, ErrInvalidCredentials
		}
		logger.Error("Failed to find admin user", err, map[string]interface{}{
			"email": email,
		})
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if err := s.adminRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// 로그인 자체는 성공으로 처리
		logger.Warn("Failed to record last login", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	} else {
		user.LastLoginAt = &now
	}

	logger.Info("Admin logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
		"role":    user.Role,
	})
	return user, tokens, nil
}

// Logout 토큰을 만료 시각까지 블랙리스트에 등록. revoker 가 없으면 토큰 만료에 맡김
func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := util.ValidateTokenOfType(accessToken, s.jwtSecret, util.TokenTypeAccess)
	if err != nil {
		return ErrInvalidCredentials
	}
	if s.revoker == nil {
		logger.Debug("No token revoker configured, logout relies on expiry", map[string]interface{}{
			"user_id": claims.UserID,
		})
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	logger.Info("Admin logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

// RefreshTokens 리프레시 토큰으로 새 토큰 쌍 발급 (역할은 DB 기준으로 다시 읽음)
func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateTokenOfType(refreshToken, s.jwtSecret, util.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	user, err := s.GetAdminByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) GetAdminByID(ctx context.Context, id uint) (*model.AdminUser, error) {
	user, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Admin user not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch admin user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

func (s *authService) issue(user *model.AdminUser) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtSecret,
		s.accessExpiry,
		s.refreshExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}
	return tokens, nil
}
