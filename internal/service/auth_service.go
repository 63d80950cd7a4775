package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm/internal/auth"
	apperrors "crm/internal/errors"
	"crm/internal/model"
	"crm/internal/repository"
)

// ErrInvalidRefreshToken is returned when a refresh token is invalid, expired or revoked.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// Session is the result of a successful login.
type Session struct {
	User         model.PublicUser
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, login, password string) (*Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	logins     repository.LoginRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(logins repository.LoginRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, logger *zap.Logger) AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		logins:     logins,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger,
		now:        time.Now,
	}
}

// Login checks the credentials, records the login time and issues tokens.
// Unknown logins and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, login, password string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	row, err := s.logins.FindByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find login: %w", err)
	}

	needsRehash, err := auth.VerifyPassword(row.Password, password)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if needsRehash {
		s.upgradePassword(ctx, row.ID, password)
	}

	if err := s.logins.UpdateLastLogin(ctx, row.ID, s.now()); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	accessToken, err := s.jwtService.GenerateAccessToken(row.ID, row.Login)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(row.ID, row.Login)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, row.ID, row.Login, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &Session{User: row.Public(), AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// upgradePassword replaces a legacy plaintext password with its hash.
// Failure is logged; the login itself already succeeded.
func (s *authService) upgradePassword(ctx context.Context, id uint, password string) {
	hashed, err := auth.HashPassword(password)
	if err == nil {
		err = s.logins.UpdatePassword(ctx, id, hashed)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", zap.Uint("login_id", id), zap.Error(err))
	}
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, storedLogin, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedLogin != claims.Login {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Login)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}
