package services

import (
	"context"
	"time"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/platform/config"
	"github.com/monkesto/tally/internal/utils"
)

// tokenService issues the access/refresh JWT pair. Access and refresh tokens
// are signed with separate secrets, so a leaked access secret cannot mint
// refresh tokens.
type tokenService struct {
	BaseService
	cfg     *config.Config
	userSvc portssvc.UserSvcFacade
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.Config, userSvc portssvc.UserSvcFacade) portssvc.TokenSvcFacade {
	return &tokenService{
		cfg:     cfg,
		userSvc: userSvc,
	}
}

// Ensure tokenService implements the portssvc.TokenSvcFacade interface
var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *tokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.cfg.RefreshTokenExpiryDuration)
	token, err := utils.GenerateJWT(user.UserID, s.cfg.RefreshTokenSecret, s.cfg.RefreshTokenExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateRefreshToken checks a refresh token and returns the user it was
// issued to.
func (s *tokenService) ValidateRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error) {
	userID, err := utils.ParseJWTSubject(refreshToken, s.cfg.RefreshTokenSecret)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	user, err := s.userSvc.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if user.DeletedAt != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
