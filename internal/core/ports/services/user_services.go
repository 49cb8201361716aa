package services

import (
	"context"
	"time"

	"github.com/monkesto/tally/internal/core/domain"
)

// UserSvcFacade manages user records and credential checks.
type UserSvcFacade interface {
	// RegisterUser creates a user with a bcrypt-hashed password. An already
	// registered email fails with apperrors.ErrUserExists.
	RegisterUser(ctx context.Context, name string, email string, password string) (*domain.User, error)

	// AuthenticateUser verifies credentials and returns the user, or
	// apperrors.ErrUnauthorized.
	AuthenticateUser(ctx context.Context, email string, password string) (*domain.User, error)

	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail is the invitation lookup: journal invites address
	// invitees by email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserEmail resolves a user id to its email address.
	GetUserEmail(ctx context.Context, userID string) (string, error)
}

// TokenSvcFacade issues and validates the JWT pair used by the HTTP layer.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateRefreshToken checks a refresh token and returns the user it was
	// issued to, or apperrors.ErrUnauthorized.
	ValidateRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error)
}
