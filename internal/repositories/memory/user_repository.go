package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/core/domain"
	portsrepo "github.com/monkesto/tally/internal/core/ports/repositories"
)

// UserRepository stores user records keyed by id, with an email index for
// invitation lookup. Users are plain records, not event-sourced aggregates.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // lowercased email → userID
}

// NewUserRepository creates the in-memory user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

var _ portsrepo.UserRepositoryFacade = (*UserRepository)(nil)

// SaveUser inserts or updates a user. A new user with an email already held
// by a different user fails with apperrors.ErrUserExists.
func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if existingID, ok := r.byEmail[email]; ok && existingID != user.UserID {
		return apperrors.ErrUserExists
	}

	if prev, ok := r.byID[user.UserID]; ok && !strings.EqualFold(prev.Email, user.Email) {
		delete(r.byEmail, strings.ToLower(prev.Email))
	}
	r.byID[user.UserID] = user
	r.byEmail[email] = user.UserID
	return nil
}

// FindUserByID returns the user for the given id.
func (r *UserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, userID)
	}
	return &user, nil
}

// FindUserByEmail returns the user registered under the given email.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: no user for email", apperrors.ErrNotFound)
	}
	user := r.byID[userID]
	return &user, nil
}
