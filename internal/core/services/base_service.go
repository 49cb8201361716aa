package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/monkesto/tally/internal/apperrors"
	"github.com/monkesto/tally/internal/middleware"
)

// BaseService provides common functionality for all services.
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one.
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting.
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting.
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogWarn logs a warning message with consistent formatting.
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting.
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// maxEntityNameLength caps journal and account names.
const maxEntityNameLength = 64

// validateEntityName enforces the shared naming rule for journals and accounts.
func validateEntityName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", apperrors.ErrValidation)
	}
	if len(name) > maxEntityNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", apperrors.ErrValidation, maxEntityNameLength)
	}
	return nil
}
