package apperrors

import (
	"errors"
	"fmt"

	"github.com/monkesto/tally/internal/core/domain"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user lacks permission for the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict indicates the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current state")

// ErrInternal is the catch-all for encoding and runtime failures.
var ErrInternal = errors.New("internal error")

// ErrInvalidJournal indicates the target journal is missing or soft-deleted.
var ErrInvalidJournal = fmt.Errorf("%w: invalid journal", ErrNotFound)

// ErrAccountNotFound indicates a referenced account does not exist in the journal.
var ErrAccountNotFound = fmt.Errorf("%w: account not found", ErrNotFound)

// ErrAccountExists guards against retried account creations reusing an id.
var ErrAccountExists = fmt.Errorf("%w: account id already in use", ErrDuplicate)

// ErrInvalidTransaction indicates the target transaction does not exist.
var ErrInvalidTransaction = fmt.Errorf("%w: invalid transaction", ErrNotFound)

// ErrBalanceMismatch indicates a transaction whose debits and credits do not net to zero.
var ErrBalanceMismatch = fmt.Errorf("%w: transaction updates do not balance", ErrValidation)

// ErrUserExists indicates a registration against an email that is already taken.
var ErrUserExists = fmt.Errorf("%w: user already exists", ErrDuplicate)

// ErrUserCanAccessJournal indicates an invitation to a user who already has access.
var ErrUserCanAccessJournal = fmt.Errorf("%w: user already has access to journal", ErrConflict)

// ErrIncorrectEventType indicates a creation event offered against an existing
// aggregate, or an amendment event offered against an absent one.
var ErrIncorrectEventType = errors.New("incorrect event type for aggregate state")

// PermissionError reports a failed permission check along with the
// permissions the operation required.
type PermissionError struct {
	Required domain.Permission
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("operation not permitted: requires %s", e.Required)
}

// Unwrap lets callers match PermissionError with errors.Is(err, ErrForbidden).
func (e PermissionError) Unwrap() error {
	return ErrForbidden
}

// NewPermissionError builds a PermissionError for the given required permissions.
func NewPermissionError(required domain.Permission) error {
	return PermissionError{Required: required}
}
