package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can classify it with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrMessageNotFound = fmt.Errorf("message %w", ErrNotFound)

	ErrUserExists     = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrSendInProgress = fmt.Errorf("%w: a send with this Idempotency-Key is still in progress", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid username/password", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrNotParticipant     = fmt.Errorf("%w: cannot read this message", ErrUnauthorized)
	ErrNotRecipient       = fmt.Errorf("%w: cannot set this message to read", ErrUnauthorized)
	ErrSendAsOther        = fmt.Errorf("%w: cannot send as another user", ErrUnauthorized)
	ErrNotAccountOwner    = fmt.Errorf("%w: cannot access another user's account", ErrUnauthorized)

	ErrInvalidInput = fmt.Errorf("%w: invalid input", ErrValidation)
)
