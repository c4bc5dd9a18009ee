package ports

import (
	"context"
	"time"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// UserRepository persists accounts and their password hashes.
type UserRepository interface {
	// Create inserts a new user with its password hash.
	// Returns domain.ErrUserExists when the username is taken.
	Create(ctx context.Context, user *domain.User, passwordHash string) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByUsernames resolves several users in one round trip. Unknown
	// usernames are absent from the result map.
	FindByUsernames(ctx context.Context, usernames []string) (map[string]domain.User, error)
	PasswordHash(ctx context.Context, username string) (string, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	List(ctx context.Context) ([]domain.UserSummary, error)
}
