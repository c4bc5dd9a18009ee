package ports

import (
	"context"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// Directory exposes account listing and guarded profile lookup.
type Directory interface {
	List(ctx context.Context) ([]domain.UserSummary, error)
	Profile(ctx context.Context, caller, username string) (*domain.User, error)
}
