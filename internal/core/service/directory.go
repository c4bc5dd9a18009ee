package service

import (
	"context"

	"github.com/messagely/messagely-api/internal/api/metrics"
	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/guard"
	"github.com/messagely/messagely-api/internal/core/ports"
)

// Directory serves the user listing and private profile views.
type Directory struct {
	credentials ports.CredentialStore
}

func NewDirectory(credentials ports.CredentialStore) *Directory {
	return &Directory{credentials: credentials}
}

func (d *Directory) List(ctx context.Context) ([]domain.UserSummary, error) {
	return d.credentials.ListAll(ctx)
}

func (d *Directory) Profile(ctx context.Context, caller, username string) (*domain.User, error) {
	if !guard.CanAccessAccount(caller, username) {
		metrics.AccessDeniedTotal.WithLabelValues("account").Inc()
		return nil, domain.ErrNotAccountOwner
	}
	return d.credentials.Get(ctx, username)
}
