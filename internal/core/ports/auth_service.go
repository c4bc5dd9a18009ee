package ports

import (
	"context"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// RegisterInput carries the fields needed to open an account.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// CredentialStore owns account records and password verification.
type CredentialStore interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Authenticate never fails: unknown users and wrong passwords are both false.
	Authenticate(ctx context.Context, username, password string) bool
	RecordLogin(ctx context.Context, username string) error
	Get(ctx context.Context, username string) (*domain.User, error)
	ListAll(ctx context.Context) ([]domain.UserSummary, error)
}

type SessionIssuer interface {
	Issue(username string) (string, error)
}

type SessionVerifier interface {
	Verify(token string) (string, error)
}

// LoginRecorder stamps last-login times off the request path.
type LoginRecorder interface {
	Record(username string)
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
}
