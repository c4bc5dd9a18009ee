package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/messagely/messagely-api/internal/api/metrics"
	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/ports"
)

// AuthService implements registration and login on top of the credential
// store and the session issuer.
type AuthService struct {
	credentials ports.CredentialStore
	sessions    ports.SessionIssuer
	logins      ports.LoginRecorder
	log         zerolog.Logger
}

func NewAuthService(credentials ports.CredentialStore, sessions ports.SessionIssuer, logins ports.LoginRecorder, log zerolog.Logger) *AuthService {
	return &AuthService{credentials: credentials, sessions: sessions, logins: logins, log: log}
}

// Register creates the account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	user, err := s.credentials.Register(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return "", err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	token, err := s.sessions.Issue(user.Username)
	if err != nil {
		return "", err
	}
	s.logins.Record(user.Username)
	return token, nil
}

// Login verifies the password and returns a session token. Unknown users and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", domain.ErrInvalidCredentials
	}

	if !s.credentials.Authenticate(ctx, username, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.Debug().Str("username", username).Msg("login rejected")
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(username)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	s.logins.Record(username)
	return token, nil
}
