package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/messagely-api/internal/api/metrics"
	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/ports"
)

// CredentialStore implements ports.CredentialStore on top of a UserRepository.
type CredentialStore struct {
	repo      ports.UserRepository
	cost      int
	dummyHash []byte
	log       zerolog.Logger
}

// NewCredentialStore returns a CredentialStore hashing with the given bcrypt
// cost. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewCredentialStore(repo ports.UserRepository, cost int, log zerolog.Logger) (*CredentialStore, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Compared against on the unknown-user path so that it costs as much as a
	// wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte("messagely-unknown-user"), cost)
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}
	return &CredentialStore{repo: repo, cost: cost, dummyHash: dummy, log: log}, nil
}

func (s *CredentialStore) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", domain.ErrValidation)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := domain.Now()
	user := &domain.User{
		Username:    in.Username,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Phone:       in.Phone,
		JoinedAt:    now,
		LastLoginAt: now,
	}
	if err := s.repo.Create(ctx, user, string(hash)); err != nil {
		return nil, err
	}

	s.log.Info().Str("username", user.Username).Msg("user registered")
	return user, nil
}

func (s *CredentialStore) Authenticate(ctx context.Context, username, password string) bool {
	hash, err := s.repo.PasswordHash(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("username", username).Msg("load password hash failed")
		}
		s.compare(s.dummyHash, password)
		return false
	}
	return s.compare([]byte(hash), password)
}

func (s *CredentialStore) compare(hash []byte, password string) bool {
	start := time.Now()
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	metrics.PasswordHashDuration.WithLabelValues("compare").Observe(time.Since(start).Seconds())
	return err == nil
}

func (s *CredentialStore) RecordLogin(ctx context.Context, username string) error {
	return s.repo.UpdateLastLogin(ctx, username, domain.Now())
}

func (s *CredentialStore) Get(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

func (s *CredentialStore) ListAll(ctx context.Context) ([]domain.UserSummary, error) {
	return s.repo.List(ctx)
}
