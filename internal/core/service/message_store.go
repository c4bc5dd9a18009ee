package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/ports"
)

// MessageStore implements ports.MessageStore. It performs no access checks;
// those belong to MessageService.
type MessageStore struct {
	messages ports.MessageRepository
	users    ports.UserRepository
}

func NewMessageStore(messages ports.MessageRepository, users ports.UserRepository) *MessageStore {
	return &MessageStore{messages: messages, users: users}
}

// Create persists a new unread message. Both participants must exist.
func (s *MessageStore) Create(ctx context.Context, from, to, body string) (*domain.Message, error) {
	participants, err := s.users.FindByUsernames(ctx, []string{from, to})
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}
	if _, ok := participants[from]; !ok {
		return nil, fmt.Errorf("sender %q: %w", from, domain.ErrUserNotFound)
	}
	if _, ok := participants[to]; !ok {
		return nil, fmt.Errorf("recipient %q: %w", to, domain.ErrUserNotFound)
	}

	m := &domain.Message{
		ID:           uuid.NewString(),
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       domain.Now(),
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get loads a message and resolves both participants.
func (s *MessageStore) Get(ctx context.Context, id string) (*domain.MessageDetail, error) {
	m, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	users, err := s.users.FindByUsernames(ctx, []string{m.FromUsername, m.ToUsername})
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}

	return &domain.MessageDetail{
		Message:  *m,
		FromUser: participant(users, m.FromUsername),
		ToUser:   participant(users, m.ToUsername),
	}, nil
}

// MarkRead stamps readAt the first time it is called for a message; later
// calls leave the original stamp and return the message unchanged.
func (s *MessageStore) MarkRead(ctx context.Context, id string) (*domain.Message, error) {
	if err := s.messages.MarkRead(ctx, id, domain.Now()); err != nil {
		return nil, err
	}
	return s.messages.FindByID(ctx, id)
}

func (s *MessageStore) SentBy(ctx context.Context, username string) ([]domain.SentMessage, error) {
	msgs, err := s.messages.ListBySender(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.resolve(ctx, msgs, func(m domain.Message) string { return m.ToUsername })
	if err != nil {
		return nil, err
	}

	out := make([]domain.SentMessage, len(msgs))
	for i, m := range msgs {
		out[i] = domain.SentMessage{
			ID:     m.ID,
			ToUser: participant(users, m.ToUsername),
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
		}
	}
	return out, nil
}

func (s *MessageStore) ReceivedBy(ctx context.Context, username string) ([]domain.ReceivedMessage, error) {
	msgs, err := s.messages.ListByRecipient(ctx, username)
	if err != nil {
		return nil, err
	}

	users, err := s.resolve(ctx, msgs, func(m domain.Message) string { return m.FromUsername })
	if err != nil {
		return nil, err
	}

	out := make([]domain.ReceivedMessage, len(msgs))
	for i, m := range msgs {
		out[i] = domain.ReceivedMessage{
			ID:       m.ID,
			FromUser: participant(users, m.FromUsername),
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
		}
	}
	return out, nil
}

// resolve batches the user lookup for the counterpart of every message.
func (s *MessageStore) resolve(ctx context.Context, msgs []domain.Message, side func(domain.Message) string) (map[string]domain.User, error) {
	if len(msgs) == 0 {
		return map[string]domain.User{}, nil
	}

	seen := make(map[string]struct{}, len(msgs))
	names := make([]string, 0, len(msgs))
	for _, m := range msgs {
		name := side(m)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	users, err := s.users.FindByUsernames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}
	return users, nil
}

// participant falls back to a username-only view when the user is missing.
func participant(users map[string]domain.User, username string) domain.Participant {
	if u, ok := users[username]; ok {
		return u.Participant()
	}
	return domain.Participant{Username: username}
}
