package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/messagely/messagely-api/internal/api/metrics"
	"github.com/messagely/messagely-api/internal/core/domain"
	"github.com/messagely/messagely-api/internal/core/guard"
	"github.com/messagely/messagely-api/internal/core/ports"
)

type messageService struct {
	store          ports.MessageStore
	idempotency    ports.IdempotencyStore
	idempotencyTTL time.Duration
	log            zerolog.Logger
}

// NewMessageService returns a MessageService that checks every operation
// against the access rules before touching the store. idempotency may be nil,
// in which case Idempotency-Key headers are ignored.
func NewMessageService(
	store ports.MessageStore,
	idempotency ports.IdempotencyStore,
	idempotencyTTL time.Duration,
	log zerolog.Logger,
) ports.MessageService {
	return &messageService{
		store:          store,
		idempotency:    idempotency,
		idempotencyTTL: idempotencyTTL,
		log:            log,
	}
}

// Send creates a message from in.From to in.To. If an idempotency key is
// provided and already seen for this caller, the earlier message is returned
// without creating a new one. The key is claimed before the message is
// created, so concurrent retries cannot both send.
func (s *messageService) Send(ctx context.Context, in ports.SendInput) (*ports.SendResult, error) {
	if !guard.CanSend(in.Caller, in.From) {
		metrics.AccessDeniedTotal.WithLabelValues("send").Inc()
		return nil, domain.ErrSendAsOther
	}

	claimed := false
	if s.idempotency != nil && in.IdempotencyKey != "" {
		res, ok, err := s.claim(ctx, in)
		if err != nil || res != nil {
			return res, err
		}
		claimed = ok
	}

	m, err := s.store.Create(ctx, in.From, in.To, in.Body)
	if err != nil {
		if claimed {
			if rerr := s.idempotency.Release(ctx, in.Caller, in.IdempotencyKey); rerr != nil {
				s.log.Warn().Err(rerr).Str("username", in.Caller).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}
	metrics.MessagesSentTotal.Inc()

	if claimed {
		if err := s.idempotency.Complete(ctx, in.Caller, in.IdempotencyKey, m.ID, s.idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("username", in.Caller).Msg("failed to store idempotency key")
		}
	}

	s.log.Info().Str("message_id", m.ID).Str("from", m.FromUsername).Str("to", m.ToUsername).Msg("message sent")
	return &ports.SendResult{Message: *m}, nil
}

// claim reserves in.IdempotencyKey. It returns a replay result when the key
// already produced a message, ErrSendInProgress while another send holds it,
// and claimed=true when this send owns the key. Store failures are logged and
// the send proceeds unclaimed.
func (s *messageService) claim(ctx context.Context, in ports.SendInput) (*ports.SendResult, bool, error) {
	id, claimed, err := s.idempotency.Claim(ctx, in.Caller, in.IdempotencyKey, s.idempotencyTTL)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("username", in.Caller).Msg("idempotency claim failed, sending anyway")
		return nil, false, nil
	case claimed:
		return nil, true, nil
	case id == "":
		return nil, false, domain.ErrSendInProgress
	}

	detail, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Str("message_id", id).Msg("idempotent replay lookup failed")
		}
		// The remembered message is gone; send again and overwrite the entry.
		return nil, true, nil
	}

	metrics.IdempotentReplaysTotal.Inc()
	s.log.Info().Str("message_id", id).Str("username", in.Caller).Msg("idempotent replay")
	return &ports.SendResult{Message: detail.Message, Replayed: true}, false, nil
}

func (s *messageService) Get(ctx context.Context, caller, id string) (*domain.MessageDetail, error) {
	detail, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !guard.CanView(caller, detail.Message) {
		metrics.AccessDeniedTotal.WithLabelValues("view").Inc()
		return nil, domain.ErrNotParticipant
	}
	return detail, nil
}

func (s *messageService) MarkRead(ctx context.Context, caller, id string) (*domain.Message, error) {
	detail, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !guard.CanMarkRead(caller, detail.Message) {
		metrics.AccessDeniedTotal.WithLabelValues("mark_read").Inc()
		return nil, domain.ErrNotRecipient
	}

	m, err := s.store.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}
	metrics.MessagesReadTotal.Inc()
	return m, nil
}

func (s *messageService) Sent(ctx context.Context, caller, username string) ([]domain.SentMessage, error) {
	if !guard.CanAccessAccount(caller, username) {
		metrics.AccessDeniedTotal.WithLabelValues("account").Inc()
		return nil, domain.ErrNotAccountOwner
	}
	return s.store.SentBy(ctx, username)
}

func (s *messageService) Received(ctx context.Context, caller, username string) ([]domain.ReceivedMessage, error) {
	if !guard.CanAccessAccount(caller, username) {
		metrics.AccessDeniedTotal.WithLabelValues("account").Inc()
		return nil, domain.ErrNotAccountOwner
	}
	return s.store.ReceivedBy(ctx, username)
}
