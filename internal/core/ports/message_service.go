package ports

import (
	"context"
	"time"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// MessageStore is the unguarded message persistence use case layer.
type MessageStore interface {
	Create(ctx context.Context, from, to, body string) (*domain.Message, error)
	Get(ctx context.Context, id string) (*domain.MessageDetail, error)
	MarkRead(ctx context.Context, id string) (*domain.Message, error)
	SentBy(ctx context.Context, username string) ([]domain.SentMessage, error)
	ReceivedBy(ctx context.Context, username string) ([]domain.ReceivedMessage, error)
}

// IdempotencyStore remembers which message a client-supplied key produced.
//
// Claim reserves the key atomically before the message is created. The first
// caller gets claimed=true; later callers get the stored message id, which is
// empty while the claiming send is still in flight. Complete records the id
// once the message exists and Release drops a claim whose send failed.
type IdempotencyStore interface {
	Claim(ctx context.Context, caller, key string, ttl time.Duration) (messageID string, claimed bool, err error)
	Complete(ctx context.Context, caller, key, messageID string, ttl time.Duration) error
	Release(ctx context.Context, caller, key string) error
}

// SendInput is the DTO passed from the transport layer to MessageService.Send.
type SendInput struct {
	Caller         string
	From           string
	To             string
	Body           string
	IdempotencyKey string
}

// SendResult is returned by MessageService.Send.
type SendResult struct {
	Message domain.Message
	// Replayed is true when the Idempotency-Key matched an earlier send.
	Replayed bool
}

// MessageService enforces access rules on top of MessageStore.
type MessageService interface {
	Send(ctx context.Context, in SendInput) (*SendResult, error)
	Get(ctx context.Context, caller, id string) (*domain.MessageDetail, error)
	MarkRead(ctx context.Context, caller, id string) (*domain.Message, error)
	Sent(ctx context.Context, caller, username string) ([]domain.SentMessage, error)
	Received(ctx context.Context, caller, username string) ([]domain.ReceivedMessage, error)
}
