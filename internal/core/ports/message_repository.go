package ports

import (
	"context"
	"time"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// MessageRepository persists messages. List results are ordered by sent_at, then id.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	FindByID(ctx context.Context, id string) (*domain.Message, error)
	// MarkRead stamps read_at only when it is still unset.
	// Returns domain.ErrMessageNotFound when no message has the id.
	MarkRead(ctx context.Context, id string, at time.Time) error
	ListBySender(ctx context.Context, username string) ([]domain.Message, error)
	ListByRecipient(ctx context.Context, username string) ([]domain.Message, error)
}
