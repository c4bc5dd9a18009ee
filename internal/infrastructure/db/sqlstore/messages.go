package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// MessageRepository implements ports.MessageRepository on the messages table.
type MessageRepository struct {
	db *sql.DB
}

const messageColumns = `id, from_username, to_username, body, sent_at, read_at`

func scanMessage(row rowScanner) (domain.Message, error) {
	var (
		m      domain.Message
		sentAt int64
		readAt sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.Body, &sentAt, &readAt); err != nil {
		return domain.Message{}, err
	}
	m.SentAt = fromMillis(sentAt)
	if readAt.Valid {
		t := fromMillis(readAt.Int64)
		m.ReadAt = &t
	}
	return m, nil
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.FromUsername, m.ToUsername, m.Body, toMillis(m.SentAt),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

// MarkRead sets read_at only while it is still NULL, so concurrent calls
// leave a single stamp.
func (r *MessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET read_at = $1 WHERE id = $2 AND read_at IS NULL`,
		toMillis(at), id,
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM messages WHERE id = $1`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrMessageNotFound
	}
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListBySender(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, `from_username`, username)
}

func (r *MessageRepository) ListByRecipient(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, `to_username`, username)
}

// list selects on column, which is always one of the two participant columns.
func (r *MessageRepository) list(ctx context.Context, column, username string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE `+column+` = $1 ORDER BY sent_at, id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}
