package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository on the users table.
type UserRepository struct {
	db *sql.DB
}

const userColumns = `username, first_name, last_name, phone, joined_at, last_login_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                   domain.User
		joinedAt, lastLogin int64
	)
	if err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone, &joinedAt, &lastLogin); err != nil {
		return domain.User{}, err
	}
	u.JoinedAt = fromMillis(joinedAt)
	u.LastLoginAt = fromMillis(lastLogin)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, first_name, last_name, phone, joined_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.Username,
		passwordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		toMillis(user.JoinedAt),
		toMillis(user.LastLoginAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByUsernames(ctx context.Context, usernames []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}

	args := make([]any, len(usernames))
	for i, name := range usernames {
		args[i] = name
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username IN (`+placeholders(1, len(usernames))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.Username] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return out, nil
}

func (r *UserRepository) PasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE username = $1`, username).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("find password hash: %w", err)
	}
	return hash, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE username = $2`, toMillis(at), username)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, first_name, last_name FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.UserSummary{}
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.Username, &s.FirstName, &s.LastName); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}
