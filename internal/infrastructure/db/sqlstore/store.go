// Package sqlstore implements the user and message repositories on
// database/sql for PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).
//
// Both dialects share one schema and one set of queries: timestamps are
// stored as BIGINT milliseconds since the epoch and placeholders use the
// $N form, which both drivers bind by ordinal.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Dialect names a supported SQL backend. The value doubles as the
// database/sql driver name.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Store wraps a database handle for one dialect.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to dsn, verifies connectivity and, when migrate is true,
// applies the embedded migrations first. For SQLite, dsn is a file path.
func Open(ctx context.Context, dialect Dialect, dsn string, migrate bool) (*Store, error) {
	dsn, err := dataSource(dialect, dsn)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := Migrate(dialect, dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// SQLite allows a single writer; serialise on one connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return &Store{db: db, dialect: dialect}, nil
}

// dataSource normalises dsn for the dialect.
func dataSource(dialect Dialect, dsn string) (string, error) {
	switch dialect {
	case Postgres:
		if strings.TrimSpace(dsn) == "" {
			return "", errors.New("postgres: database url is required")
		}
		return dsn, nil
	case SQLite:
		if strings.TrimSpace(dsn) == "" {
			return "", errors.New("sqlite: database path is required")
		}
		if strings.Contains(dsn, "?") {
			return dsn, nil
		}
		return filepath.Clean(dsn) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", dialect)
	}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{db: s.db}
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping is used by the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// placeholders returns "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
