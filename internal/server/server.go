package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/messagely/messagely-api/internal/api"
	"github.com/messagely/messagely-api/internal/core/ports"
	"github.com/messagely/messagely-api/internal/core/service"
	"github.com/messagely/messagely-api/internal/infrastructure/config"
	mongodb "github.com/messagely/messagely-api/internal/infrastructure/db/mongo"
	redisdb "github.com/messagely/messagely-api/internal/infrastructure/db/redis"
	"github.com/messagely/messagely-api/internal/infrastructure/db/sqlstore"
	"github.com/messagely/messagely-api/internal/infrastructure/http/handlers"
	"github.com/messagely/messagely-api/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

// Option customises a Server at construction time.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// WithRegistry exposes HTTP metrics through reg instead of the global registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registerer = reg
		o.gatherer = reg
	}
}

// Server wraps the HTTP server and everything it owns.
type Server struct {
	cfg    *config.Config
	log    zerolog.Logger
	echo   *echo.Echo
	logins *queue.Dispatcher

	stopWorkers context.CancelFunc
	closers     []func(context.Context) error
}

type repositories struct {
	users    ports.UserRepository
	messages ports.MessageRepository
}

// New connects to the configured store, wires the services and registers
// every route. The login-stamp workers start immediately.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{cfg: cfg, log: log}
	checks := make(map[string]handlers.Check)

	repos, err := s.openStore(ctx, checks)
	if err != nil {
		s.close(ctx)
		return nil, err
	}

	var idempotency ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			s.close(ctx)
			return nil, err
		}
		s.closers = append(s.closers, func(context.Context) error { return rdb.Close() })
		checks["redis"] = func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) }
		idempotency = redisdb.NewIdempotencyStore(rdb)
	} else {
		log.Info().Msg("REDIS_ADDR not set, Idempotency-Key replay disabled")
	}

	credentials, err := service.NewCredentialStore(repos.users, cfg.BcryptWorkFactor, log)
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	sessions := service.NewSessionIssuer(cfg.JWTSecret, cfg.TokenTTL)

	s.logins = queue.NewDispatcher(cfg.LoginWorkers, credentials, log)
	workerCtx, cancel := context.WithCancel(context.Background())
	s.stopWorkers = cancel
	s.logins.Start(workerCtx)

	messages := service.NewMessageService(
		service.NewMessageStore(repos.messages, repos.users),
		idempotency,
		cfg.Redis.IdempotencyTTL,
		log,
	)

	s.echo = api.NewRouter(api.Dependencies{
		Auth:       service.NewAuthService(credentials, sessions, s.logins, log),
		Messages:   messages,
		Directory:  service.NewDirectory(credentials),
		Sessions:   sessions,
		Readiness:  checks,
		Logger:     log,
		Registerer: o.registerer,
		Gatherer:   o.gatherer,
	})

	return s, nil
}

// openStore connects the repositories selected by STORE_DRIVER and registers
// its readiness check.
func (s *Server) openStore(ctx context.Context, checks map[string]handlers.Check) (repositories, error) {
	switch s.cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: s.cfg.Mongo.URI, Database: s.cfg.Mongo.Database})
		if err != nil {
			return repositories{}, err
		}
		s.closers = append(s.closers, client.Disconnect)

		users := mongodb.NewUserRepository(db)
		msgs := mongodb.NewMessageRepository(db)
		if err := mongodb.EnsureIndexes(ctx, users, msgs); err != nil {
			return repositories{}, err
		}
		checks["mongo"] = func(ctx context.Context) error { return mongodb.Ping(ctx, db) }
		return repositories{users: users, messages: msgs}, nil

	case config.DriverPostgres, config.DriverSQLite:
		dialect, dsn := sqlstore.Postgres, s.cfg.Store.DatabaseURL
		if s.cfg.Store.Driver == config.DriverSQLite {
			dialect, dsn = sqlstore.SQLite, s.cfg.Store.SQLitePath
		}
		// Postgres schemas are applied with `messagely migrate up`.
		store, err := sqlstore.Open(ctx, dialect, dsn, dialect == sqlstore.SQLite)
		if err != nil {
			return repositories{}, err
		}
		s.closers = append(s.closers, func(context.Context) error { return store.Close() })
		checks[string(dialect)] = store.Ping
		return repositories{users: store.Users(), messages: store.Messages()}, nil
	}

	return repositories{}, fmt.Errorf("unknown store driver %q", s.cfg.Store.Driver)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := ":" + s.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Str("driver", s.cfg.Store.Driver).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.close(context.Background())
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests and the login workers, then closes
// store connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down")
	var err error
	if s.echo != nil {
		err = s.echo.Shutdown(ctx)
	}
	s.close(ctx)
	return err
}

func (s *Server) close(ctx context.Context) {
	if s.stopWorkers != nil {
		s.stopWorkers()
		s.logins.Wait()
		s.stopWorkers = nil
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.log.Warn().Err(err).Msg("close failed")
		}
	}
	s.closers = nil
}
