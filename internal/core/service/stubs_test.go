package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/messagely/messagely-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]domain.User
	hashes    map[string]string
	findErr   error // if set, PasswordHash and FindByUsernames return this error
	lastLogin []string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:  make(map[string]domain.User),
		hashes: make(map[string]string),
	}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[u.Username]; exists {
		return domain.ErrUserExists
	}
	r.users[u.Username] = *u
	r.hashes[u.Username] = hash
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *stubUserRepo) FindByUsernames(_ context.Context, usernames []string) (map[string]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make(map[string]domain.User, len(usernames))
	for _, name := range usernames {
		if u, ok := r.users[name]; ok {
			out[name] = u
		}
	}
	return out, nil
}

func (r *stubUserRepo) PasswordHash(_ context.Context, username string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return "", r.findErr
	}
	h, ok := r.hashes[username]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return h, nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = at
	r.users[username] = u
	r.lastLogin = append(r.lastLogin, username)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.UserSummary, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) seed(usernames ...string) {
	for _, name := range usernames {
		r.users[name] = domain.User{
			Username:  name,
			FirstName: "First-" + name,
			LastName:  "Last-" + name,
			Phone:     "+1555" + name,
		}
	}
}

type stubMessageRepo struct {
	mu        sync.Mutex
	byID      map[string]domain.Message
	markCalls int
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{byID: make(map[string]domain.Message)}
}

func (r *stubMessageRepo) Create(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[m.ID] = *m
	return nil
}

func (r *stubMessageRepo) FindByID(_ context.Context, id string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	return &m, nil
}

// MarkRead mirrors the conditional update of the real stores.
func (r *stubMessageRepo) MarkRead(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls++
	m, ok := r.byID[id]
	if !ok {
		return domain.ErrMessageNotFound
	}
	if m.ReadAt == nil {
		m.ReadAt = &at
		r.byID[id] = m
	}
	return nil
}

func (r *stubMessageRepo) ListBySender(_ context.Context, username string) ([]domain.Message, error) {
	return r.list(func(m domain.Message) bool { return m.FromUsername == username }), nil
}

func (r *stubMessageRepo) ListByRecipient(_ context.Context, username string) ([]domain.Message, error) {
	return r.list(func(m domain.Message) bool { return m.ToUsername == username }), nil
}

func (r *stubMessageRepo) list(match func(domain.Message) bool) []domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.byID {
		if match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SentAt.Before(out[j].SentAt)
	})
	return out
}

const stubPending = "<pending>"

type stubIdempotency struct {
	mu       sync.Mutex
	keys     map[string]string
	claimErr error
	released []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Claim(_ context.Context, caller, key string, _ time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return "", false, s.claimErr
	}
	k := caller + ":" + key
	if id, ok := s.keys[k]; ok {
		if id == stubPending {
			return "", false, nil
		}
		return id, false, nil
	}
	s.keys[k] = stubPending
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, caller, key, id string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[caller+":"+key] = id
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, caller, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, caller+":"+key)
	s.released = append(s.released, caller+":"+key)
	return nil
}

type stubLoginRecorder struct {
	recorded []string
}

func (r *stubLoginRecorder) Record(username string) {
	r.recorded = append(r.recorded, username)
}
