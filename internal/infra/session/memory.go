package session

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
)

type entry struct {
	state     booking.State
	expiresAt time.Time
}

type lock struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is the in-process SessionStore used when Redis is not
// configured.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry
	locks    map[string]lock
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]entry),
		locks:    make(map[string]lock),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, st booking.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[st.ID] = entry{state: st, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (booking.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.sessions, id)
		return booking.State{}, booking.ErrSessionNotFound
	}
	return e.state, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	delete(s.locks, id)
	return nil
}

func (s *MemoryStore) AcquireSubmitLock(ctx context.Context, id, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if l, ok := s.locks[id]; ok && now.Before(l.expiresAt) {
		return false, nil
	}
	s.locks[id] = lock{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

// ReleaseSubmitLock drops the lock only while token still holds it.
func (s *MemoryStore) ReleaseSubmitLock(ctx context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[id]; ok && l.token == token {
		delete(s.locks, id)
	}
	return nil
}

func (s *MemoryStore) SubmitLocked(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	return ok && s.now().Before(l.expiresAt), nil
}

var _ booking.SessionStore = (*MemoryStore)(nil)
