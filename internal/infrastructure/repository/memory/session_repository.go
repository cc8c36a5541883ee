package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/session"
)

type SessionRepository struct {
	mu    sync.RWMutex
	items map[string]session.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{items: make(map[string]session.Session)}
}

func (r *SessionRepository) Create(_ context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[s.Token]; exists {
		return fmt.Errorf("session token collision")
	}

	r.items[s.Token] = s
	return nil
}

func (r *SessionRepository) GetByToken(_ context.Context, token string) (session.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[token]
	if !ok {
		return session.Session{}, false, nil
	}

	return s, true, nil
}

func (r *SessionRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	delete(r.items, token)
	r.mu.Unlock()
	return nil
}
