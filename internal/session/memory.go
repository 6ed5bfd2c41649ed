package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/personabot-ai/personabot/internal/domain"
	"github.com/personabot-ai/personabot/internal/provider"
)

// MemoryStore is an in-process Store used when no database path is
// configured, and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess.UpdatedAt = time.Now()
	m.sessions[sess.ID] = snapshot(sess)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, domain.NewNotFoundError("session", id)
	}
	return snapshot(sess), nil
}

func (m *MemoryStore) List(_ context.Context) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.sessions))
	for _, sess := range m.sessions {
		infos = append(infos, Info{
			ID:           sess.ID,
			Provider:     sess.Provider,
			Model:        sess.Model,
			MessageCount: len(sess.Messages),
			CreatedAt:    sess.CreatedAt,
			UpdatedAt:    sess.UpdatedAt,
		})
	}
	// Same ordering as the SQLite store: most recently updated first.
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.NewNotFoundError("session", id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// snapshot copies a session so callers and the store never share the
// message slice.
func snapshot(sess *Session) *Session {
	out := *sess
	out.Messages = make([]provider.Message, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return &out
}
