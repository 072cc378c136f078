package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoSession = errors.New("session not found")

// Data is what the server keeps per browser session.
type Data struct {
	Teacher   bool
	Flash     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Store interface {
	Get(ctx context.Context, id string) (*Data, error)
	// Save stores data until data.ExpiresAt; saving never extends a session.
	Save(ctx context.Context, id string, data *Data) error
	Delete(ctx context.Context, id string) error
	Close() error
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Data
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Data),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	if !m.now().Before(d.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrNoSession
	}
	return &d, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, data *Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	m.sessions[id] = *data
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// sweep drops expired sessions; callers hold mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for id, d := range m.sessions {
		if !now.Before(d.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}
