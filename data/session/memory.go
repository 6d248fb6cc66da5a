package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/KotFed0t/risk_analysis_bot/utils"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySession keeps sessions in process memory. Entries are stored encoded,
// so callers never share a live Selection with the store.
type MemorySession struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	expiration time.Duration
	now        func() time.Time
}

func NewMemorySession(expiration time.Duration) *MemorySession {
	return &MemorySession{
		entries:    make(map[string]memoryEntry),
		expiration: expiration,
		now:        time.Now,
	}
}

func (m *MemorySession) GetSession(_ context.Context, key string) (model.Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && m.expired(entry) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return model.Session{}, ErrNotFound
	}

	var s model.Session
	if err := json.Unmarshal(entry.data, &s); err != nil {
		return model.Session{}, err
	}
	s.Normalize()

	return s, nil
}

func (m *MemorySession) SetSession(_ context.Context, key string, s model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{data: data}
	if m.expiration > 0 {
		entry.expiresAt = m.now().Add(m.expiration)
	}
	m.entries[key] = entry

	return nil
}

func (m *MemorySession) DeleteSession(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// EvictExpired drops every expired session.
func (m *MemorySession) EvictExpired(ctx context.Context) error {
	m.mu.Lock()
	evicted := 0
	for key, entry := range m.entries {
		if m.expired(entry) {
			delete(m.entries, key)
			evicted++
		}
	}
	remaining := len(m.entries)
	m.mu.Unlock()

	slog.Info(
		"evict expired sessions done",
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.Int("evicted", evicted),
		slog.Int("remaining", remaining),
	)

	return nil
}

func (m *MemorySession) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

func (m *MemorySession) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)
}
