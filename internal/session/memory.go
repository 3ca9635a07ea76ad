package session

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore はプロセス内のCredentialStore実装。
// テストや単一プロセスのクライアントで使う。
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore はMemoryStoreを生成する。nowがnilの場合はtime.Nowを使う。
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get は期限内の値を返す。
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Set は値を保存する。maxAgeが0以下の場合は削除と同じ。
func (m *MemoryStore) Set(key, value string, maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if maxAge <= 0 {
		delete(m.entries, key)
		return
	}
	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.now().Add(maxAge),
	}
}

// Delete は値を削除する。
func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}
