package store

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
)

// Memory keeps encoded records in a map. Values round-trip through JSON so
// callers never share memory with what is stored.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, key string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	raw, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return &CorruptRecordError{Key: key, Err: err}
	}
	return nil
}

func (m *Memory) Save(ctx context.Context, key string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.records[key] = raw
	m.mu.Unlock()
	return nil
}

// Put stores raw bytes under key. Meant for seeding tests with bad data.
func (m *Memory) Put(key string, raw []byte) {
	m.mu.Lock()
	m.records[key] = append([]byte(nil), raw...)
	m.mu.Unlock()
}

// Keys lists the stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	return keys
}
