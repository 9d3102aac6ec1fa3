package cache

import (
	"context"
	"hash/fnv"
	"sync"
)

const defaultShards = 16

// MemoryStore is a sharded in-process Store.
type MemoryStore struct {
	shards []*memoryShard
}

type memoryShard struct {
	mu    sync.RWMutex
	store map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	shards := make([]*memoryShard, defaultShards)
	for i := range shards {
		shards[i] = &memoryShard{store: make(map[string]Entry)}
	}
	return &MemoryStore{shards: shards}
}

func (m *MemoryStore) shard(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s := m.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.store[key]
	if !ok {
		return nil, ErrNotFound
	}
	e.Data = append([]byte(nil), e.Data...)
	return &e, nil
}

func (m *MemoryStore) Put(_ context.Context, entry *Entry) error {
	e := *entry
	e.Data = append([]byte(nil), entry.Data...)

	s := m.shard(e.Key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[e.Key] = e
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.store)
		s.mu.RUnlock()
	}
	return n
}

var _ Store = (*MemoryStore)(nil)
