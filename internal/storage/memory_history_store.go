package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryHistoryStore хранит закодированные записи в памяти (для тестов и разработки)
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]byte
}

// NewMemoryHistoryStore создаёт пустое in-memory хранилище
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{records: make(map[uuid.UUID][]byte)}
}

// Load загружает запись актора
func (s *MemoryHistoryStore) Load(ctx context.Context, actor uuid.UUID) (*Record, error) {
	s.mu.RLock()
	data, ok := s.records[actor]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeRecord(data)
}

// Save сохраняет запись актора
func (s *MemoryHistoryStore) Save(ctx context.Context, rec *Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records[rec.Actor] = data
	s.mu.Unlock()
	return nil
}

// Delete удаляет запись актора
func (s *MemoryHistoryStore) Delete(ctx context.Context, actor uuid.UUID) error {
	s.mu.Lock()
	delete(s.records, actor)
	s.mu.Unlock()
	return nil
}

// Actors перечисляет акторов с записями
func (s *MemoryHistoryStore) Actors(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	sortActors(out)
	return out, nil
}

// Close ничего не делает
func (s *MemoryHistoryStore) Close() error {
	return nil
}
