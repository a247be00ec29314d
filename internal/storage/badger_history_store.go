package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

const badgerHistoryPrefix = "history:"

// BadgerHistoryStore хранит историю во встраиваемой BadgerDB: ключ history:<actor>
type BadgerHistoryStore struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerHistoryStore открывает (или создаёт) базу в каталоге dbPath
func NewBadgerHistoryStore(dbPath string) (*BadgerHistoryStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	return &BadgerHistoryStore{db: db, isReady: true}, nil
}

func badgerKey(actor uuid.UUID) []byte {
	return []byte(badgerHistoryPrefix + actor.String())
}

// Load загружает запись актора
func (s *BadgerHistoryStore) Load(ctx context.Context, actor uuid.UUID) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(actor))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории %s: %w", actor, err)
	}
	return DecodeRecord(data)
}

// Save сохраняет запись актора
func (s *BadgerHistoryStore) Save(ctx context.Context, rec *Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(rec.Actor), data)
	})
}

// Delete удаляет запись актора
func (s *BadgerHistoryStore) Delete(ctx context.Context, actor uuid.UUID) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(actor))
	})
}

// Actors перечисляет акторов по префиксу ключей
func (s *BadgerHistoryStore) Actors(ctx context.Context) ([]uuid.UUID, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var out []uuid.UUID
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerHistoryPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := strings.TrimPrefix(string(it.Item().Key()), badgerHistoryPrefix)
			if id, err := uuid.Parse(key); err == nil {
				out = append(out, id)
			}
		}
		return nil
	})
	sortActors(out)
	return out, err
}

// Close закрывает базу
func (s *BadgerHistoryStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false
	return s.db.Close()
}
