package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/annel0/voxel-edit/internal/voxel"
)

// ErrNotFound для актора ещё ничего не сохранено
var ErrNotFound = errors.New("history record not found")

// Record сохранённые стеки одного актора. Оба стека упорядочены от новых к старым.
type Record struct {
	Actor uuid.UUID
	Undo  []*voxel.Action
	Redo  []*voxel.Action
}

// HistoryStore определяет интерфейс долговременного хранения истории правок.
// Записи привязаны к идентификатору актора; каждый Save полностью заменяет запись.
type HistoryStore interface {
	// Load загружает запись актора; ErrNotFound, если её нет
	Load(ctx context.Context, actor uuid.UUID) (*Record, error)

	// Save сохраняет запись актора целиком
	Save(ctx context.Context, rec *Record) error

	// Delete удаляет запись актора (отсутствие записи не ошибка)
	Delete(ctx context.Context, actor uuid.UUID) error

	// Actors перечисляет акторов, у которых есть запись
	Actors(ctx context.Context) ([]uuid.UUID, error)

	Close() error
}
