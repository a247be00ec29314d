package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryOperatorRepo потокобезопасное хранилище операторов в памяти.
// Операторы задаются конфигурацией при старте сервера.
type MemoryOperatorRepo struct {
	mu        sync.RWMutex
	operators map[string]*Operator // key = lowercase(username)
}

// NewMemoryOperatorRepo создаёт пустой репозиторий
func NewMemoryOperatorRepo() *MemoryOperatorRepo {
	return &MemoryOperatorRepo{operators: make(map[string]*Operator)}
}

// Create добавляет оператора. Пустой actorID заменяется выведенным из имени.
func (r *MemoryOperatorRepo) Create(username, passwordHash string, actorID uuid.UUID) (*Operator, error) {
	key := normalize(username)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.operators[key]; exists {
		return nil, ErrUserExists
	}
	if actorID == uuid.Nil {
		actorID = ActorIDFor(username)
	}

	op := &Operator{
		Username:     username,
		PasswordHash: passwordHash,
		ActorID:      actorID,
		CreatedAt:    time.Now(),
	}
	r.operators[key] = op
	return op, nil
}

// GetByUsername возвращает оператора по имени без учёта регистра
func (r *MemoryOperatorRepo) GetByUsername(username string) (*Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operators[normalize(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *op
	return &copied, nil
}

// ValidateCredentials проверяет пароль и отмечает время входа
func (r *MemoryOperatorRepo) ValidateCredentials(username, password string) (*Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.operators[normalize(username)]
	if !ok || !CheckPassword(op.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	op.LastLogin = time.Now()
	copied := *op
	return &copied, nil
}

// Len количество операторов
func (r *MemoryOperatorRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.operators)
}

// Helper to normalise usernames.
func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
