package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Operator учётная запись оператора правок.
// ActorID ключ истории undo/redo, он не меняется между сессиями.
type Operator struct {
	Username     string    // Уникальное имя (без учёта регистра)
	PasswordHash string    // bcrypt хеш пароля
	ActorID      uuid.UUID // Стабильный идентификатор актора
	CreatedAt    time.Time
	LastLogin    time.Time
}

// Ошибки уровня домена
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// actorNamespace пространство имён для вывода ActorID из имени оператора
var actorNamespace = uuid.MustParse("5b0c7a8e-6f2d-4c1b-9e3a-7d8f1a2b3c4d")

// ActorIDFor детерминированный ActorID для оператора без явного идентификатора
func ActorIDFor(username string) uuid.UUID {
	return uuid.NewSHA1(actorNamespace, []byte(normalize(username)))
}
