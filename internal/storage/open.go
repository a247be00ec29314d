package storage

import (
	"fmt"
	"path/filepath"
)

// Backend имена поддерживаемых хранилищ истории
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMaria  = "maria"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Options параметры открытия хранилища истории
type Options struct {
	Backend string
	Dir     string // каталог для file, badger и sqlite
	DSN     string // строка подключения maria
	Redis   *RedisConfig
	Mongo   MongoConfig
}

// Open открывает хранилище истории по имени бэкенда
func Open(opts Options) (HistoryStore, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryHistoryStore(), nil
	case "", BackendFile:
		return NewFileHistoryStore(opts.Dir)
	case BackendBadger:
		return NewBadgerHistoryStore(filepath.Join(opts.Dir, "badger"))
	case BackendRedis:
		return NewRedisHistoryStore(opts.Redis)
	case BackendMaria:
		return NewSQLHistoryStore(DialectMaria, opts.DSN)
	case BackendSQLite:
		return NewSQLHistoryStore(DialectSQLite, filepath.Join(opts.Dir, "history.db"))
	case BackendMongo:
		return NewMongoHistoryStore(opts.Mongo)
	default:
		return nil, fmt.Errorf("неизвестное хранилище истории %q", opts.Backend)
	}
}
