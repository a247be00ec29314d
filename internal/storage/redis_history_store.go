package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/annel0/voxel-edit/internal/logging"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string        // Адрес Redis сервера
	Password  string        // Пароль (пустой если не требуется)
	DB        int           // Номер базы данных
	KeyPrefix string        // Префикс для ключей
	TTL       time.Duration // Время жизни записей (0 без ограничения)
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "voxel:history:",
	}
}

// RedisHistoryStore хранит историю в Redis: SET <prefix><actor>
type RedisHistoryStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisHistoryStore подключается к Redis и проверяет соединение
func NewRedisHistoryStore(config *RedisConfig) (*RedisHistoryStore, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRedisConfig().KeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetComponentLogger("history").Info("Подключено к Redis %s", config.Addr)
	return &RedisHistoryStore{client: client, keyPrefix: config.KeyPrefix, ttl: config.TTL}, nil
}

func (s *RedisHistoryStore) key(actor uuid.UUID) string {
	return s.keyPrefix + actor.String()
}

// Load загружает запись актора
func (s *RedisHistoryStore) Load(ctx context.Context, actor uuid.UUID) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(actor)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return DecodeRecord(data)
}

// Save сохраняет запись актора
func (s *RedisHistoryStore) Save(ctx context.Context, rec *Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(rec.Actor), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

// Delete удаляет запись актора
func (s *RedisHistoryStore) Delete(ctx context.Context, actor uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(actor)).Err(); err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return nil
}

// Actors перечисляет акторов через SCAN по префиксу
func (s *RedisHistoryStore) Actors(ctx context.Context) ([]uuid.UUID, error) {
	var out []uuid.UUID
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if id, err := uuid.Parse(strings.TrimPrefix(iter.Val(), s.keyPrefix)); err == nil {
			out = append(out, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan history keys: %w", err)
	}
	sortActors(out)
	return out, nil
}

// Close закрывает соединение с Redis
func (s *RedisHistoryStore) Close() error {
	return s.client.Close()
}
