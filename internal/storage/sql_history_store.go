package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Dialect диалект SQL хранилища
type Dialect string

const (
	DialectMaria  Dialect = "maria"
	DialectSQLite Dialect = "sqlite"
)

type dialectQueries struct {
	driver      string
	createTable string
	upsert      string
}

var dialects = map[Dialect]dialectQueries{
	DialectMaria: {
		driver: "mysql",
		createTable: `
		CREATE TABLE IF NOT EXISTS voxel_history (
			actor      CHAR(36)    PRIMARY KEY,
			payload    LONGBLOB    NOT NULL,
			updated_at TIMESTAMP   DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE   CURRENT_TIMESTAMP,
			INDEX idx_updated_at (updated_at)
		) ENGINE=InnoDB`,
		upsert: `
		INSERT INTO voxel_history (actor, payload)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE
			payload = VALUES(payload),
			updated_at = CURRENT_TIMESTAMP`,
	},
	DialectSQLite: {
		driver: "sqlite",
		createTable: `
		CREATE TABLE IF NOT EXISTS voxel_history (
			actor      TEXT    PRIMARY KEY,
			payload    BLOB    NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		upsert: `
		INSERT INTO voxel_history (actor, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(actor) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
	},
}

// SQLHistoryStore хранит историю в таблице voxel_history (MariaDB/MySQL или SQLite)
type SQLHistoryStore struct {
	db      *sql.DB
	dialect Dialect
	queries dialectQueries
}

// NewSQLHistoryStore подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dialect - DialectMaria (dsn user:pass@tcp(host:port)/dbname) или DialectSQLite (путь к файлу)
//	dsn - строка подключения
func NewSQLHistoryStore(dialect Dialect, dsn string) (*SQLHistoryStore, error) {
	q, ok := dialects[dialect]
	if !ok {
		return nil, fmt.Errorf("неизвестный SQL диалект %q", dialect)
	}

	db, err := sql.Open(q.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с %s: %w", dialect, err)
	}

	if _, err := db.Exec(q.createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания таблицы voxel_history: %w", err)
	}

	return &SQLHistoryStore{db: db, dialect: dialect, queries: q}, nil
}

// Load загружает запись актора
func (s *SQLHistoryStore) Load(ctx context.Context, actor uuid.UUID) (*Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM voxel_history WHERE actor = ?`, actor.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки истории %s: %w", actor, err)
	}
	return DecodeRecord(payload)
}

// Save сохраняет запись актора (upsert)
func (s *SQLHistoryStore) Save(ctx context.Context, rec *Record) error {
	payload, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	args := []any{rec.Actor.String(), payload}
	if s.dialect == DialectSQLite {
		args = append(args, time.Now().UnixMilli())
	}
	if _, err := s.db.ExecContext(ctx, s.queries.upsert, args...); err != nil {
		return fmt.Errorf("ошибка сохранения истории %s: %w", rec.Actor, err)
	}
	return nil
}

// Delete удаляет запись актора
func (s *SQLHistoryStore) Delete(ctx context.Context, actor uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM voxel_history WHERE actor = ?`, actor.String()); err != nil {
		return fmt.Errorf("ошибка удаления истории %s: %w", actor, err)
	}
	return nil
}

// Actors перечисляет акторов с записями
func (s *SQLHistoryStore) Actors(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT actor FROM voxel_history ORDER BY actor`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка акторов: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		if id, err := uuid.Parse(raw); err == nil {
			out = append(out, id)
		}
	}
	return out, rows.Err()
}

// Close закрывает соединение с базой данных
func (s *SQLHistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
