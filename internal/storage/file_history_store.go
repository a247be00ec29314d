package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// HistoryFileExt расширение файлов истории
const HistoryFileExt = ".hist.zst"

// FileHistoryStore хранит по одному сжатому zstd файлу на актора: <dir>/<actor>.hist.zst
type FileHistoryStore struct {
	dir string
}

// NewFileHistoryStore создаёт файловое хранилище, создавая каталог при необходимости
func NewFileHistoryStore(dir string) (*FileHistoryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог истории %s: %w", dir, err)
	}
	return &FileHistoryStore{dir: dir}, nil
}

// Path путь к файлу актора
func (s *FileHistoryStore) Path(actor uuid.UUID) string {
	return filepath.Join(s.dir, actor.String()+HistoryFileExt)
}

// Load загружает запись актора
func (s *FileHistoryStore) Load(ctx context.Context, actor uuid.UUID) (*Record, error) {
	f, err := os.Open(s.Path(actor))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия истории %s: %w", actor, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории %s: %w", actor, err)
	}
	return DecodeRecord(data)
}

// Save записывает запись во временный файл и атомарно переименовывает его
func (s *FileHistoryStore) Save(ctx context.Context, rec *Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	path := s.Path(rec.Actor)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc, err := zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка инициализации zstd: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		tmp.Close()
		return fmt.Errorf("ошибка записи истории %s: %w", rec.Actor, err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка сжатия истории %s: %w", rec.Actor, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete удаляет файл актора
func (s *FileHistoryStore) Delete(ctx context.Context, actor uuid.UUID) error {
	err := os.Remove(s.Path(actor))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ошибка удаления истории %s: %w", actor, err)
	}
	return nil
}

// Actors перечисляет акторов по именам файлов
func (s *FileHistoryStore) Actors(ctx context.Context) ([]uuid.UUID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []uuid.UUID
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), HistoryFileExt)
		if !ok || e.IsDir() {
			continue
		}
		if id, err := uuid.Parse(name); err == nil {
			out = append(out, id)
		}
	}
	sortActors(out)
	return out, nil
}

// Close ничего не делает
func (s *FileHistoryStore) Close() error {
	return nil
}

func sortActors(ids []uuid.UUID) {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})
}
