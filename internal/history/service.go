// Package history хранит ограниченные стеки undo/redo каждого актора
// и воспроизводит снимки действий в мире.
package history

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/annel0/voxel-edit/internal/logging"
	"github.com/annel0/voxel-edit/internal/storage"
	"github.com/annel0/voxel-edit/internal/voxel"
)

const (
	// MaxActionsPerActor глубина каждого из стеков undo и redo
	MaxActionsPerActor = 10
	// MaxHistoryLines максимум строк в листинге
	MaxHistoryLines = 20
	// DefaultListCount строк в листинге по умолчанию
	DefaultListCount = 5
	// MaxReplayCount максимум действий за один undo/redo
	MaxReplayCount = 10
)

// Направления воспроизведения
const (
	DirUndo = "undo"
	DirRedo = "redo"
)

// ReplayObserver получает статистику воспроизведений и ошибок сохранения
type ReplayObserver interface {
	ObserveReplay(direction string, restored int)
	ObservePersistError()
}

type actorHistory struct {
	undo *ring
	redo *ring
}

// Service история правок всех акторов. Все вызовы ожидаются из потока мира,
// мьютекс защищает только от чтения листинга из других горутин.
type Service struct {
	mu         sync.Mutex
	actors     map[uuid.UUID]*actorHistory
	loaded     map[uuid.UUID]struct{}
	store      storage.HistoryStore
	maxActions int
	observer   ReplayObserver
	logger     *logging.Logger
}

// Option настраивает Service
type Option func(*Service)

// WithStore включает долговременное хранение истории
func WithStore(store storage.HistoryStore) Option {
	return func(s *Service) { s.store = store }
}

// WithMaxActions меняет глубину стеков
func WithMaxActions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxActions = n
		}
	}
}

// WithObserver подключает метрики
func WithObserver(o ReplayObserver) Option {
	return func(s *Service) { s.observer = o }
}

// WithLogger заменяет логгер компонента
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService создаёт сервис истории. Без WithStore история живёт только в памяти.
func NewService(opts ...Option) *Service {
	s := &Service{
		actors:     make(map[uuid.UUID]*actorHistory),
		loaded:     make(map[uuid.UUID]struct{}),
		maxActions: MaxActionsPerActor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetComponentLogger("history")
	}
	return s
}

// Persistent true, если подключено хранилище
func (s *Service) Persistent() bool {
	return s.store != nil
}

// actorLocked возвращает стеки актора, лениво подгружая их из хранилища. Требует s.mu.
func (s *Service) actorLocked(ctx context.Context, actor uuid.UUID) *actorHistory {
	h, ok := s.actors[actor]
	if !ok {
		h = &actorHistory{undo: newRing(s.maxActions), redo: newRing(s.maxActions)}
		s.actors[actor] = h
	}
	if s.store == nil {
		return h
	}
	if _, done := s.loaded[actor]; done {
		return h
	}
	s.loaded[actor] = struct{}{}

	rec, err := s.store.Load(ctx, actor)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return h
	case err != nil:
		s.persistFailed(actor, "загрузки", err)
		return h
	}

	fillNewestFirst(h.undo, rec.Undo)
	fillNewestFirst(h.redo, rec.Redo)
	s.logger.Debug("Актор %s: загружено undo=%d redo=%d", actor, h.undo.len(), h.redo.len())
	return h
}

// fillNewestFirst кладёт сохранённые действия так, чтобы первое оказалось на вершине
func fillNewestFirst(r *ring, actions []*voxel.Action) {
	for i := len(actions) - 1; i >= 0; i-- {
		r.push(actions[i])
	}
}

// saveLocked сохраняет оба стека актора; ошибки только логируются. Требует s.mu.
func (s *Service) saveLocked(ctx context.Context, actor uuid.UUID, h *actorHistory) {
	if s.store == nil {
		return
	}
	rec := &storage.Record{Actor: actor, Undo: h.undo.newestFirst(), Redo: h.redo.newestFirst()}
	if err := s.store.Save(ctx, rec); err != nil {
		s.persistFailed(actor, "сохранения", err)
	}
}

func (s *Service) persistFailed(actor uuid.UUID, what string, err error) {
	s.logger.Warn("Ошибка %s истории актора %s: %v", what, actor, err)
	if s.observer != nil {
		s.observer.ObservePersistError()
	}
}

// Record кладёт действие на вершину undo и очищает redo.
// Пустые действия игнорируются; возвращает true, если действие записано.
func (s *Service) Record(ctx context.Context, actor uuid.UUID, action *voxel.Action) bool {
	if action == nil || action.IsEmpty() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.actorLocked(ctx, actor)
	if evicted := h.undo.push(action); evicted != nil {
		s.logger.Trace("Актор %s: вытеснено действие от %d", actor, evicted.TimestampMs)
	}
	h.redo.clear()
	s.saveLocked(ctx, actor, h)
	return true
}

// UndoOne откатывает верхнее действие в мире w. Возвращает число восстановленных клеток;
// 0, если откатывать нечего или действие из другого измерения (тогда стеки не меняются).
func (s *Service) UndoOne(ctx context.Context, actor uuid.UUID, w voxel.WorldAdapter) int {
	return s.replayOne(ctx, actor, w, DirUndo)
}

// RedoOne повторяет верхнее действие стека redo
func (s *Service) RedoOne(ctx context.Context, actor uuid.UUID, w voxel.WorldAdapter) int {
	return s.replayOne(ctx, actor, w, DirRedo)
}

// Undo откатывает до n действий по одному, останавливаясь на первом нулевом результате.
// Возвращает суммарное число восстановленных клеток.
func (s *Service) Undo(ctx context.Context, actor uuid.UUID, w voxel.WorldAdapter, n int) int {
	return s.replayMany(ctx, actor, w, DirUndo, n)
}

// Redo повторяет до n действий
func (s *Service) Redo(ctx context.Context, actor uuid.UUID, w voxel.WorldAdapter, n int) int {
	return s.replayMany(ctx, actor, w, DirRedo, n)
}

func (s *Service) replayMany(ctx context.Context, actor uuid.UUID, w voxel.WorldAdapter, dir string, n int) int {
	total := 0
	for i := 0; i < n; i++ {
		got := s.replayOne(ctx, actor, w, dir)
		if got == 0 {
			break
		}
		total += got
	}
	return total
}

func (s *Service) replayOne(ctx context.Context, actor uuid.UUID, w voxel.WorldAdapter, dir string) (restored int) {
	ctx, span := otel.Tracer("github.com/annel0/voxel-edit/internal/history").Start(ctx, "history."+dir)
	defer func() {
		span.SetAttributes(attribute.String("actor", actor.String()), attribute.Int("restored", restored))
		span.End()
		if s.observer != nil {
			s.observer.ObserveReplay(dir, restored)
		}
	}()

	if w == nil || !w.Mutable() {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.actorLocked(ctx, actor)
	from, to := h.undo, h.redo
	if dir == DirRedo {
		from, to = h.redo, h.undo
	}

	action, ok := from.pop()
	if !ok {
		return 0
	}
	if action.Dimension != w.DimensionID() {
		from.push(action)
		s.logger.Debug("Актор %s: %s пропущен, действие из %s, актор в %s", actor, dir, action.Dimension, w.DimensionID())
		return 0
	}

	for snap := range action.Reverse() {
		st := snap.Before
		if dir == DirRedo {
			st = snap.After
		}
		if w.SetState(snap.Pos, st, voxel.FlagsDefault) {
			restored++
		}
	}

	to.push(action)
	s.saveLocked(ctx, actor, h)
	s.logger.Debug("Актор %s: %s %d/%d клеток", actor, dir, restored, action.Changed())
	return restored
}

// HasUndo true, если актору есть что откатить
func (s *Service) HasUndo(ctx context.Context, actor uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actorLocked(ctx, actor).undo.len() > 0
}

// Sizes размеры стеков undo и redo актора
func (s *Service) Sizes(ctx context.Context, actor uuid.UUID) (undo, redo int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.actorLocked(ctx, actor)
	return h.undo.len(), h.redo.len()
}

// List возвращает min(n, размер undo, MaxHistoryLines) последних действий, новые первыми
func (s *Service) List(ctx context.Context, actor uuid.UUID, n int) Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.actorLocked(ctx, actor)
	actions := h.undo.newestFirst()
	count := min(max(n, 0), len(actions), MaxHistoryLines)

	out := Listing{Total: len(actions), Entries: make([]Entry, 0, count)}
	for i := 0; i < count; i++ {
		out.Entries = append(out.Entries, newEntry(i+1, actions[i]))
	}
	return out
}

// Flush сохраняет историю всех загруженных акторов
func (s *Service) Flush(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for actor, h := range s.actors {
		rec := &storage.Record{Actor: actor, Undo: h.undo.newestFirst(), Redo: h.redo.newestFirst()}
		if err := s.store.Save(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close выполняет финальный Flush и закрывает хранилище
func (s *Service) Close(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	err := s.Flush(ctx)
	return errors.Join(err, s.store.Close())
}
