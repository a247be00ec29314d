package voxel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-edit/internal/logging"
	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/world/block"
)

// Limits верхние границы размеров одной правки
type Limits struct {
	MaxW int
	MaxH int
	MaxD int
}

// DefaultLimits 64 блока по каждой оси
func DefaultLimits() Limits {
	return Limits{MaxW: 64, MaxH: 64, MaxD: 64}
}

// Observer получает сведения о завершённых правках (метрики)
type Observer interface {
	ObserveEdit(op string, action *Action, elapsed time.Duration)
	ObserveLoot(containers, scatteredStacks int)
}

// HollowRequest очистка коробки с необязательной оболочкой
type HollowRequest struct {
	W, H, D int
	Shell   *block.BlockID // nil или воздух: стенки не трогаются
	Loot    bool
	Force   bool
}

// RoomRequest комната: стены, пол и потолок из заданных блоков, внутри воздух
type RoomRequest struct {
	W, H, D int
	Walls   block.BlockID
	Floor   block.BlockID
	Ceiling block.BlockID
	Loot    bool
	Force   bool
}

// ReplaceRequest замена from на to внутри плоской коробки W×H×D
type ReplaceRequest struct {
	W, H, D int
	From    block.BlockID
	To      block.BlockID
	Mode    ReplaceMode
	Chance  int // процент клеток, 100 означает все
	Force   bool
}

// ShapeRequest построение фигуры из материала
type ShapeRequest struct {
	Kind     ShapeKind
	Params   ShapeParams
	Material block.BlockID
	Hollow   bool
	Force    bool
}

// Executor выполняет правки региона через WorldAdapter и собирает Action
type Executor struct {
	limits      Limits
	distributor LootDistributor
	observer    Observer
	logger      *logging.Logger
	now         func() time.Time
	tracer      trace.Tracer
}

// Option настраивает Executor
type Option func(*Executor)

// WithLimits задаёт ограничения размеров
func WithLimits(l Limits) Option {
	return func(e *Executor) { e.limits = l }
}

// WithObserver подключает наблюдателя (метрики)
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithLogger подменяет логгер
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor создаёт исполнитель правок
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		limits: DefaultLimits(),
		logger: logging.GetComponentLogger("voxel"),
		now:    time.Now,
		tracer: otel.Tracer("github.com/annel0/voxel-edit/internal/voxel"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Limits текущие ограничения размеров
func (e *Executor) Limits() Limits {
	return e.limits
}

// Hollow очищает внутренность коробки и, если задана оболочка, обкладывает её блоком shell
func (e *Executor) Hollow(ctx context.Context, w WorldAdapter, f Frame, req HollowRequest) (*Action, error) {
	if err := e.validate(f, req.W, req.H, req.D); err != nil {
		return nil, err
	}

	var shell *block.State
	meta := ""
	if req.Shell != nil {
		if !block.IsValidBlockID(*req.Shell) {
			return nil, fmt.Errorf("%w: оболочка %d", ErrInvalidMaterial, *req.Shell)
		}
		if *req.Shell != block.AirBlockID {
			st := block.Default(*req.Shell)
			shell = &st
			meta = block.NameOf(*req.Shell)
		}
	}

	target := func(CellRole) (block.State, bool) {
		if shell == nil {
			return block.State{}, false
		}
		return *shell, true
	}
	return e.carve(ctx, "hollow", w, f, req.W, req.H, req.D, meta, req.Loot, req.Force, target)
}

// Room строит комнату: пол, потолок и стены из заданных блоков, внутри воздух
func (e *Executor) Room(ctx context.Context, w WorldAdapter, f Frame, req RoomRequest) (*Action, error) {
	if err := e.validate(f, req.W, req.H, req.D); err != nil {
		return nil, err
	}
	for _, id := range []block.BlockID{req.Walls, req.Floor, req.Ceiling} {
		if id == block.AirBlockID || !block.IsValidBlockID(id) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidMaterial, block.NameOf(id))
		}
	}

	walls, floor, ceiling := block.Default(req.Walls), block.Default(req.Floor), block.Default(req.Ceiling)
	target := func(role CellRole) (block.State, bool) {
		switch role {
		case ShellFloor:
			return floor, true
		case ShellCeiling:
			return ceiling, true
		default:
			return walls, true
		}
	}
	meta := roomMeta(req.Walls, req.Floor, req.Ceiling)
	return e.carve(ctx, "room", w, f, req.W, req.H, req.D, meta, req.Loot, req.Force, target)
}

// carve общий проход hollow/room по коробке с оболочкой
func (e *Executor) carve(ctx context.Context, op string, w WorldAdapter, f Frame, iw, ih, id int,
	meta string, loot, force bool, shellTarget func(CellRole) (block.State, bool)) (*Action, error) {

	ctx, span := e.startSpan(ctx, op, f)
	defer span.End()
	started := e.now()

	base := ActionMeta{InnerW: iw, InnerH: ih, InnerD: id, ShellMeta: meta, Force: force, Loot: loot}
	if !w.Mutable() {
		return e.empty(base), nil
	}

	g := RoomGeometry(f, iw, ih, id)
	run := newEditRun(w, f, loot)

	for c := range g.Cells() {
		cur := w.GetState(c.Pos)
		if isImmune(cur) {
			continue
		}

		if c.Role.IsShell() {
			target, ok := shellTarget(c.Role)
			if !ok {
				continue
			}
			if !force && IsProtected(cur) {
				continue
			}
			if cur == target {
				continue
			}
			run.write(c.Pos, cur, target)
			continue
		}

		if cur.IsAir() {
			continue
		}
		if !force && IsProtected(cur) {
			continue
		}
		run.demolish(c.Pos, cur)
	}

	if run.collector != nil && len(run.collector.Stacks()) > 0 {
		e.distributeLoot(w, g, f, run.collector)
		base.LootItemCount = run.collector.ItemCount()
	}

	return e.finish(ctx, op, w, base, run, started), nil
}

func (e *Executor) distributeLoot(w WorldAdapter, g BoxGeometry, f Frame, collector *LootCollector) {
	stacks := collector.Stacks()
	placed, residual := e.distributor.Distribute(w, g, stacks, f.Facing.Opposite())

	scatter := residual
	if placed == 0 {
		scatter = stacks
	}
	if len(scatter) > 0 {
		w.Scatter(g.DropPoint(), scatter)
	}
	e.logger.Debug("лут: %d предметов, сундуков %d, выброшено стопок %d",
		collector.ItemCount(), placed, len(scatter))
	if e.observer != nil {
		e.observer.ObserveLoot(placed, len(scatter))
	}
}

// Replace заменяет блоки from на to в плоской коробке W×H×D перед игроком
func (e *Executor) Replace(ctx context.Context, w WorldAdapter, f Frame, req ReplaceRequest) (*Action, error) {
	if err := e.validate(f, req.W, req.H, req.D); err != nil {
		return nil, err
	}
	if !block.IsValidBlockID(req.From) || !block.IsValidBlockID(req.To) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidMaterial, block.NameOf(req.From), block.NameOf(req.To))
	}

	chance := min(100, max(0, req.Chance))

	ctx, span := e.startSpan(ctx, "replace", f)
	defer span.End()
	started := e.now()

	base := ActionMeta{
		InnerW: req.W, InnerH: req.H, InnerD: req.D,
		ShellMeta: replaceMeta(req.From, req.To, req.Mode, chance),
		Force:     req.Force,
	}
	if !w.Mutable() {
		return e.empty(base), nil
	}

	from, to := block.Default(req.From), block.Default(req.To)
	g := NewBoxGeometry(f, req.W, req.H, req.D)
	run := newEditRun(w, f, false)

	for c := range g.Cells() {
		onShell := c.Role.IsShell()
		if req.Mode == ReplaceShellOnly && !onShell {
			continue
		}
		if req.Mode == ReplaceInsideOnly && onShell {
			continue
		}
		if chance < 100 && ChanceRoll(c.Local.X, c.Local.Y, c.Local.Z) >= chance {
			continue
		}

		cur := w.GetState(c.Pos)
		if cur != from || isImmune(cur) {
			continue
		}
		if !req.Force && IsProtected(cur) {
			continue
		}
		if cur == to {
			continue
		}
		run.write(c.Pos, cur, to)
	}

	return e.finish(ctx, "replace", w, base, run, started), nil
}

// ChanceRoll детерминированный бросок 0..99 для локальной клетки (dx, dy, dz).
// Считается в 32-битной арифметике.
func ChanceRoll(dx, dy, dz int) int {
	h := (int32(dx) * 73471) ^ (int32(dy) * 91283) ^ (int32(dz) * 39017)
	return int(((h % 100) + 100) % 100)
}

// Shape строит фигуру из материала
func (e *Executor) Shape(ctx context.Context, w WorldAdapter, f Frame, req ShapeRequest) (*Action, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := e.ValidateShape(req.Kind, req.Params); err != nil {
		return nil, err
	}
	if !block.IsValidBlockID(req.Material) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMaterial, block.NameOf(req.Material))
	}

	op := "shape_" + req.Kind.String()
	ctx, span := e.startSpan(ctx, op, f)
	defer span.End()
	started := e.now()

	iw, ih, id := shapeInnerDims(req.Kind, req.Params)
	base := ActionMeta{
		InnerW: iw, InnerH: ih, InnerD: id,
		ShellMeta: shapeMeta(req.Kind, req.Params, req.Material, req.Hollow),
		Force:     req.Force,
	}
	if !w.Mutable() {
		return e.empty(base), nil
	}

	cells, err := ShapeCells(f, req.Kind, req.Params, req.Hollow)
	if err != nil {
		return nil, err
	}

	target := block.Default(req.Material)
	run := newEditRun(w, f, false)
	for c := range cells {
		cur := w.GetState(c.Pos)
		if isImmune(cur) {
			continue
		}
		if !req.Force && IsProtected(cur) {
			continue
		}
		if cur == target {
			continue
		}
		run.write(c.Pos, cur, target)
	}

	return e.finish(ctx, op, w, base, run, started), nil
}

func (e *Executor) validate(f Frame, w, h, d int) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return e.ValidateBox(w, h, d)
}

// ValidateBox проверяет размеры коробки против ограничений
func (e *Executor) ValidateBox(w, h, d int) error {
	if w < 1 || w > e.limits.MaxW || h < 1 || h > e.limits.MaxH || d < 1 || d > e.limits.MaxD {
		return fmt.Errorf("%w: %dx%dx%d (максимум %dx%dx%d)", ErrInvalidSize,
			w, h, d, e.limits.MaxW, e.limits.MaxH, e.limits.MaxD)
	}
	return nil
}

// ValidateShape проверяет параметры фигуры против ограничений
func (e *Executor) ValidateShape(kind ShapeKind, p ShapeParams) error {
	bad := func() error {
		return fmt.Errorf("%w: %s %+v", ErrInvalidSize, kind, p)
	}
	switch kind {
	case ShapeBox:
		if p.W < 1 || p.W > e.limits.MaxW || p.H < 1 || p.H > e.limits.MaxH || p.D < 1 || p.D > e.limits.MaxD {
			return bad()
		}
	case ShapeSphere:
		if p.Radius < 1 || p.Radius > e.limits.MaxW {
			return bad()
		}
	case ShapeCylinder:
		if p.Radius < 1 || p.Radius > e.limits.MaxW || p.Height < 1 || p.Height > e.limits.MaxH {
			return bad()
		}
	case ShapePyramid:
		if p.Base < 1 || p.Base > e.limits.MaxW || p.Height < 1 || p.Height > e.limits.MaxH {
			return bad()
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownShape, kind)
	}
	return nil
}

func (e *Executor) startSpan(ctx context.Context, op string, f Frame) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "voxel."+op, trace.WithAttributes(
		attribute.String("voxel.actor", f.Actor.String()),
		attribute.String("voxel.dimension", f.Dimension),
		attribute.String("voxel.facing", f.Facing.String()),
	))
}

// empty действие для мира, который нельзя править: измерение "?", без снимков
func (e *Executor) empty(meta ActionMeta) *Action {
	meta.Dimension = UnknownDimension
	meta.TimestampMs = e.now().UnixMilli()
	e.logger.Warn("мир недоступен для правки, действие пустое (%s)", meta.ShellMeta)
	return Assemble(meta, nil)
}

func (e *Executor) finish(ctx context.Context, op string, w WorldAdapter, meta ActionMeta, run *editRun, started time.Time) *Action {
	meta.Dimension = w.DimensionID()
	meta.TimestampMs = e.now().UnixMilli()
	action := Assemble(meta, run.snapshots)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("voxel.changed", action.Changed()),
		attribute.Int("voxel.rejected", run.rejected),
	)

	if run.rejected > 0 {
		e.logger.Warn("%s: хост отклонил %d записей", op, run.rejected)
	}
	e.logger.Debug("%s %dx%dx%d dim=%s changed=%d loot=%d",
		op, meta.InnerW, meta.InnerH, meta.InnerD, meta.Dimension, action.Changed(), action.LootItemCount)

	if e.observer != nil {
		e.observer.ObserveEdit(op, action, e.now().Sub(started))
	}
	return action
}

// editRun накапливает снимки одной правки
type editRun struct {
	world     WorldAdapter
	frame     Frame
	loot      bool
	collector *LootCollector
	snapshots []Snapshot
	rejected  int
}

func newEditRun(w WorldAdapter, f Frame, loot bool) *editRun {
	run := &editRun{world: w, frame: f, loot: loot}
	if loot && !f.Creative {
		run.collector = &LootCollector{}
	}
	return run
}

// write сначала пишет, затем фиксирует снимок: отклонённая запись снимка не оставляет
func (r *editRun) write(pos vec.Vec3, cur, target block.State) {
	if !r.world.SetState(pos, target, FlagsDefault) {
		r.rejected++
		return
	}
	r.snapshots = append(r.snapshots, Snapshot{Pos: pos, Before: cur, After: target})
}

// demolish превращает клетку в воздух по правилам режима игрока
func (r *editRun) demolish(pos vec.Vec3, cur block.State) {
	var ok bool
	switch {
	case r.frame.Creative:
		ok = r.world.SetState(pos, block.Air, FlagsDefault)
	case !r.loot:
		ok = r.world.BreakWithDrops(pos, r.frame)
	default:
		drops := r.world.ComputeDrops(pos, cur, r.frame)
		ok = r.world.SetState(pos, block.Air, FlagsDefault)
		if ok {
			r.world.RemoveBlockEntity(pos)
			r.collector.Add(drops)
		}
	}

	if !ok {
		r.rejected++
		return
	}
	r.snapshots = append(r.snapshots, Snapshot{Pos: pos, Before: cur, After: block.Air})
}
