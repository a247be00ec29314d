package world

import (
	"fmt"
	"sync"

	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/voxel"
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// ItemDespawnTicks через сколько тиков выброшенный предмет исчезает (5 минут при 20 TPS)
const ItemDespawnTicks = 6000

// ItemEntity предмет, лежащий в мире
type ItemEntity struct {
	ID        uint64
	Pos       vec.Vec3
	Stack     item.Stack
	SpawnTick uint64
}

// Options параметры измерения
type Options struct {
	Dimension string
	MinY      int // нижняя граница (включительно)
	MaxY      int // верхняя граница (не включительно)
	ReadOnly  bool
	Generator Generator // nil означает пустой мир из воздуха
}

// World одно измерение воксельного мира. Чанки генерируются лениво при первом обращении.
type World struct {
	dimension string
	minY      int
	maxY      int
	readOnly  bool
	generator Generator

	mu       sync.RWMutex
	chunks   map[vec.Vec2]*Chunk
	entities map[vec.Vec3]*BlockEntity
	items    []*ItemEntity
	nextItem uint64
	tick     uint64
	dirty    map[vec.Vec2]struct{}
}

var _ voxel.WorldAdapter = (*World)(nil)

// New создаёт измерение
func New(opts Options) *World {
	if opts.MaxY <= opts.MinY {
		opts.MinY, opts.MaxY = -64, 320
	}
	return &World{
		dimension: opts.Dimension,
		minY:      opts.MinY,
		maxY:      opts.MaxY,
		readOnly:  opts.ReadOnly,
		generator: opts.Generator,
		chunks:    make(map[vec.Vec2]*Chunk),
		entities:  make(map[vec.Vec3]*BlockEntity),
		dirty:     make(map[vec.Vec2]struct{}),
	}
}

// DimensionID идентификатор измерения
func (w *World) DimensionID() string {
	return w.dimension
}

// Mutable false для измерений только для чтения
func (w *World) Mutable() bool {
	return !w.readOnly
}

// Bounds вертикальные границы мира [minY, maxY)
func (w *World) Bounds() (int, int) {
	return w.minY, w.maxY
}

func (w *World) inBounds(pos vec.Vec3) bool {
	return pos.Y >= w.minY && pos.Y < w.maxY
}

// chunkLocked возвращает чанк, генерируя его при необходимости. Требует w.mu.
func (w *World) chunkLocked(coords vec.Vec2) *Chunk {
	if c, ok := w.chunks[coords]; ok {
		return c
	}
	c := NewChunk(coords)
	if w.generator != nil {
		w.generator.Generate(c, w.minY, w.maxY)
		c.ChangeCounter = 0
	}
	w.chunks[coords] = c
	return c
}

// GetState возвращает состояние блока; вне границ по высоте всегда воздух
func (w *World) GetState(pos vec.Vec3) block.State {
	if !w.inBounds(pos) {
		return block.Air
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	coords, x, z := chunkCoords(pos)
	return w.chunkLocked(coords).GetState(x, pos.Y, z)
}

// SetState пишет состояние блока. Запись вне границ или в измерение только для чтения отклоняется.
func (w *World) SetState(pos vec.Vec3, st block.State, flags voxel.SetFlags) bool {
	if w.readOnly || !w.inBounds(pos) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(pos, st, flags)
	return true
}

func (w *World) setLocked(pos vec.Vec3, st block.State, flags voxel.SetFlags) {
	coords, x, z := chunkCoords(pos)
	c := w.chunkLocked(coords)
	old := c.GetState(x, pos.Y, z)
	c.SetState(x, pos.Y, z, st)

	if old.ID != st.ID {
		delete(w.entities, pos)
		if be := NewBlockEntity(st.ID); be != nil {
			w.entities[pos] = be
		}
	}
	if flags&voxel.FlagRender != 0 {
		w.dirty[coords] = struct{}{}
	}
}

// BreakWithDrops ломает блок как игрок: дроп блока и содержимое контейнера выпадают в мир
func (w *World) BreakWithDrops(pos vec.Vec3, frame voxel.Frame) bool {
	st := w.GetState(pos)
	if block.PropertiesOf(st.ID).Unbreakable {
		return false
	}
	drops := w.ComputeDrops(pos, st, frame)
	if !w.SetState(pos, block.Air, voxel.FlagsDefault) {
		return false
	}
	if len(drops) > 0 {
		w.Scatter(pos, drops)
	}
	return true
}

// ComputeDrops дроп блока инструментом игрока плюс копия содержимого контейнера
func (w *World) ComputeDrops(pos vec.Vec3, st block.State, frame voxel.Frame) []item.Stack {
	var drops []item.Stack
	if behavior, ok := block.Get(st.ID); ok {
		drops = behavior.Drops(st, frame.Tool)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if be, ok := w.entities[pos]; ok && be.Inventory != nil {
		drops = append(drops, be.Inventory.Contents()...)
	}
	return drops
}

// RemoveBlockEntity удаляет block entity в позиции
func (w *World) RemoveBlockEntity(pos vec.Vec3) {
	w.mu.Lock()
	delete(w.entities, pos)
	w.mu.Unlock()
}

// BlockEntityAt возвращает block entity в позиции
func (w *World) BlockEntityAt(pos vec.Vec3) (*BlockEntity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	be, ok := w.entities[pos]
	return be, ok
}

// ContainerInventory инвентарь контейнера или nil
func (w *World) ContainerInventory(pos vec.Vec3) *item.Inventory {
	be, ok := w.BlockEntityAt(pos)
	if !ok {
		return nil
	}
	return be.Inventory
}

// Scatter выбрасывает копии стопок в мир
func (w *World) Scatter(pos vec.Vec3, stacks []item.Stack) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, st := range stacks {
		if st.IsEmpty() {
			continue
		}
		w.nextItem++
		w.items = append(w.items, &ItemEntity{ID: w.nextItem, Pos: pos, Stack: st.Clone(), SpawnTick: w.tick})
	}
}

// Items возвращает копию списка выброшенных предметов
func (w *World) Items() []ItemEntity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]ItemEntity, 0, len(w.items))
	for _, it := range w.items {
		out = append(out, *it)
	}
	return out
}

// Tick продвигает время измерения: удаляет устаревшие предметы и сбрасывает грязные чанки.
// Возвращает число чанков, изменённых с прошлого тика.
func (w *World) Tick() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tick++

	kept := w.items[:0]
	for _, it := range w.items {
		if w.tick-it.SpawnTick < ItemDespawnTicks {
			kept = append(kept, it)
		}
	}
	for i := len(kept); i < len(w.items); i++ {
		w.items[i] = nil
	}
	w.items = kept

	dirty := len(w.dirty)
	clear(w.dirty)
	return dirty
}

// Fill заполняет коробку [from, to] (включительно) состоянием
func (w *World) Fill(from, to vec.Vec3, st block.State) error {
	if w.readOnly {
		return fmt.Errorf("измерение %s только для чтения", w.dimension)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for x := min(from.X, to.X); x <= max(from.X, to.X); x++ {
		for y := max(min(from.Y, to.Y), w.minY); y <= min(max(from.Y, to.Y), w.maxY-1); y++ {
			for z := min(from.Z, to.Z); z <= max(from.Z, to.Z); z++ {
				w.setLocked(vec.Vec3{X: x, Y: y, Z: z}, st, voxel.FlagsDefault)
			}
		}
	}
	return nil
}

// LoadedChunks количество загруженных чанков
func (w *World) LoadedChunks() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}
