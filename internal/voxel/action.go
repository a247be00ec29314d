package voxel

import (
	"iter"
	"slices"

	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/world/block"
)

// Snapshot состояние клетки до и после правки
type Snapshot struct {
	Pos    vec.Vec3
	Before block.State
	After  block.State
}

// ActionMeta описание действия без снимков
type ActionMeta struct {
	Dimension     string
	TimestampMs   int64
	InnerW        int
	InnerH        int
	InnerD        int
	ShellMeta     string // пусто, если оболочки нет
	Force         bool
	Loot          bool
	LootItemCount int
}

// Action неизменяемая запись об одной правке.
// Порядок снимков совпадает с порядком обхода региона и задаёт порядок undo/redo.
type Action struct {
	ActionMeta
	snapshots []Snapshot
}

// Assemble собирает действие из снимков. Снимки без изменения и повторные позиции
// отбрасываются (первая запись по позиции остаётся), Changed всегда равен числу снимков.
func Assemble(meta ActionMeta, snapshots []Snapshot) *Action {
	kept := make([]Snapshot, 0, len(snapshots))
	seen := make(map[vec.Vec3]struct{}, len(snapshots))
	for _, s := range snapshots {
		if s.Before == s.After {
			continue
		}
		if _, dup := seen[s.Pos]; dup {
			continue
		}
		seen[s.Pos] = struct{}{}
		kept = append(kept, s)
	}
	if !meta.Loot {
		meta.LootItemCount = 0
	}
	return &Action{ActionMeta: meta, snapshots: kept}
}

// Changed число изменённых клеток
func (a *Action) Changed() int {
	return len(a.snapshots)
}

// IsEmpty true, если действие ничего не изменило
func (a *Action) IsEmpty() bool {
	return len(a.snapshots) == 0
}

// Snapshots копия снимков в порядке записи
func (a *Action) Snapshots() []Snapshot {
	return slices.Clone(a.snapshots)
}

// Reverse снимки в обратном порядке записи; так воспроизводятся и undo, и redo
func (a *Action) Reverse() iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		for i := len(a.snapshots) - 1; i >= 0; i-- {
			if !yield(a.snapshots[i]) {
				return
			}
		}
	}
}
