package voxel

import (
	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// SetFlags флаги записи состояния блока
type SetFlags uint8

const (
	// FlagNotify оповестить соседние блоки
	FlagNotify SetFlags = 1 << iota
	// FlagRender отправить изменение клиентам
	FlagRender
)

// FlagsDefault движок всегда пишет с оповещением и отрисовкой
const FlagsDefault = FlagNotify | FlagRender

// WorldAdapter доступ движка к миру хоста. Все вызовы выполняются в потоке тиков мира.
type WorldAdapter interface {
	// DimensionID идентификатор измерения, например "overworld"
	DimensionID() string
	// Mutable false для миров, которые нельзя править (клиентская копия, только чтение)
	Mutable() bool

	GetState(pos vec.Vec3) block.State
	// SetState возвращает false, если хост отклонил запись
	SetState(pos vec.Vec3, state block.State, flags SetFlags) bool
	// BreakWithDrops ломает блок как игрок, с естественным дропом в мир
	BreakWithDrops(pos vec.Vec3, frame Frame) bool
	// ComputeDrops считает дроп блока, не меняя мир
	ComputeDrops(pos vec.Vec3, state block.State, frame Frame) []item.Stack
	RemoveBlockEntity(pos vec.Vec3)
	// Scatter выбрасывает предметы в мир в точке pos
	Scatter(pos vec.Vec3, stacks []item.Stack)
	// ContainerInventory инвентарь контейнера в pos или nil
	ContainerInventory(pos vec.Vec3) *item.Inventory
}
