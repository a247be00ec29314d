package implementations

import (
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// ChestSlots вместимость одиночного сундука
const ChestSlots = 27

// ChestBehavior сундук: block entity с инвентарём и свойством facing
type ChestBehavior struct{}

// ID возвращает идентификатор блока
func (b *ChestBehavior) ID() block.BlockID { return block.ChestBlockID }

// Name возвращает имя блока
func (b *ChestBehavior) Name() string { return "chest" }

// Properties сундук хранит инвентарь в block entity
func (b *ChestBehavior) Properties() block.Properties {
	return block.Properties{Hardness: 2.5, BlockEntity: true, Container: ChestSlots}
}

// DefaultState сундук по умолчанию смотрит на север
func (b *ChestBehavior) DefaultState() block.State {
	return block.State{ID: block.ChestBlockID, Props: "facing=north"}
}

// Drops возвращает сам сундук. Содержимое высыпает мир.
func (b *ChestBehavior) Drops(state block.State, tool string) []item.Stack {
	return []item.Stack{item.New("chest", 1)}
}

// CreateMetadata создает метаданные сундука
func (b *ChestBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{"custom_name": ""}
}
