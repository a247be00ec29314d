package implementations

import (
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// AirBehavior реализует поведение пустого блока (воздуха)
type AirBehavior struct{}

// ID возвращает идентификатор блока
func (b *AirBehavior) ID() block.BlockID {
	return block.AirBlockID
}

// Name возвращает имя блока
func (b *AirBehavior) Name() string {
	return "air"
}

// Properties воздух не имеет прочности
func (b *AirBehavior) Properties() block.Properties {
	return block.Properties{}
}

// DefaultState возвращает состояние воздуха
func (b *AirBehavior) DefaultState() block.State {
	return block.Air
}

// Drops воздух ничего не роняет
func (b *AirBehavior) Drops(state block.State, tool string) []item.Stack {
	return nil
}

// CreateMetadata создает пустые метаданные
func (b *AirBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{}
}
