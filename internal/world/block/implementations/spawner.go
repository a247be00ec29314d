package implementations

import (
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// SpawnerBehavior спаунер мобов
type SpawnerBehavior struct{}

// ID возвращает идентификатор блока
func (b *SpawnerBehavior) ID() block.BlockID { return block.SpawnerBlockID }

// Name возвращает имя блока
func (b *SpawnerBehavior) Name() string { return "spawner" }

// Properties спаунер хранит тип моба в block entity
func (b *SpawnerBehavior) Properties() block.Properties {
	return block.Properties{Hardness: 5, BlockEntity: true, Spawner: true}
}

// DefaultState возвращает состояние по умолчанию
func (b *SpawnerBehavior) DefaultState() block.State {
	return block.State{ID: block.SpawnerBlockID}
}

// Drops спаунер ничего не роняет
func (b *SpawnerBehavior) Drops(state block.State, tool string) []item.Stack {
	return nil
}

// CreateMetadata создает метаданные спаунера
func (b *SpawnerBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{"entity": "zombie", "delay": 20}
}
