package implementations

import (
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// SimpleBehavior блок без собственного состояния; при разрушении выпадает dropItem
type SimpleBehavior struct {
	id       block.BlockID
	name     string
	props    block.Properties
	dropItem string
}

// NewSimple создаёт простой блок, выпадающий сам собой
func NewSimple(id block.BlockID, name string, hardness float32) *SimpleBehavior {
	return &SimpleBehavior{id: id, name: name, props: block.Properties{Hardness: hardness}, dropItem: name}
}

// DroppingAs меняет выпадающий предмет ("" означает отсутствие дропа)
func (b *SimpleBehavior) DroppingAs(itemName string) *SimpleBehavior {
	b.dropItem = itemName
	return b
}

// ID возвращает идентификатор блока
func (b *SimpleBehavior) ID() block.BlockID { return b.id }

// Name возвращает имя блока
func (b *SimpleBehavior) Name() string { return b.name }

// Properties возвращает свойства блока
func (b *SimpleBehavior) Properties() block.Properties { return b.props }

// DefaultState возвращает состояние без свойств
func (b *SimpleBehavior) DefaultState() block.State { return block.State{ID: b.id} }

// Drops возвращает один предмет dropItem
func (b *SimpleBehavior) Drops(state block.State, tool string) []item.Stack {
	if b.dropItem == "" {
		return nil
	}
	return []item.Stack{item.New(b.dropItem, 1)}
}

// CreateMetadata простые блоки не хранят метаданных
func (b *SimpleBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{}
}
