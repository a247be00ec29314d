package implementations

import (
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// SignBehavior табличка с текстом в block entity
type SignBehavior struct{}

// ID возвращает идентификатор блока
func (b *SignBehavior) ID() block.BlockID { return block.SignBlockID }

// Name возвращает имя блока
func (b *SignBehavior) Name() string { return "sign" }

// Properties табличка хранит текст в block entity
func (b *SignBehavior) Properties() block.Properties {
	return block.Properties{Hardness: 1, BlockEntity: true}
}

// DefaultState возвращает состояние по умолчанию
func (b *SignBehavior) DefaultState() block.State {
	return block.State{ID: block.SignBlockID, Props: "rotation=0"}
}

// Drops возвращает табличку
func (b *SignBehavior) Drops(state block.State, tool string) []item.Stack {
	return []item.Stack{item.New("sign", 1)}
}

// CreateMetadata создает пустой текст
func (b *SignBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{"text": ""}
}
