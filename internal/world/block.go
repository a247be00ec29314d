package world

import (
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// BlockEntity дополнительные данные блока: метаданные и, для контейнеров, инвентарь
type BlockEntity struct {
	Kind      block.BlockID
	Data      block.Metadata
	Inventory *item.Inventory
}

// NewBlockEntity создаёт block entity для типа блока или nil, если он не нужен
func NewBlockEntity(id block.BlockID) *BlockEntity {
	behavior, ok := block.Get(id)
	if !ok || !behavior.Properties().BlockEntity {
		return nil
	}

	be := &BlockEntity{Kind: id, Data: behavior.CreateMetadata()}
	if slots := behavior.Properties().Container; slots > 0 {
		be.Inventory = item.NewInventory(slots)
	}
	return be
}
