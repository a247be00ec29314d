package implementations

import (
	"strings"

	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// GlassBehavior стекло разбивается без дропа, кроме инструмента с шёлковым касанием
type GlassBehavior struct{}

// ID возвращает идентификатор блока
func (b *GlassBehavior) ID() block.BlockID { return block.GlassBlockID }

// Name возвращает имя блока
func (b *GlassBehavior) Name() string { return "glass" }

// Properties возвращает свойства стекла
func (b *GlassBehavior) Properties() block.Properties {
	return block.Properties{Hardness: 0.3}
}

// DefaultState возвращает состояние по умолчанию
func (b *GlassBehavior) DefaultState() block.State { return block.State{ID: block.GlassBlockID} }

// Drops возвращает стекло только при silk_touch
func (b *GlassBehavior) Drops(state block.State, tool string) []item.Stack {
	if strings.Contains(tool, "silk_touch") {
		return []item.Stack{item.New("glass", 1)}
	}
	return nil
}

// CreateMetadata стекло не хранит метаданных
func (b *GlassBehavior) CreateMetadata() block.Metadata { return block.Metadata{} }
