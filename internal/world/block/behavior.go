package block

import (
	"github.com/annel0/voxel-edit/internal/world/item"
)

// Metadata начальные данные block entity
type Metadata map[string]interface{}

// Properties статические свойства типа блока
type Properties struct {
	Hardness    float32
	Unbreakable bool // ломается только записью состояния напрямую (бедрок)
	BlockEntity bool // блок хранит block entity
	Spawner     bool
	Container   int // число слотов инвентаря, 0 если блок не контейнер
}

// BlockBehavior определяет поведение блока
type BlockBehavior interface {
	ID() BlockID
	Name() string
	Properties() Properties
	DefaultState() State
	// Drops возвращает предметы, выпадающие при разрушении блока инструментом tool
	Drops(state State, tool string) []item.Stack
	CreateMetadata() Metadata
}

// PropertiesOf возвращает свойства типа блока (нулевые для незарегистрированных ID)
func PropertiesOf(id BlockID) Properties {
	if behavior, ok := Get(id); ok {
		return behavior.Properties()
	}
	return Properties{}
}
