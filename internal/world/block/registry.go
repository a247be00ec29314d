package block

import (
	"sort"
	"strings"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[BlockID]BlockBehavior)
	byName     = make(map[string]BlockID)
)

// Register добавляет поведение блока в регистр
func Register(id BlockID, behavior BlockBehavior) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[id] = behavior
	byName[behavior.Name()] = id
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (BlockBehavior, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	behavior, exists := registry[id]
	return behavior, exists
}

// Lookup находит ID блока по имени. Префикс пространства имён ("minecraft:") отбрасывается.
func Lookup(name string) (BlockID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	id, ok := byName[name]
	return id, ok
}

// NameOf возвращает имя блока или "#<id>" для незарегистрированного ID
func NameOf(id BlockID) string {
	if behavior, ok := Get(id); ok {
		return behavior.Name()
	}
	return "#" + itoa(int(id))
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := Get(id)
	return exists
}

// Names возвращает отсортированный список имён зарегистрированных блоков
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID         BlockID = iota // 0
	StoneBlockID                      // 1
	GrassBlockID                      // 2
	WaterBlockID                      // 3
	SandBlockID                       // 4
	DirtBlockID                       // 5
	AndesiteBlockID                   // 6
	CobblestoneBlockID                // 7
	GravelBlockID                     // 8
	BedrockBlockID                    // 9

	// Строительные блоки (начиная с 50)
	OakPlanksBlockID BlockID = 50
	GlassBlockID     BlockID = 51
	OakLogBlockID    BlockID = 52

	// Интерактивные блоки (начиная с 200), все с block entity
	ChestBlockID BlockID = 200
	SignBlockID  BlockID = 202

	// Специальные блоки (начиная с 1000)
	SpawnerBlockID BlockID = 1001
)
