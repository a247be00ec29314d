package item

import "sync"

// DefaultMaxStack размер стопки для предметов без особых правил
const DefaultMaxStack = 64

var (
	maxStackMu sync.RWMutex
	maxStack   = map[string]int{
		"sign":            16,
		"egg":             16,
		"ender_pearl":     16,
		"wooden_pickaxe":  1,
		"stone_pickaxe":   1,
		"iron_pickaxe":    1,
		"diamond_pickaxe": 1,
	}
)

// RegisterMaxStack задаёт максимальный размер стопки для предмета
func RegisterMaxStack(itemName string, max int) {
	maxStackMu.Lock()
	maxStack[itemName] = max
	maxStackMu.Unlock()
}

// MaxStackSize возвращает максимальный размер стопки для предмета
func MaxStackSize(itemName string) int {
	maxStackMu.RLock()
	defer maxStackMu.RUnlock()
	if n, ok := maxStack[itemName]; ok && n > 0 {
		return n
	}
	return DefaultMaxStack
}
