package item

// Inventory набор слотов контейнера. Пустой слот хранится как нулевая Stack.
type Inventory struct {
	slots []Stack
}

// NewInventory создаёт инвентарь из size пустых слотов
func NewInventory(size int) *Inventory {
	return &Inventory{slots: make([]Stack, size)}
}

// Size возвращает количество слотов
func (inv *Inventory) Size() int {
	return len(inv.slots)
}

// Slot возвращает копию содержимого слота
func (inv *Inventory) Slot(i int) Stack {
	return inv.slots[i].Clone()
}

// SetSlot заменяет содержимое слота
func (inv *Inventory) SetSlot(i int, st Stack) {
	inv.slots[i] = st
}

// Insert кладёт стопку в инвентарь и возвращает остаток.
// Сначала дополняются непустые слоты с тем же предметом и компонентами,
// затем остаток целиком занимает первый пустой слот.
func (inv *Inventory) Insert(st Stack) Stack {
	if st.IsEmpty() {
		return Stack{}
	}

	for i := range inv.slots {
		slot := &inv.slots[i]
		if slot.IsEmpty() || !slot.SameItemAndComponents(st) {
			continue
		}
		room := slot.MaxCount() - slot.Count
		if room <= 0 {
			continue
		}
		move := min(st.Count, room)
		slot.Count += move
		st.Count -= move
		if st.Count == 0 {
			return Stack{}
		}
	}

	for i := range inv.slots {
		if inv.slots[i].IsEmpty() {
			inv.slots[i] = st
			return Stack{}
		}
	}

	return st
}

// Contents возвращает копии всех непустых слотов
func (inv *Inventory) Contents() []Stack {
	var out []Stack
	for _, st := range inv.slots {
		if !st.IsEmpty() {
			out = append(out, st.Clone())
		}
	}
	return out
}

// Clear очищает все слоты и возвращает их прежнее содержимое
func (inv *Inventory) Clear() []Stack {
	contents := inv.Contents()
	for i := range inv.slots {
		inv.slots[i] = Stack{}
	}
	return contents
}
