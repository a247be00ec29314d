package voxel

import (
	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

// LootCollector копит дроп разрушенных клеток в порядке обхода
type LootCollector struct {
	stacks []item.Stack
	count  int
}

// Add копирует непустые стопки и возвращает число добавленных предметов
func (c *LootCollector) Add(drops []item.Stack) int {
	added := 0
	for _, st := range drops {
		if st.IsEmpty() {
			continue
		}
		c.stacks = append(c.stacks, st.Clone())
		added += st.Count
	}
	c.count += added
	return added
}

// Stacks собранные стопки
func (c *LootCollector) Stacks() []item.Stack {
	return c.stacks
}

// ItemCount сумма предметов по всем стопкам
func (c *LootCollector) ItemCount() int {
	return c.count
}

// LootDistributor раскладывает дроп по сундукам внутри очищенной коробки
type LootDistributor struct{}

// Distribute ставит пары сундуков на высоте base.y+1, начиная от центра коробки,
// и заполняет их по мере установки. Возвращает число поставленных сундуков и
// стопки, которые не поместились.
func (d LootDistributor) Distribute(w WorldAdapter, g BoxGeometry, stacks []item.Stack, chestFacing vec.Direction) (int, []item.Stack) {
	remaining := make([]item.Stack, 0, len(stacks))
	for _, st := range stacks {
		if !st.IsEmpty() {
			remaining = append(remaining, st.Clone())
		}
	}
	if len(remaining) == 0 {
		return 0, nil
	}

	minDepth, maxDepth := 1, g.OD-2
	minWidth, maxWidth := g.MinW+1, g.MaxW-1

	chest := block.Default(block.ChestBlockID).With("facing", chestFacing.String())
	var placed []vec.Vec3

	for _, dz := range centerOut(g.CenterDepth(), minDepth, maxDepth) {
		for _, w1 := range centerOut(g.CenterWidth(), minWidth, maxWidth) {
			w2 := w1 + 1
			if w2 > maxWidth {
				continue
			}

			p1 := g.At(w1, 1, dz)
			p2 := g.At(w2, 1, dz)
			if !chestSpot(w, p1) || !chestSpot(w, p2) {
				continue
			}
			if !w.SetState(p1, chest, FlagsDefault) {
				continue
			}
			if !w.SetState(p2, chest, FlagsDefault) {
				// одиночный сундук не ставим
				w.SetState(p1, block.Air, FlagsDefault)
				continue
			}
			placed = append(placed, p1, p2)

			if fill(w, placed, remaining) {
				return len(placed), nil
			}
		}
	}

	fill(w, placed, remaining)
	return len(placed), nonEmpty(remaining)
}

// centerOut перечисляет c, c-1, c+1, c-2, c+2 ... в пределах [lo, hi]
func centerOut(c, lo, hi int) []int {
	if lo > hi {
		return nil
	}
	order := []int{c}
	for step := 1; step <= max(c-lo, hi-c); step++ {
		if a := c - step; a >= lo {
			order = append(order, a)
		}
		if b := c + step; b <= hi {
			order = append(order, b)
		}
	}
	return order
}

func chestSpot(w WorldAdapter, pos vec.Vec3) bool {
	st := w.GetState(pos)
	if isImmune(st) || !st.IsAir() {
		return false
	}
	return w.GetState(pos.Above(1)).IsAir()
}

// fill пытается разложить все стопки по сундукам; true, если всё поместилось
func fill(w WorldAdapter, containers []vec.Vec3, stacks []item.Stack) bool {
	if len(containers) == 0 {
		return false
	}
	for i := range stacks {
		st := stacks[i]
		if st.IsEmpty() {
			continue
		}
		for _, pos := range containers {
			inv := w.ContainerInventory(pos)
			if inv == nil {
				continue
			}
			st = inv.Insert(st)
			if st.IsEmpty() {
				break
			}
		}
		stacks[i] = st
	}
	return len(nonEmpty(stacks)) == 0
}

func nonEmpty(stacks []item.Stack) []item.Stack {
	var out []item.Stack
	for _, st := range stacks {
		if !st.IsEmpty() {
			out = append(out, st)
		}
	}
	return out
}
