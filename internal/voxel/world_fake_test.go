package voxel

import (
	"github.com/google/uuid"

	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/world/block"
	_ "github.com/annel0/voxel-edit/internal/world/block/implementations"
	"github.com/annel0/voxel-edit/internal/world/item"
)

type scatterCall struct {
	pos    vec.Vec3
	stacks []item.Stack
}

// fakeWorld карта состояний с заливкой по умолчанию и границами по высоте
type fakeWorld struct {
	dim         string
	readOnly    bool
	fill        block.State
	blocks      map[vec.Vec3]block.State
	inventories map[vec.Vec3]*item.Inventory
	minY, maxY  int
	scattered   []scatterCall
	broken      []vec.Vec3
	rejects     map[vec.Vec3]bool
	writes      int
}

func newFakeWorld(fill block.BlockID) *fakeWorld {
	return &fakeWorld{
		dim:         "overworld",
		fill:        block.Default(fill),
		blocks:      make(map[vec.Vec3]block.State),
		inventories: make(map[vec.Vec3]*item.Inventory),
		minY:        -64,
		maxY:        320,
	}
}

func (w *fakeWorld) DimensionID() string { return w.dim }
func (w *fakeWorld) Mutable() bool       { return !w.readOnly }

func (w *fakeWorld) GetState(pos vec.Vec3) block.State {
	if st, ok := w.blocks[pos]; ok {
		return st
	}
	return w.fill
}

func (w *fakeWorld) SetState(pos vec.Vec3, st block.State, _ SetFlags) bool {
	if pos.Y < w.minY || pos.Y >= w.maxY || w.rejects[pos] {
		return false
	}
	w.writes++
	w.blocks[pos] = st
	if slots := block.PropertiesOf(st.ID).Container; slots > 0 {
		if _, ok := w.inventories[pos]; !ok {
			w.inventories[pos] = item.NewInventory(slots)
		}
	} else {
		delete(w.inventories, pos)
	}
	return true
}

func (w *fakeWorld) BreakWithDrops(pos vec.Vec3, f Frame) bool {
	drops := w.ComputeDrops(pos, w.GetState(pos), f)
	if !w.SetState(pos, block.Air, FlagsDefault) {
		return false
	}
	w.broken = append(w.broken, pos)
	if len(drops) > 0 {
		w.Scatter(pos, drops)
	}
	return true
}

func (w *fakeWorld) ComputeDrops(_ vec.Vec3, st block.State, f Frame) []item.Stack {
	behavior, ok := block.Get(st.ID)
	if !ok {
		return nil
	}
	return behavior.Drops(st, f.Tool)
}

func (w *fakeWorld) RemoveBlockEntity(pos vec.Vec3) {
	delete(w.inventories, pos)
}

func (w *fakeWorld) Scatter(pos vec.Vec3, stacks []item.Stack) {
	w.scattered = append(w.scattered, scatterCall{pos: pos, stacks: stacks})
}

func (w *fakeWorld) ContainerInventory(pos vec.Vec3) *item.Inventory {
	return w.inventories[pos]
}

// fillBox заливает коробку [lo, hi] состоянием
func (w *fakeWorld) fillBox(lo, hi vec.Vec3, st block.State) {
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				w.blocks[vec.Vec3{X: x, Y: y, Z: z}] = st
			}
		}
	}
}

func testFrame(creative bool) Frame {
	return Frame{
		Actor:     uuid.MustParse("6f1c1b8e-8c2a-4d7e-9a51-0c6f3d2b7a10"),
		Origin:    vec.Vec3{X: 0, Y: 64, Z: 0},
		Facing:    vec.North,
		Creative:  creative,
		Dimension: "overworld",
	}
}
