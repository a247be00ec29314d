package voxel

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/world/block"
	"github.com/annel0/voxel-edit/internal/world/item"
)

func newTestExecutor() *Executor {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewExecutor(WithClock(func() time.Time { return fixed }))
}

func blockPtr(id block.BlockID) *block.BlockID { return &id }

func TestHollowMinimal(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	action, err := newTestExecutor().Hollow(context.Background(), w, testFrame(true), HollowRequest{W: 3, H: 3, D: 3})
	require.NoError(t, err)

	assert.Equal(t, 27, action.Changed())
	assert.Len(t, action.Snapshots(), 27)
	assert.Equal(t, "overworld", action.Dimension)
	assert.Equal(t, "", action.ShellMeta)
	assert.Equal(t, 3, action.InnerW)

	for _, s := range action.Snapshots() {
		assert.True(t, s.Pos.X >= -1 && s.Pos.X <= 1 && s.Pos.Y >= 64 && s.Pos.Y <= 66 && s.Pos.Z >= -4 && s.Pos.Z <= -2,
			"снимок вне внутренней части: %v", s.Pos)
		assert.Equal(t, block.Default(block.StoneBlockID), s.Before)
		assert.Equal(t, block.Air, s.After)
		assert.Equal(t, s.After, w.GetState(s.Pos), "мир должен совпадать с after")
	}
	assert.Equal(t, block.StoneBlockID, w.GetState(vec.Vec3{X: -2, Y: 63, Z: -1}).ID, "оболочка не трогается")
	assert.Empty(t, w.broken, "в креативе блоки не ломаются с дропом")
}

func TestRoomThreeMaterials(t *testing.T) {
	w := newFakeWorld(block.AirBlockID)
	action, err := newTestExecutor().Room(context.Background(), w, testFrame(true), RoomRequest{
		W: 3, H: 3, D: 3,
		Walls: block.StoneBlockID, Floor: block.OakPlanksBlockID, Ceiling: block.OakPlanksBlockID,
	})
	require.NoError(t, err)
	assert.Equal(t, 98, action.Changed())
	assert.Equal(t, "room:walls=stone,floor=oak_planks,ceiling=oak_planks", action.ShellMeta)

	counts := map[int]map[block.BlockID]int{}
	for _, s := range action.Snapshots() {
		if counts[s.Pos.Y] == nil {
			counts[s.Pos.Y] = map[block.BlockID]int{}
		}
		counts[s.Pos.Y][s.After.ID]++
	}
	assert.Equal(t, 25, counts[63][block.OakPlanksBlockID])
	assert.Equal(t, 25, counts[67][block.OakPlanksBlockID])

	walls := 0
	for y := 64; y <= 66; y++ {
		walls += counts[y][block.StoneBlockID]
	}
	assert.Equal(t, 48, walls)
}

func TestRoomRejectsAirFace(t *testing.T) {
	w := newFakeWorld(block.AirBlockID)
	_, err := newTestExecutor().Room(context.Background(), w, testFrame(true), RoomRequest{
		W: 3, H: 3, D: 3, Walls: block.StoneBlockID, Floor: block.AirBlockID, Ceiling: block.StoneBlockID,
	})
	assert.ErrorIs(t, err, ErrInvalidMaterial)
	assert.Zero(t, w.writes)
}

func TestReplaceWithChanceIsDeterministic(t *testing.T) {
	run := func() []Snapshot {
		w := newFakeWorld(block.AirBlockID)
		g := NewBoxGeometry(testFrame(true), 5, 5, 5)
		for c := range g.Cells() {
			w.blocks[c.Pos] = block.Default(block.StoneBlockID)
		}
		action, err := newTestExecutor().Replace(context.Background(), w, testFrame(true), ReplaceRequest{
			W: 5, H: 5, D: 5, From: block.StoneBlockID, To: block.AndesiteBlockID, Chance: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, "replace:from=stone,to=andesite,mode=all,chance=50", action.ShellMeta)
		return action.Snapshots()
	}

	first := run()
	assert.Equal(t, first, run(), "два запуска дают одинаковые снимки")

	g := NewBoxGeometry(testFrame(true), 5, 5, 5)
	expected := map[vec.Vec3]bool{}
	for c := range g.Cells() {
		if ChanceRoll(c.Local.X, c.Local.Y, c.Local.Z) < 50 {
			expected[c.Pos] = true
		}
	}
	got := map[vec.Vec3]bool{}
	for _, s := range first {
		got[s.Pos] = true
		assert.Equal(t, block.AndesiteBlockID, s.After.ID)
	}
	assert.Equal(t, expected, got)
}

func TestReplaceModesAndClamp(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	ex := newTestExecutor()

	shell, err := ex.Replace(context.Background(), w, testFrame(true), ReplaceRequest{
		W: 3, H: 3, D: 3, From: block.StoneBlockID, To: block.DirtBlockID, Mode: ReplaceShellOnly, Chance: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 26, shell.Changed())

	inside, err := ex.Replace(context.Background(), w, testFrame(true), ReplaceRequest{
		W: 3, H: 3, D: 3, From: block.StoneBlockID, To: block.DirtBlockID, Mode: ReplaceInsideOnly, Chance: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inside.Changed())
	assert.Contains(t, inside.ShellMeta, "chance=100")

	again, err := ex.Replace(context.Background(), w, testFrame(true), ReplaceRequest{
		W: 3, H: 3, D: 3, From: block.StoneBlockID, To: block.DirtBlockID, Chance: 100,
	})
	require.NoError(t, err)
	assert.True(t, again.IsEmpty(), "всё уже заменено")
}

func TestProtectionAndBedrock(t *testing.T) {
	newWorld := func() *fakeWorld {
		w := newFakeWorld(block.StoneBlockID)
		w.blocks[vec.Vec3{X: 0, Y: 64, Z: -2}] = block.Default(block.ChestBlockID)
		w.blocks[vec.Vec3{X: 1, Y: 64, Z: -2}] = block.Default(block.SpawnerBlockID)
		w.blocks[vec.Vec3{X: -1, Y: 64, Z: -2}] = block.Default(block.BedrockBlockID)
		return w
	}
	req := HollowRequest{W: 3, H: 3, D: 3}

	w := newWorld()
	action, err := newTestExecutor().Hollow(context.Background(), w, testFrame(true), req)
	require.NoError(t, err)
	assert.Equal(t, 24, action.Changed())
	assert.Equal(t, block.ChestBlockID, w.GetState(vec.Vec3{X: 0, Y: 64, Z: -2}).ID)
	assert.Equal(t, block.SpawnerBlockID, w.GetState(vec.Vec3{X: 1, Y: 64, Z: -2}).ID)

	w = newWorld()
	req.Force = true
	action, err = newTestExecutor().Hollow(context.Background(), w, testFrame(true), req)
	require.NoError(t, err)
	assert.Equal(t, 26, action.Changed(), "force снимает защиту, но не с бедрока")
	assert.Equal(t, block.BedrockBlockID, w.GetState(vec.Vec3{X: -1, Y: 64, Z: -2}).ID)
	assert.True(t, w.GetState(vec.Vec3{X: 0, Y: 64, Z: -2}).IsAir())
}

func TestShellMaterialAndElision(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	action, err := newTestExecutor().Hollow(context.Background(), w, testFrame(true), HollowRequest{
		W: 3, H: 3, D: 3, Shell: blockPtr(block.StoneBlockID),
	})
	require.NoError(t, err)
	assert.Equal(t, 27, action.Changed(), "камень в каменной оболочке не переписывается")
	assert.Equal(t, "stone", action.ShellMeta)

	w = newFakeWorld(block.StoneBlockID)
	action, err = newTestExecutor().Hollow(context.Background(), w, testFrame(true), HollowRequest{
		W: 3, H: 3, D: 3, Shell: blockPtr(block.AirBlockID),
	})
	require.NoError(t, err)
	assert.Equal(t, 27, action.Changed(), "воздушная оболочка означает отсутствие оболочки")
	assert.Equal(t, "", action.ShellMeta)

	w = newFakeWorld(block.StoneBlockID)
	action, err = newTestExecutor().Hollow(context.Background(), w, testFrame(true), HollowRequest{
		W: 3, H: 3, D: 3, Shell: blockPtr(block.GlassBlockID),
	})
	require.NoError(t, err)
	assert.Equal(t, 27+98, action.Changed())
}

func TestRejectedWritesLeaveNoSnapshot(t *testing.T) {
	w := newFakeWorld(block.AirBlockID)
	w.maxY = 67 // потолок y=67 за границей мира

	action, err := newTestExecutor().Room(context.Background(), w, testFrame(true), RoomRequest{
		W: 3, H: 3, D: 3, Walls: block.StoneBlockID, Floor: block.StoneBlockID, Ceiling: block.StoneBlockID,
	})
	require.NoError(t, err)
	assert.Equal(t, 98-25, action.Changed())
	for _, s := range action.Snapshots() {
		assert.Less(t, s.Pos.Y, 67)
	}
}

func TestInvalidInputs(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	ex := newTestExecutor()

	f := testFrame(true)
	f.Actor = uuid.Nil
	_, err := ex.Hollow(context.Background(), w, f, HollowRequest{W: 3, H: 3, D: 3})
	assert.ErrorIs(t, err, ErrInvalidActor)

	_, err = ex.Hollow(context.Background(), w, testFrame(true), HollowRequest{W: 65, H: 3, D: 3})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = ex.Shape(context.Background(), w, testFrame(true), ShapeRequest{Kind: ShapeSphere, Material: block.StoneBlockID})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = ex.Replace(context.Background(), w, testFrame(true), ReplaceRequest{W: 1, H: 1, D: 1, From: 999, To: block.StoneBlockID})
	assert.ErrorIs(t, err, ErrInvalidMaterial)
	assert.Zero(t, w.writes)
}

func TestReadOnlyWorldYieldsEmptyAction(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	w.readOnly = true

	action, err := newTestExecutor().Hollow(context.Background(), w, testFrame(false), HollowRequest{W: 3, H: 3, D: 3, Loot: true})
	require.NoError(t, err)
	assert.True(t, action.IsEmpty())
	assert.Equal(t, UnknownDimension, action.Dimension)
	assert.Zero(t, w.writes)
}

func TestShapeSphere(t *testing.T) {
	w := newFakeWorld(block.AirBlockID)
	action, err := newTestExecutor().Shape(context.Background(), w, testFrame(true), ShapeRequest{
		Kind: ShapeSphere, Params: ShapeParams{Radius: 2}, Material: block.GlassBlockID, Hollow: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "shape:sphere r=2 block=glass hollow=true", action.ShellMeta)
	assert.Equal(t, [3]int{2, 2, 2}, [3]int{action.InnerW, action.InnerH, action.InnerD})
	assert.False(t, action.Loot)

	// r=2: 33 клетки в шаре, 7 внутри радиуса 1
	assert.Equal(t, 26, action.Changed())

	again, err := newTestExecutor().Shape(context.Background(), w, testFrame(true), ShapeRequest{
		Kind: ShapeSphere, Params: ShapeParams{Radius: 2}, Material: block.GlassBlockID, Hollow: true,
	})
	require.NoError(t, err)
	assert.True(t, again.IsEmpty(), "повторная фигура ничего не меняет")
}

func TestSurvivalWithoutLootBreaksWithDrops(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	action, err := newTestExecutor().Hollow(context.Background(), w, testFrame(false), HollowRequest{W: 1, H: 1, D: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, action.Changed())
	assert.Len(t, w.broken, 1)
	require.Len(t, w.scattered, 1)
	assert.Equal(t, "cobblestone", w.scattered[0].stacks[0].Item)
	assert.Zero(t, action.LootItemCount)
}

func TestLootFillsChests(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	f := testFrame(false)
	action, err := newTestExecutor().Hollow(context.Background(), w, f, HollowRequest{W: 3, H: 3, D: 3, Loot: true})
	require.NoError(t, err)

	assert.Equal(t, 27, action.Changed())
	assert.Equal(t, 27, action.LootItemCount)
	assert.Empty(t, w.scattered, "всё помещается в сундуки")

	g := RoomGeometry(f, 3, 3, 3)
	p1, p2 := g.At(0, 1, 2), g.At(1, 1, 2)
	for _, p := range []vec.Vec3{p1, p2} {
		st := w.GetState(p)
		assert.Equal(t, block.ChestBlockID, st.ID)
		facing, _ := st.Property("facing")
		assert.Equal(t, "south", facing, "сундук смотрит на игрока")
	}

	contents := w.ContainerInventory(p1).Contents()
	require.Len(t, contents, 1)
	assert.Equal(t, item.New("cobblestone", 27), contents[0])
	assert.Empty(t, w.ContainerInventory(p2).Contents())

	for _, s := range action.Snapshots() {
		assert.NotEqual(t, block.ChestBlockID, s.After.ID, "сундуки с лутом не попадают в снимки")
	}
}

func TestLootScatterWhenNoChestFits(t *testing.T) {
	w := newFakeWorld(block.StoneBlockID)
	f := testFrame(false)
	action, err := newTestExecutor().Hollow(context.Background(), w, f, HollowRequest{W: 1, H: 2, D: 2, Loot: true})
	require.NoError(t, err)
	assert.Equal(t, 4, action.Changed())
	assert.Equal(t, 4, action.LootItemCount)

	require.Len(t, w.scattered, 1)
	g := RoomGeometry(f, 1, 2, 2)
	assert.Equal(t, g.DropPoint(), w.scattered[0].pos)
	assert.Equal(t, 4, item.TotalCount(w.scattered[0].stacks))
}
