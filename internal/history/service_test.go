package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-edit/internal/storage"
	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/voxel"
	"github.com/annel0/voxel-edit/internal/world"
	"github.com/annel0/voxel-edit/internal/world/block"
	_ "github.com/annel0/voxel-edit/internal/world/block/implementations"
)

var actor = uuid.MustParse("9d4e6c1a-2b7f-4f3e-a1c8-5e0d7b2a9f61")

func stoneWorld(t *testing.T, dimension string) *world.World {
	t.Helper()
	w := world.New(world.Options{Dimension: dimension, MinY: 0, MaxY: 128})
	require.NoError(t, w.Fill(vec.Vec3{X: -8, Y: 56, Z: -12}, vec.Vec3{X: 8, Y: 72, Z: 4}, block.Default(block.StoneBlockID)))
	return w
}

func frame(dimension string) voxel.Frame {
	return voxel.Frame{
		Actor:     actor,
		Origin:    vec.Vec3{X: 0, Y: 64, Z: 0},
		Facing:    vec.North,
		Creative:  true,
		Dimension: dimension,
	}
}

func hollow(t *testing.T, w voxel.WorldAdapter, ts time.Time) *voxel.Action {
	t.Helper()
	exec := voxel.NewExecutor(voxel.WithClock(func() time.Time { return ts }))
	a, err := exec.Hollow(context.Background(), w, frame(w.DimensionID()), voxel.HollowRequest{W: 3, H: 3, D: 3})
	require.NoError(t, err)
	require.Equal(t, 27, a.Changed())
	return a
}

type recordingObserver struct {
	replays       map[string][]int
	persistErrors int
}

func (o *recordingObserver) ObserveReplay(direction string, restored int) {
	if o.replays == nil {
		o.replays = map[string][]int{}
	}
	o.replays[direction] = append(o.replays[direction], restored)
}

func (o *recordingObserver) ObservePersistError() { o.persistErrors++ }

func TestUndoRedoRoundTrip(t *testing.T) {
	ctx := context.Background()
	w := stoneWorld(t, "overworld")
	obs := &recordingObserver{}
	svc := NewService(WithObserver(obs))

	a := hollow(t, w, time.Now())
	require.True(t, svc.Record(ctx, actor, a))

	restored := svc.Undo(ctx, actor, w, 1)
	assert.Equal(t, 27, restored)
	for _, s := range a.Snapshots() {
		assert.Equal(t, s.Before, w.GetState(s.Pos))
	}
	undo, redo := svc.Sizes(ctx, actor)
	assert.Equal(t, 0, undo)
	assert.Equal(t, 1, redo)

	assert.Equal(t, 27, svc.Redo(ctx, actor, w, 1))
	for _, s := range a.Snapshots() {
		assert.Equal(t, s.After, w.GetState(s.Pos))
	}
	undo, redo = svc.Sizes(ctx, actor)
	assert.Equal(t, 1, undo)
	assert.Equal(t, 0, redo)

	assert.Equal(t, []int{27}, obs.replays[DirUndo])
	assert.Equal(t, []int{27}, obs.replays[DirRedo])
}

func TestDimensionAffinity(t *testing.T) {
	ctx := context.Background()
	overworld := stoneWorld(t, "overworld")
	nether := stoneWorld(t, "nether")
	svc := NewService()

	a := hollow(t, overworld, time.Now())
	svc.Record(ctx, actor, a)

	assert.Zero(t, svc.Undo(ctx, actor, nether, 1))
	undo, redo := svc.Sizes(ctx, actor)
	assert.Equal(t, 1, undo)
	assert.Equal(t, 0, redo)
	for _, s := range a.Snapshots() {
		assert.True(t, overworld.GetState(s.Pos).IsAir(), "мир правки не изменился")
		assert.Equal(t, block.StoneBlockID, nether.GetState(s.Pos).ID, "чужое измерение не тронуто")
	}
}

func TestRecordIgnoresEmptyAndClearsRedo(t *testing.T) {
	ctx := context.Background()
	w := stoneWorld(t, "overworld")
	svc := NewService()

	assert.False(t, svc.Record(ctx, actor, nil))
	assert.False(t, svc.Record(ctx, actor, voxel.Assemble(voxel.ActionMeta{Dimension: "overworld"}, nil)))
	assert.False(t, svc.HasUndo(ctx, actor))

	svc.Record(ctx, actor, hollow(t, w, time.Now()))
	svc.Undo(ctx, actor, w, 1)
	_, redo := svc.Sizes(ctx, actor)
	require.Equal(t, 1, redo)

	other := voxel.Assemble(voxel.ActionMeta{Dimension: "overworld"}, []voxel.Snapshot{
		{Pos: vec.Vec3{X: 40, Y: 64}, Before: block.Air, After: block.Default(block.DirtBlockID)},
	})
	svc.Record(ctx, actor, other)
	_, redo = svc.Sizes(ctx, actor)
	assert.Zero(t, redo)
}

func TestBoundedHistory(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	for i := 1; i <= MaxActionsPerActor+3; i++ {
		svc.Record(ctx, actor, voxel.Assemble(voxel.ActionMeta{Dimension: "overworld", TimestampMs: int64(i)}, []voxel.Snapshot{
			{Pos: vec.Vec3{X: i}, Before: block.Air, After: block.Default(block.StoneBlockID)},
		}))
	}
	undo, _ := svc.Sizes(ctx, actor)
	assert.Equal(t, MaxActionsPerActor, undo)

	listing := svc.List(ctx, actor, MaxHistoryLines)
	require.Len(t, listing.Entries, MaxActionsPerActor)
	assert.Equal(t, int64(MaxActionsPerActor+3), listing.Entries[0].Time.UnixMilli())
	assert.Equal(t, int64(4), listing.Entries[MaxActionsPerActor-1].Time.UnixMilli())
}

func TestBatchStopsAtFirstZero(t *testing.T) {
	ctx := context.Background()
	overworld := stoneWorld(t, "overworld")
	nether := stoneWorld(t, "nether")
	svc := NewService()

	svc.Record(ctx, actor, hollow(t, nether, time.Now()))
	svc.Record(ctx, actor, voxel.Assemble(voxel.ActionMeta{Dimension: "overworld"}, []voxel.Snapshot{
		{Pos: vec.Vec3{X: 0, Y: 100}, Before: block.Air, After: block.Default(block.GlassBlockID)},
	}))
	overworld.SetState(vec.Vec3{X: 0, Y: 100}, block.Default(block.GlassBlockID), voxel.FlagsDefault)

	// Первое действие откатывается, второе из другого измерения останавливает серию
	assert.Equal(t, 1, svc.Undo(ctx, actor, overworld, 5))
	undo, redo := svc.Sizes(ctx, actor)
	assert.Equal(t, 1, undo)
	assert.Equal(t, 1, redo)
	assert.True(t, overworld.GetState(vec.Vec3{X: 0, Y: 100}).IsAir())
}

func TestReplayIntoReadOnlyWorld(t *testing.T) {
	ctx := context.Background()
	w := stoneWorld(t, "overworld")
	svc := NewService()
	svc.Record(ctx, actor, hollow(t, w, time.Now()))

	ro := world.New(world.Options{Dimension: "overworld", ReadOnly: true})
	assert.Zero(t, svc.UndoOne(ctx, actor, ro))
	assert.True(t, svc.HasUndo(ctx, actor))
}

func TestListRendering(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	empty := svc.List(ctx, actor, DefaultListCount)
	assert.Equal(t, []string{"Истории нет"}, empty.Lines())

	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	svc.Record(ctx, actor, voxel.Assemble(voxel.ActionMeta{
		Dimension: "overworld", TimestampMs: ts.UnixMilli(),
		InnerW: 3, InnerH: 4, InnerD: 5, Loot: true, LootItemCount: 3,
	}, []voxel.Snapshot{{Pos: vec.Vec3{}, Before: block.Default(block.StoneBlockID), After: block.Air}}))
	svc.Record(ctx, actor, voxel.Assemble(voxel.ActionMeta{
		Dimension: "overworld", TimestampMs: ts.Add(time.Minute).UnixMilli(),
		InnerW: 1, InnerH: 1, InnerD: 1, ShellMeta: "glass", Force: true,
	}, []voxel.Snapshot{{Pos: vec.Vec3{X: 1}, Before: block.Air, After: block.Default(block.GlassBlockID)}}))

	listing := svc.List(ctx, actor, 1)
	assert.Equal(t, 2, listing.Total)
	assert.Equal(t, []string{
		"История (новые сверху) [1/2]",
		"#1 2026-03-01 12:31:00 dim=overworld inner=1x1x1 shell=glass force=true loot=false changed=1",
	}, listing.Lines())

	lines := svc.List(ctx, actor, 50).Lines()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "#2 2026-03-01 12:30:00 dim=overworld inner=3x4x5 shell=- force=false loot=true"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileHistoryStore(t.TempDir())
	require.NoError(t, err)
	w := stoneWorld(t, "overworld")

	svc := NewService(WithStore(store))
	first := hollow(t, w, time.UnixMilli(1000))
	svc.Record(ctx, actor, first)
	svc.Record(ctx, actor, voxel.Assemble(voxel.ActionMeta{Dimension: "overworld", TimestampMs: 2000}, []voxel.Snapshot{
		{Pos: vec.Vec3{X: 0, Y: 90}, Before: block.Air, After: block.Default(block.ChestBlockID)},
	}))
	w.SetState(vec.Vec3{X: 0, Y: 90}, block.Default(block.ChestBlockID), voxel.FlagsDefault)
	require.Equal(t, 1, svc.Undo(ctx, actor, w, 1))

	// Новый процесс: история подгружается лениво из того же хранилища
	restarted := NewService(WithStore(store))
	undo, redo := restarted.Sizes(ctx, actor)
	assert.Equal(t, 1, undo)
	assert.Equal(t, 1, redo)

	assert.Equal(t, 27, restarted.Undo(ctx, actor, w, 1))
	for _, s := range first.Snapshots() {
		assert.Equal(t, block.StoneBlockID, w.GetState(s.Pos).ID)
	}
	assert.Equal(t, 27, restarted.Redo(ctx, actor, w, 1))
	assert.Equal(t, 1, restarted.Redo(ctx, actor, w, 1))
	assert.Equal(t, block.ChestBlockID, w.GetState(vec.Vec3{X: 0, Y: 90}).ID)
	require.NoError(t, restarted.Close(ctx))
}

func TestPersistenceCapsAtMaxActions(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryHistoryStore()
	svc := NewService(WithStore(store), WithMaxActions(3))
	for i := 1; i <= 5; i++ {
		svc.Record(ctx, actor, voxel.Assemble(voxel.ActionMeta{Dimension: "overworld", TimestampMs: int64(i)}, []voxel.Snapshot{
			{Pos: vec.Vec3{X: i}, Before: block.Air, After: block.Default(block.SandBlockID)},
		}))
	}

	rec, err := store.Load(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 4, 3}, stamps(rec.Undo))
}

type failingStore struct {
	storage.HistoryStore
}

func (failingStore) Load(ctx context.Context, actor uuid.UUID) (*storage.Record, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Save(ctx context.Context, rec *storage.Record) error {
	return errors.New("disk on fire")
}

func (failingStore) Close() error { return nil }

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	w := stoneWorld(t, "overworld")
	obs := &recordingObserver{}
	svc := NewService(WithStore(failingStore{}), WithObserver(obs))

	assert.True(t, svc.Record(ctx, actor, hollow(t, w, time.Now())))
	assert.True(t, svc.HasUndo(ctx, actor))
	assert.Equal(t, 27, svc.Undo(ctx, actor, w, 1))
	assert.Equal(t, 3, obs.persistErrors, "загрузка, запись и undo")
	assert.Error(t, svc.Flush(ctx))
}
