package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-edit/internal/vec"
	"github.com/annel0/voxel-edit/internal/voxel"
	"github.com/annel0/voxel-edit/internal/world/block"
	_ "github.com/annel0/voxel-edit/internal/world/block/implementations"
)

var testActor = uuid.MustParse("3b8f2d6a-91c4-4e0b-8a77-5d2e1f9c0a34")

func sampleAction(ts int64) *voxel.Action {
	chest := block.Default(block.ChestBlockID).With("facing", "south")
	return voxel.Assemble(voxel.ActionMeta{
		Dimension:     "overworld",
		TimestampMs:   ts,
		InnerW:        3,
		InnerH:        2,
		InnerD:        4,
		ShellMeta:     "glass",
		Force:         true,
		Loot:          true,
		LootItemCount: 17,
	}, []voxel.Snapshot{
		{Pos: vec.Vec3{X: 1, Y: 63, Z: -1}, Before: block.Default(block.StoneBlockID), After: block.Default(block.GlassBlockID)},
		{Pos: vec.Vec3{X: -4, Y: 64, Z: -2}, Before: chest, After: block.Air},
	})
}

func sampleRecord() *Record {
	return &Record{
		Actor: testActor,
		Undo:  []*voxel.Action{sampleAction(3000), sampleAction(2000)},
		Redo:  []*voxel.Action{sampleAction(1000)},
	}
}

func assertSameAction(t *testing.T, want, got *voxel.Action) {
	t.Helper()
	assert.Equal(t, want.ActionMeta, got.ActionMeta)
	assert.Equal(t, want.Snapshots(), got.Snapshots())
	assert.Equal(t, want.Changed(), got.Changed())
}

func assertSameRecord(t *testing.T, want, got *Record) {
	t.Helper()
	assert.Equal(t, want.Actor, got.Actor)
	require.Len(t, got.Undo, len(want.Undo))
	require.Len(t, got.Redo, len(want.Redo))
	for i := range want.Undo {
		assertSameAction(t, want.Undo[i], got.Undo[i])
	}
	for i := range want.Redo {
		assertSameAction(t, want.Redo[i], got.Redo[i])
	}
}

func TestCodecRoundTrip(t *testing.T) {
	rec := sampleRecord()
	data, err := EncodeRecord(rec)
	require.NoError(t, err)

	got, err := DecodeRecord(data)
	require.NoError(t, err)
	assertSameRecord(t, rec, got)
}

func TestCodecDropsUndecodableSnapshots(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"actor": "3b8f2d6a-91c4-4e0b-8a77-5d2e1f9c0a34",
		"future_field": {"nested": true},
		"undo": [{
			"dimension": "overworld", "timestamp_ms": 5, "inner_w": 1, "inner_h": 1, "inner_d": 1,
			"force": false, "loot": false, "loot_item_count": 9, "changed": 3,
			"snapshots": [
				{"x": 0, "y": 1, "z": 0, "before": "stone", "after": "air"},
				{"x": 0, "y": 2, "z": 0, "before": "unobtainium", "after": "air"},
				{"x": 0, "y": 3, "z": 0, "before": "dirt", "after": "chest[facing=west"}
			]
		}],
		"redo": []
	}`)

	rec, err := DecodeRecord(data)
	require.NoError(t, err)
	require.Len(t, rec.Undo, 1)

	a := rec.Undo[0]
	assert.Equal(t, 1, a.Changed())
	assert.Equal(t, 0, a.LootItemCount)
	assert.Equal(t, "overworld", a.Dimension)
	assert.Empty(t, rec.Redo)
}

func TestCodecReadsNewerVersion(t *testing.T) {
	data := []byte(`{
		"version": 99,
		"actor": "3b8f2d6a-91c4-4e0b-8a77-5d2e1f9c0a34",
		"checksum": "abc",
		"undo": [{
			"dimension": "overworld", "timestamp_ms": 1700000000000, "inner_w": 1, "inner_h": 1, "inner_d": 1,
			"compression": "none",
			"snapshots": [{"x": 1, "y": 2, "z": 3, "before": "stone", "after": "air", "light": 15}]
		}]
	}`)
	rec, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, "3b8f2d6a-91c4-4e0b-8a77-5d2e1f9c0a34", rec.Actor.String())
	require.Len(t, rec.Undo, 1)
	assert.Equal(t, 1, rec.Undo[0].Changed())
	assert.Empty(t, rec.Redo)
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, err := DecodeRecord([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeRecord([]byte(`{"version": 1, "actor": "nobody"}`))
	assert.Error(t, err)
}

// exerciseStore общий сценарий для всех реализаций HistoryStore
func exerciseStore(t *testing.T, store HistoryStore) {
	ctx := context.Background()

	_, err := store.Load(ctx, testActor)
	assert.ErrorIs(t, err, ErrNotFound)

	rec := sampleRecord()
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Load(ctx, testActor)
	require.NoError(t, err)
	assertSameRecord(t, rec, got)

	// Save полностью заменяет запись
	rec.Redo = nil
	require.NoError(t, store.Save(ctx, rec))
	got, err = store.Load(ctx, testActor)
	require.NoError(t, err)
	assert.Empty(t, got.Redo)

	actors, err := store.Actors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{testActor}, actors)

	require.NoError(t, store.Delete(ctx, testActor))
	_, err = store.Load(ctx, testActor)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, testActor))
}

func TestMemoryHistoryStore(t *testing.T) {
	store := NewMemoryHistoryStore()
	defer store.Close()
	exerciseStore(t, store)
}

func TestFileHistoryStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileHistoryStore(dir)
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), sampleRecord()))
	assert.FileExists(t, filepath.Join(dir, testActor.String()+HistoryFileExt))

	// Посторонние файлы в каталоге не считаются акторами
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	actors, err := store.Actors(context.Background())
	require.NoError(t, err)
	assert.Len(t, actors, 1)
}

func TestFileHistoryStoreCorruptFile(t *testing.T) {
	store, err := NewFileHistoryStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(testActor), []byte("garbage"), 0o644))

	_, err = store.Load(context.Background(), testActor)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBadgerHistoryStore(t *testing.T) {
	store, err := NewBadgerHistoryStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteHistoryStore(t *testing.T) {
	store, err := NewSQLHistoryStore(DialectSQLite, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestRedisHistoryStore(t *testing.T) {
	addr := os.Getenv("VOXEL_TEST_REDIS")
	if addr == "" {
		t.Skip("VOXEL_TEST_REDIS не задан")
	}
	store, err := NewRedisHistoryStore(&RedisConfig{Addr: addr, KeyPrefix: "voxel:test:" + uuid.NewString() + ":"})
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestMariaHistoryStore(t *testing.T) {
	dsn := os.Getenv("VOXEL_TEST_MARIA_DSN")
	if dsn == "" {
		t.Skip("VOXEL_TEST_MARIA_DSN не задан")
	}
	store, err := NewSQLHistoryStore(DialectMaria, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Delete(context.Background(), testActor))
	exerciseStore(t, store)
}

func TestMongoHistoryStore(t *testing.T) {
	uri := os.Getenv("VOXEL_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("VOXEL_TEST_MONGO_URI не задан")
	}
	store, err := NewMongoHistoryStore(MongoConfig{URI: uri, Database: "voxel_test", Collection: "history_" + uuid.NewString()})
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Options{Backend: "floppy"})
	assert.Error(t, err)

	store, err := Open(Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryHistoryStore{}, store)
}
