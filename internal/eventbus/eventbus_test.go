package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(ctx context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.EventType)
	}
	return out
}

func TestMemoryBusFiltersByType(t *testing.T) {
	bus := NewMemoryBus(16)
	ctx := context.Background()

	var edits, all collector
	_, err := bus.Subscribe(ctx, Filter{Types: []string{TypeVoxelEdit}}, edits.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(ctx, Filter{}, all.handle)
	require.NoError(t, err)

	for _, typ := range []string{TypeVoxelEdit, TypeVoxelUndo, TypeVoxelRedo} {
		ev, err := NewEnvelope(typ, "req-1", VoxelReplayEvent{Actor: "a", Restored: 1})
		require.NoError(t, err)
		require.NoError(t, bus.Publish(ctx, ev))
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, []string{TypeVoxelEdit}, edits.types())
	assert.ElementsMatch(t, []string{TypeVoxelEdit, TypeVoxelUndo, TypeVoxelRedo}, all.types())

	stats := bus.Metrics()
	assert.Equal(t, uint64(3), stats.Published)
	assert.Equal(t, uint64(4), stats.Consumed)
	assert.ErrorIs(t, bus.Publish(ctx, &Envelope{}), ErrClosed)
}

func TestMemoryBusDropsLowPriorityWhenFull(t *testing.T) {
	mb := &memoryBus{subscribers: map[int]subscriber{}, buffer: make(chan *Envelope, 1)}
	ctx := context.Background()

	require.NoError(t, mb.Publish(ctx, &Envelope{Priority: 1}))
	require.NoError(t, mb.Publish(ctx, &Envelope{Priority: 1}))
	assert.Equal(t, uint64(1), mb.Metrics().Dropped)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, mb.Publish(cctx, &Envelope{Priority: 9}), context.DeadlineExceeded)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewMemoryBus(4)
	ctx := context.Background()

	var c collector
	sub, err := bus.Subscribe(ctx, Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, err := NewEnvelope(TypeVoxelEdit, "", VoxelEditEvent{Op: "hollow"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, ev))
	require.NoError(t, bus.Close())
	assert.Empty(t, c.types())
}

func TestPublishPayloadUsesGlobalBus(t *testing.T) {
	Init(nil)
	assert.NoError(t, PublishPayload(context.Background(), TypeVoxelEdit, "", VoxelEditEvent{}))

	bus := NewMemoryBus(4)
	Init(bus)
	defer Init(nil)

	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	payload := VoxelEditEvent{Actor: "9d4e6c1a", Op: "shape_sphere", Dimension: "overworld", Changed: 26}
	require.NoError(t, PublishPayload(context.Background(), TypeVoxelEdit, "corr-7", payload))
	require.NoError(t, bus.Close())

	require.Len(t, c.events, 1)
	ev := c.events[0]
	assert.Equal(t, SourceVoxel, ev.Source)
	assert.Equal(t, "corr-7", ev.CorrelationID)
	assert.NotEmpty(t, ev.ID)

	var got VoxelEditEvent
	require.NoError(t, ev.Decode(&got))
	assert.Equal(t, payload, got)
}

func TestMetricsExporterCollect(t *testing.T) {
	bus := NewMemoryBus(4)
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)

	ev, err := NewEnvelope(TypeVoxelUndo, "", VoxelReplayEvent{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	prev := me.collect(Stats{})
	assert.Equal(t, 1.0, testutil.ToFloat64(me.published))
	me.collect(prev)
	assert.Equal(t, 1.0, testutil.ToFloat64(me.published), "дельта не учитывается повторно")
}
