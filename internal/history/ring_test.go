package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-edit/internal/voxel"
)

func stamp(ts int64) *voxel.Action {
	return voxel.Assemble(voxel.ActionMeta{TimestampMs: ts}, nil)
}

func stamps(actions []*voxel.Action) []int64 {
	out := make([]int64, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.TimestampMs)
	}
	return out
}

func TestRingEvictsBottom(t *testing.T) {
	r := newRing(3)
	for ts := int64(1); ts <= 3; ts++ {
		assert.Nil(t, r.push(stamp(ts)))
	}
	evicted := r.push(stamp(4))
	require.NotNil(t, evicted)
	assert.Equal(t, int64(1), evicted.TimestampMs)
	assert.Equal(t, []int64{4, 3, 2}, stamps(r.newestFirst()))

	a, ok := r.pop()
	require.True(t, ok)
	assert.Equal(t, int64(4), a.TimestampMs)
	r.push(stamp(5))
	r.push(stamp(6))
	assert.Equal(t, []int64{6, 5, 3}, stamps(r.newestFirst()))
	assert.Equal(t, 3, r.len())
}

func TestRingPopEmptyAndClear(t *testing.T) {
	r := newRing(2)
	_, ok := r.pop()
	assert.False(t, ok)

	r.push(stamp(1))
	r.clear()
	assert.Zero(t, r.len())
	assert.Empty(t, r.newestFirst())
}
