package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionRotateCW(t *testing.T) {
	assert.Equal(t, East, North.RotateCW())
	assert.Equal(t, South, East.RotateCW())
	assert.Equal(t, West, South.RotateCW())
	assert.Equal(t, North, West.RotateCW())
}

func TestDirectionVectors(t *testing.T) {
	assert.Equal(t, Vec3{Z: -1}, North.Vec())
	assert.Equal(t, Vec3{X: 1}, East.Vec())
	assert.Equal(t, Vec3{Z: 1}, South.Vec())
	assert.Equal(t, Vec3{X: -1}, West.Vec())

	for _, d := range []Direction{North, East, South, West} {
		assert.Equal(t, Vec3{}, d.Vec().Add(d.Opposite().Vec()), "противоположные направления должны гаситься")
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("S")
	assert.NoError(t, err)
	assert.Equal(t, South, d)

	_, err = ParseDirection("up")
	assert.Error(t, err)

	var decoded Direction
	assert.NoError(t, decoded.UnmarshalText([]byte("west")))
	assert.Equal(t, West, decoded)
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	assert.Equal(t, Vec3{X: 3, Y: 6, Z: 9}, a.Scale(3))
	assert.Equal(t, Vec3{}, a.Sub(a))
	assert.Equal(t, Vec3{X: 1, Y: 5, Z: 3}, a.Above(3))
	assert.Equal(t, 14, a.DistanceSq(Vec3{}))
}
