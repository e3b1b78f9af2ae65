package stealth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathEndpoints(t *testing.T) {
	m := NewMouse()
	path := m.Path(10, 20, 400, 600)

	require.GreaterOrEqual(t, len(path), 9)
	assert.InDelta(t, 10, path[0].X, 0.001)
	assert.InDelta(t, 20, path[0].Y, 0.001)
	assert.InDelta(t, 400, path[len(path)-1].X, 0.001)
	assert.InDelta(t, 600, path[len(path)-1].Y, 0.001)
}

func TestPathStepCountScalesWithDistance(t *testing.T) {
	m := NewMouse()

	short := m.Path(0, 0, 5, 5)
	assert.Len(t, short, 9) // floor of 8 steps

	long := m.Path(0, 0, 5000, 5000)
	assert.Len(t, long, 61) // cap of 60 steps
}

func TestPathStaysNearStraightLine(t *testing.T) {
	m := NewMouse()
	path := m.Path(0, 0, 1000, 0)

	// Control points spread at most a quarter of the distance off-axis.
	for _, p := range path {
		assert.LessOrEqual(t, math.Abs(p.Y), 250.0)
		assert.GreaterOrEqual(t, p.X, -250.0)
		assert.LessOrEqual(t, p.X, 1250.0)
	}
}
