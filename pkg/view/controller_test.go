package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControllerHandleKey(t *testing.T) {
	c := NewController(DefaultState(), DefaultSteps(), 2)

	assert.True(t, c.HandleKey(KeyRight))
	assert.InDelta(t, -0.4, c.State().OffsetX, 1e-12)
	assert.Equal(t, "X: -0.40", c.Label())

	before := c.State()
	assert.False(t, c.HandleKey("q"))
	assert.Equal(t, before, c.State())
}

func TestControllerResizeKeepsState(t *testing.T) {
	c := NewController(DefaultState(), DefaultSteps(), 1)
	before := c.State()

	c.Resize(2.5)

	assert.Equal(t, before, c.State())
	assert.Equal(t, 2.5, c.Aspect())
	assert.Equal(t, Bounds{Left: -6.25, Right: 6.25, Top: 2.5, Bottom: -2.5}, c.Bounds())
}

func TestControllerZoomChangesBounds(t *testing.T) {
	c := NewController(DefaultState(), DefaultSteps(), 1)
	wide := c.Bounds()

	c.HandleKey(KeyZoomIn)
	narrow := c.Bounds()

	assert.Less(t, narrow.Right, wide.Right)
	assert.InDelta(t, 2.35, narrow.Top, 1e-12)
}

func TestControllerPose(t *testing.T) {
	c := NewController(DefaultState(), DefaultSteps(), 1)
	c.HandleKey(KeyUp)

	p := c.Pose()
	assert.InDelta(t, 0.9, p.Position.Y, 1e-12)
	assert.Equal(t, p.Position, p.LookAt)
}
