package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFollowerDisabledJumps(t *testing.T) {
	f := NewFollower(DefaultState(), 30, false)
	target := ApplyKey(DefaultState(), KeyRight, DefaultSteps())

	assert.Equal(t, target, f.Step(target))
	assert.True(t, f.Settled(target))
}

func TestFollowerEasesToTarget(t *testing.T) {
	start := DefaultState()
	f := NewFollower(start, 60, true)
	target := start
	target.OffsetX += 1
	target.FrustumSize = MinFrustumSize

	first := f.Step(target)
	assert.Greater(t, first.OffsetX, start.OffsetX)
	assert.Less(t, first.OffsetX, target.OffsetX)

	prev := first
	for range 600 {
		cur := f.Step(target)
		// Critically damped: no overshoot.
		assert.LessOrEqual(t, cur.OffsetX, target.OffsetX)
		assert.GreaterOrEqual(t, cur.FrustumSize, MinFrustumSize)
		assert.GreaterOrEqual(t, cur.OffsetX, prev.OffsetX)
		prev = cur
	}
	assert.True(t, f.Settled(target))
	assert.Equal(t, target, f.Current())
}
