package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/folio/pkg/math3d"
)

func TestFrustumBoundsSymmetric(t *testing.T) {
	states := []State{
		DefaultState(),
		{FrustumSize: MinFrustumSize},
		{OffsetX: 3, OffsetY: -7, FrustumSize: 12.3},
	}
	aspects := []float64{0.25, 1, 16.0 / 9.0, 3.7}

	for _, s := range states {
		for _, a := range aspects {
			b := FrustumBounds(s, a)
			assert.Equal(t, b.Right, -b.Left, "state %+v aspect %v", s, a)
			assert.Equal(t, b.Top, -b.Bottom, "state %+v aspect %v", s, a)
			assert.InDelta(t, s.FrustumSize*a, b.Right-b.Left, 1e-12)
			assert.InDelta(t, s.FrustumSize, b.Top-b.Bottom, 1e-12)
		}
	}
}

func TestZoomInClamps(t *testing.T) {
	s := State{FrustumSize: MinFrustumSize}
	s = ApplyKey(s, KeyZoomIn, DefaultSteps())
	assert.Equal(t, MinFrustumSize, s.FrustumSize)

	s = DefaultState()
	for range 100 {
		s = ApplyKey(s, KeyZoomIn, DefaultSteps())
		require.GreaterOrEqual(t, s.FrustumSize, MinFrustumSize)
	}
	assert.Equal(t, MinFrustumSize, s.FrustumSize)
}

func TestZoomOutAdditive(t *testing.T) {
	s := ApplyKey(DefaultState(), KeyZoomOut, Steps{Zoom: 0.3, Move: 0.1})
	assert.InDelta(t, 5.3, s.FrustumSize, 1e-12)

	for range 1000 {
		s = ApplyKey(s, KeyZoomOut, DefaultSteps())
	}
	assert.InDelta(t, 305.3, s.FrustumSize, 1e-9)
}

func TestArrowKeysOffset(t *testing.T) {
	steps := Steps{Zoom: 0.3, Move: 0.1}
	s := State{OffsetX: -0.5, OffsetY: 0.8, FixedZ: 0.4, FrustumSize: 5}

	s = ApplyKey(s, KeyRight, steps)
	assert.InDelta(t, -0.4, s.OffsetX, 1e-12)

	s = ApplyKey(s, KeyLeft, steps)
	s = ApplyKey(s, KeyLeft, steps)
	assert.InDelta(t, -0.6, s.OffsetX, 1e-12)

	s = ApplyKey(s, KeyUp, steps)
	assert.InDelta(t, 0.9, s.OffsetY, 1e-12)
	s = ApplyKey(s, KeyDown, steps)
	s = ApplyKey(s, KeyDown, steps)
	assert.InDelta(t, 0.7, s.OffsetY, 1e-12)

	assert.Equal(t, 0.4, s.FixedZ)
	assert.Equal(t, 5.0, s.FrustumSize)
}

func TestUnknownKeyIsNoop(t *testing.T) {
	weird := State{OffsetX: math.Copysign(0, -1), OffsetY: math.NaN(), FixedZ: 0.1 + 0.2, FrustumSize: 5}

	for _, k := range []Key{"a", "Z", "Y", "up", "", "Escape"} {
		assert.False(t, Recognized(k), "key %q", k)

		got := ApplyKey(weird, k, DefaultSteps())
		assert.Equal(t, math.Float64bits(weird.OffsetX), math.Float64bits(got.OffsetX), "key %q", k)
		assert.Equal(t, math.Float64bits(weird.OffsetY), math.Float64bits(got.OffsetY), "key %q", k)
		assert.Equal(t, math.Float64bits(weird.FixedZ), math.Float64bits(got.FixedZ), "key %q", k)
		assert.Equal(t, math.Float64bits(weird.FrustumSize), math.Float64bits(got.FrustumSize), "key %q", k)
	}
}

func TestRecognizedKeys(t *testing.T) {
	for _, k := range Keys {
		assert.True(t, Recognized(k), "key %q", k)
	}
}

func TestLabelText(t *testing.T) {
	tests := []struct {
		offset float64
		want   string
	}{
		{-0.5, "X: -0.50"},
		{0, "X: 0.00"},
		{1.234, "X: 1.23"},
		{-0.4 + 1e-15, "X: -0.40"},
		{12, "X: 12.00"},
		{0.125, "X: 0.13"},
		{-0.625, "X: -0.63"},
		{1.005, "X: 1.00"},
		{-0.001, "X: -0.00"},
		{math.Copysign(0, -1), "X: 0.00"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, LabelText(tc.offset))
	}
}

func TestLabelTextAfterKeys(t *testing.T) {
	s := DefaultState()
	steps := Steps{Zoom: 0.3, Move: 0.125}
	for range 5 {
		s = ApplyKey(s, KeyRight, steps)
	}
	assert.Equal(t, 0.125, s.OffsetX)
	assert.Equal(t, "X: 0.13", LabelText(s.OffsetX))
}

func TestCameraPoseLooksAtItself(t *testing.T) {
	p := CameraPose(DefaultState())
	assert.Equal(t, math3d.V3(-0.5, 0.8, 0.4), p.Position)
	assert.Equal(t, p.Position, p.LookAt)
}
