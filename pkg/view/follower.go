package view

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// settle is how close a spring must be, in position and velocity, before it
// snaps to its target.
const settle = 1e-4

type axis struct {
	pos, vel float64
}

func (a *axis) step(s harmonica.Spring, target float64) {
	a.pos, a.vel = s.Update(a.pos, a.vel, target)
	if math.Abs(a.pos-target) < settle && math.Abs(a.vel) < settle {
		a.pos, a.vel = target, 0
	}
}

// Follower eases a displayed state toward a target with critically damped
// springs. A disabled follower jumps straight to the target.
type Follower struct {
	spring  harmonica.Spring
	enabled bool

	x, y, size axis
	z          float64
}

// NewFollower creates a follower stepping at fps frames per second,
// starting at s.
func NewFollower(s State, fps int, enabled bool) *Follower {
	return &Follower{
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
		enabled: enabled,
		x:       axis{pos: s.OffsetX},
		y:       axis{pos: s.OffsetY},
		size:    axis{pos: s.FrustumSize},
		z:       s.FixedZ,
	}
}

// Step advances one frame toward target and returns the displayed state.
func (f *Follower) Step(target State) State {
	f.z = target.FixedZ
	if !f.enabled {
		f.x = axis{pos: target.OffsetX}
		f.y = axis{pos: target.OffsetY}
		f.size = axis{pos: target.FrustumSize}
		return target
	}
	f.x.step(f.spring, target.OffsetX)
	f.y.step(f.spring, target.OffsetY)
	f.size.step(f.spring, target.FrustumSize)
	return f.Current()
}

// Current returns the displayed state without advancing.
func (f *Follower) Current() State {
	return State{OffsetX: f.x.pos, OffsetY: f.y.pos, FixedZ: f.z, FrustumSize: f.size.pos}
}

// Settled reports whether the displayed state has reached target.
func (f *Follower) Settled(target State) bool {
	return f.Current() == target
}
