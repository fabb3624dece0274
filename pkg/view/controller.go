package view

// Controller owns the view state for one viewport. It is not safe for
// concurrent use; the event loop that feeds it keys owns it.
type Controller struct {
	state  State
	steps  Steps
	aspect float64
}

// NewController creates a controller starting at s.
func NewController(s State, steps Steps, aspect float64) *Controller {
	return &Controller{state: s, steps: steps, aspect: aspect}
}

// HandleKey applies k and reports whether it was a view key.
func (c *Controller) HandleKey(k Key) bool {
	if !Recognized(k) {
		return false
	}
	c.state = ApplyKey(c.state, k, c.steps)
	return true
}

// Resize records a new viewport aspect ratio. The state is untouched.
func (c *Controller) Resize(aspect float64) {
	c.aspect = aspect
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Aspect returns the current viewport aspect ratio.
func (c *Controller) Aspect() float64 { return c.aspect }

// Bounds returns the frustum bounds for the current state and aspect.
func (c *Controller) Bounds() Bounds {
	return FrustumBounds(c.state, c.aspect)
}

// Pose returns the camera pose for the current state.
func (c *Controller) Pose() Pose {
	return CameraPose(c.state)
}

// Label returns the label text for the current state.
func (c *Controller) Label() string {
	return LabelText(c.state.OffsetX)
}
