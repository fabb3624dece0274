package render

import (
	"math"

	"github.com/taigrr/folio/pkg/math3d"
)

// Projection selects how a Camera maps view space to clip space.
type Projection int

const (
	ProjectionPerspective  Projection = iota // Field-of-view frustum
	ProjectionOrthographic                   // Box bounded by Left/Right/Top/Bottom
)

// OrthoBounds are the side planes of an orthographic frustum in view space.
type OrthoBounds struct {
	Left, Right, Top, Bottom float64
}

// Camera represents a 3D camera with position and orientation.
type Camera struct {
	Position math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis
	Yaw   float64 // Rotation around Y axis
	Roll  float64 // Rotation around Z axis

	Projection  Projection
	FOV         float64     // Vertical field of view in radians (perspective)
	AspectRatio float64     // Width / Height (perspective)
	Ortho       OrthoBounds // Side planes (orthographic)
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCamera creates a perspective camera with default settings.
func NewCamera() *Camera {
	return &Camera{
		Position:      math3d.V3(0, 0, 5),
		FOV:           math.Pi / 3,
		AspectRatio:   16.0 / 9.0,
		Near:          0.1,
		Far:           1000,
		viewDirty:     true,
		projDirty:     true,
		viewProjDirty: true,
	}
}

// NewOrthographicCamera creates a camera with an orthographic projection.
func NewOrthographicCamera(b OrthoBounds, near, far float64) *Camera {
	c := NewCamera()
	c.SetOrthographic(b)
	c.SetClipPlanes(near, far)
	return c
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
	c.viewProjDirty = true
}

// SetRotation sets pitch, yaw and roll in radians.
func (c *Camera) SetRotation(pitch, yaw, roll float64) {
	c.Pitch, c.Yaw, c.Roll = pitch, yaw, roll
	c.viewDirty = true
	c.viewProjDirty = true
}

// SetOrthographic switches to an orthographic projection with the given bounds.
func (c *Camera) SetOrthographic(b OrthoBounds) {
	c.Projection = ProjectionOrthographic
	c.Ortho = b
	c.invalidateProjection()
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.invalidateProjection()
}

func (c *Camera) invalidateProjection() {
	c.projDirty = true
	c.viewProjDirty = true
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		rot := math3d.RotateZ(-c.Roll).Mul(
			math3d.RotateX(-c.Pitch)).Mul(
			math3d.RotateY(-c.Yaw))
		c.viewMatrix = rot.Mul(math3d.Translate(c.Position.Negate()))
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		switch c.Projection {
		case ProjectionOrthographic:
			b := c.Ortho
			c.projMatrix = math3d.Orthographic(b.Left, b.Right, b.Bottom, b.Top, c.Near, c.Far)
		default:
			c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		}
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewProjDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// LookAt orients the camera toward target.
//
// When target coincides with the camera position there is no direction to
// look along; the camera then keeps the default orientation, looking down -Z
// with +Y up, the same fallback scene-graph libraries apply.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position)
	if dir.LenSq() == 0 {
		c.SetRotation(0, 0, 0)
		return
	}
	dir = dir.Normalize()
	c.SetRotation(math.Asin(dir.Y), math.Atan2(-dir.X, -dir.Z), 0)
}

// WorldToScreen projects a world point to framebuffer coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}
