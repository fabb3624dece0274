package render

import (
	"math"
	"testing"

	"github.com/taigrr/folio/pkg/math3d"
)

func TestCameraLookAt(t *testing.T) {
	tests := []struct {
		name   string
		target math3d.Vec3
	}{
		{"down -Z", math3d.V3(0, 0, -1)},
		{"along +X", math3d.V3(3, 0, 0)},
		{"along -X", math3d.V3(-3, 0, 0)},
		{"up", math3d.V3(0, 2, -2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cam := NewOrthographicCamera(OrthoBounds{Left: -1, Right: 1, Top: 1, Bottom: -1}, 0.1, 100)
			cam.SetPosition(math3d.Zero3())
			cam.LookAt(tc.target)

			x, y, _, visible := cam.WorldToScreen(tc.target, 80, 20)
			if !visible {
				t.Fatal("target should be visible")
			}
			if math.Abs(x-40) > 1e-9 || math.Abs(y-10) > 1e-9 {
				t.Errorf("target at (%v, %v), want screen center", x, y)
			}
			if _, _, _, visible := cam.WorldToScreen(tc.target.Scale(-1), 80, 20); visible {
				t.Error("point behind the camera should not be visible")
			}
		})
	}
}

func TestCameraLookAtSelfKeepsDefaultOrientation(t *testing.T) {
	cam := NewCamera()
	pos := math3d.V3(-0.5, 0.8, 0.4)
	cam.SetPosition(pos)
	cam.SetRotation(0.3, 1.2, 0)

	cam.LookAt(pos)

	if cam.Pitch != 0 || cam.Yaw != 0 || cam.Roll != 0 {
		t.Errorf("rotation = (%v, %v, %v), want zero", cam.Pitch, cam.Yaw, cam.Roll)
	}
	ahead := pos.Add(math3d.V3(0, 0, -1))
	if x, y, _, visible := cam.WorldToScreen(ahead, 80, 20); !visible || math.Abs(x-40) > 1e-9 || math.Abs(y-10) > 1e-9 {
		t.Errorf("point straight down -Z at (%v, %v) visible=%v, want screen center", x, y, visible)
	}
	for _, v := range cam.ViewProjectionMatrix() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatal("view-projection matrix is not finite")
		}
	}
}

func TestCameraOrthographicWorldToScreen(t *testing.T) {
	cam := NewOrthographicCamera(OrthoBounds{Left: -4, Right: 4, Top: 2, Bottom: -2}, 0.1, 1000)
	cam.SetPosition(math3d.V3(1, 1, 0.4))
	cam.LookAt(cam.Position)

	tests := []struct {
		name    string
		world   math3d.Vec3
		x, y    float64
		visible bool
	}{
		{"view center", math3d.V3(1, 1, 0), 40, 10, true},
		{"top left", math3d.V3(-3, 3, 0), 0, 0, true},
		{"bottom right", math3d.V3(5, -1, -10), 80, 20, true},
		{"outside right", math3d.V3(6, 1, 0), 0, 0, false},
		{"behind camera", math3d.V3(1, 1, 1), 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, _, visible := cam.WorldToScreen(tc.world, 80, 20)
			if visible != tc.visible {
				t.Fatalf("visible = %v, want %v", visible, tc.visible)
			}
			if visible && (math.Abs(x-tc.x) > 1e-9 || math.Abs(y-tc.y) > 1e-9) {
				t.Errorf("screen = (%v, %v), want (%v, %v)", x, y, tc.x, tc.y)
			}
		})
	}
}

func TestCameraOrthographicIgnoresDepthForSize(t *testing.T) {
	cam := NewOrthographicCamera(OrthoBounds{Left: -1, Right: 1, Top: 1, Bottom: -1}, 0.1, 1000)
	cam.SetPosition(math3d.V3(0, 0, 10))

	xNear, _, _, _ := cam.WorldToScreen(math3d.V3(0.5, 0, 5), 100, 100)
	xFar, _, _, _ := cam.WorldToScreen(math3d.V3(0.5, 0, -50), 100, 100)
	if math.Abs(xNear-xFar) > 1e-9 {
		t.Errorf("orthographic x depends on depth: %v vs %v", xNear, xFar)
	}
}

func TestCameraMatrixCaching(t *testing.T) {
	cam := NewCamera()
	first := cam.ViewProjectionMatrix()

	cam.SetPosition(math3d.V3(1, 2, 3))
	if cam.ViewProjectionMatrix() == first {
		t.Error("SetPosition should invalidate the view-projection matrix")
	}

	moved := cam.ViewProjectionMatrix()
	cam.SetOrthographic(OrthoBounds{Left: -1, Right: 1, Top: 1, Bottom: -1})
	if cam.ViewProjectionMatrix() == moved {
		t.Error("SetOrthographic should invalidate the view-projection matrix")
	}
	if cam.Projection != ProjectionOrthographic {
		t.Errorf("Projection = %v, want orthographic", cam.Projection)
	}

	ortho := cam.ViewProjectionMatrix()
	cam.SetClipPlanes(1, 50)
	if cam.ViewProjectionMatrix() == ortho {
		t.Error("SetClipPlanes should invalidate the view-projection matrix")
	}
}

func TestFramebufferForTerminal(t *testing.T) {
	fb := ForTerminal(80, 24)
	if fb.Width != 80 || fb.Height != 48 {
		t.Errorf("ForTerminal(80, 24) = %dx%d, want 80x48", fb.Width, fb.Height)
	}
	if got := fb.Aspect(); math.Abs(got-80.0/48.0) > 1e-12 {
		t.Errorf("Aspect() = %v, want %v", got, 80.0/48.0)
	}

	empty := ForTerminal(0, 0)
	if empty.Width != 1 || empty.Height != 2 {
		t.Errorf("ForTerminal(0, 0) = %dx%d, want 1x2", empty.Width, empty.Height)
	}
}

func TestFramebufferClearAndSnapshot(t *testing.T) {
	fb := NewFramebuffer(7, 5)
	bg := Hex(0x20232a)
	fb.Clear(bg)

	for i, p := range fb.Pixels {
		if p != bg {
			t.Fatalf("pixel %d = %v, want %v", i, p, bg)
		}
	}
	if bg != RGB(0x20, 0x23, 0x2a) {
		t.Errorf("Hex(0x20232a) = %v", bg)
	}

	fb.SetPixel(-1, 0, ColorWhite) // ignored
	fb.SetPixel(3, 2, ColorWhite)
	img := fb.ToImage()
	if img.RGBAAt(3, 2) != ColorWhite {
		t.Errorf("image pixel = %v, want white", img.RGBAAt(3, 2))
	}

	path := t.TempDir() + "/frame.png"
	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
}
