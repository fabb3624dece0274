// Package view holds the camera state of the viewer and the pure
// transitions applied to it by keyboard input.
package view

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/taigrr/folio/pkg/math3d"
)

// MinFrustumSize is the smallest frustum height zooming in can reach.
const MinFrustumSize = 0.5

// State is the camera frame: where the camera sits and how much it sees.
type State struct {
	OffsetX     float64
	OffsetY     float64
	FixedZ      float64
	FrustumSize float64 // Vertical extent of the view in world units
}

// DefaultState is the framing the viewer starts with.
func DefaultState() State {
	return State{OffsetX: -0.5, OffsetY: 0.8, FixedZ: 0.4, FrustumSize: 5}
}

// Steps are the increments applied per key press.
type Steps struct {
	Zoom float64
	Move float64
}

// DefaultSteps returns the default zoom and move increments.
func DefaultSteps() Steps {
	return Steps{Zoom: 0.3, Move: 0.1}
}

// Key names a view key.
type Key string

const (
	KeyZoomIn  Key = "z"
	KeyZoomOut Key = "y"
	KeyUp      Key = "ArrowUp"
	KeyDown    Key = "ArrowDown"
	KeyLeft    Key = "ArrowLeft"
	KeyRight   Key = "ArrowRight"
)

// Keys lists every key ApplyKey responds to.
var Keys = []Key{KeyZoomIn, KeyZoomOut, KeyUp, KeyDown, KeyLeft, KeyRight}

// Recognized reports whether k changes the view.
func Recognized(k Key) bool {
	switch k {
	case KeyZoomIn, KeyZoomOut, KeyUp, KeyDown, KeyLeft, KeyRight:
		return true
	}
	return false
}

// ApplyKey returns the state after pressing k. Unrecognized keys return s
// unchanged.
func ApplyKey(s State, k Key, steps Steps) State {
	switch k {
	case KeyZoomIn:
		s.FrustumSize = math.Max(MinFrustumSize, s.FrustumSize-steps.Zoom)
	case KeyZoomOut:
		s.FrustumSize += steps.Zoom
	case KeyUp:
		s.OffsetY += steps.Move
	case KeyDown:
		s.OffsetY -= steps.Move
	case KeyLeft:
		s.OffsetX -= steps.Move
	case KeyRight:
		s.OffsetX += steps.Move
	}
	return s
}

// Bounds are the side planes of the orthographic view volume.
type Bounds struct {
	Left, Right, Top, Bottom float64
}

// FrustumBounds derives the view volume from the frustum size and the
// viewport aspect ratio (width / height).
func FrustumBounds(s State, aspect float64) Bounds {
	halfW := s.FrustumSize * aspect / 2
	halfH := s.FrustumSize / 2
	return Bounds{Left: -halfW, Right: halfW, Top: halfH, Bottom: -halfH}
}

// Pose is where the camera is and what it looks at.
type Pose struct {
	Position math3d.Vec3
	LookAt   math3d.Vec3
}

// CameraPose places the camera at the offsets. The target is the position
// itself, so the camera keeps its default orientation looking down -Z.
func CameraPose(s State) Pose {
	p := math3d.V3(s.OffsetX, s.OffsetY, s.FixedZ)
	return Pose{Position: p, LookAt: p}
}

// LabelText is the text shown by the in-scene label.
func LabelText(offsetX float64) string {
	return "X: " + fixed2(offsetX)
}

// fixed2 formats x with two decimals. Exact ties round away from zero, and
// only negative values carry a sign, so -0 prints as "0.00".
func fixed2(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Sprint(x)
	}
	sign := ""
	if x < 0 {
		sign = "-"
	}

	// Round the exact binary value, not its shortest decimal form:
	// 1.005 is stored just below 1.005 and stays 1.00.
	r := new(big.Rat).SetFloat64(math.Abs(x))
	r.Mul(r, big.NewRat(100, 1))
	n, rem := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if rem.Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		n.Add(n, big.NewInt(1))
	}

	digits := n.String()
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}
