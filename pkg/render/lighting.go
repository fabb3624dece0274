package render

import (
	"math"

	"github.com/taigrr/folio/pkg/math3d"
)

// Lighting is one ambient light plus one directional light, both white.
type Lighting struct {
	Ambient     float64     // Ambient intensity, applied to every surface
	Directional float64     // Directional intensity, scaled by N·L
	Direction   math3d.Vec3 // Direction toward the light
}

// Intensity returns the light reaching a surface with the given normal.
// The result can exceed 1; colors saturate in MultiplyColor.
func (l Lighting) Intensity(normal math3d.Vec3) float64 {
	diffuse := math.Max(0, normal.Dot(l.Direction.Normalize()))
	return l.Ambient + l.Directional*diffuse
}
