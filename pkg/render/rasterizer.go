package render

import (
	"math"

	"github.com/taigrr/folio/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // World normal
	UV       math3d.Vec2 // Texture coordinates
	Color    Color       // Base color
}

// Triangle is a triangle to be rasterized. Front faces wind clockwise when
// seen from outside (screen Y points down).
type Triangle struct {
	V [3]Vertex
}

// Rasterizer handles software triangle rasterization with a Z-buffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	frustum      Frustum
	frustumFor   math3d.Mat4 // view-projection the cached frustum was built from
	frustumValid bool

	CullingStats           CullingStats
	DisableBackfaceCulling bool
}

// CullingStats counts frustum culling decisions since the last reset.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// NewRasterizer creates a rasterizer drawing into fb through camera.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	return r
}

// Resize reallocates the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets the Z-buffer. Call before each frame.
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// GetFrustum returns the camera frustum, rebuilt only when the camera's
// view-projection matrix has changed.
func (r *Rasterizer) GetFrustum() Frustum {
	vp := r.camera.ViewProjectionMatrix()
	if !r.frustumValid || vp != r.frustumFor {
		r.frustum = NewFrustumFromMatrix(vp)
		r.frustumFor = vp
		r.frustumValid = true
	}
	return r.frustum
}

// ResetCullingStats zeroes the culling counters.
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// IsVisibleTransformed tests whether local bounds are visible after transform.
func (r *Rasterizer) IsVisibleTransformed(localBounds AABB, transform math3d.Mat4) bool {
	return r.GetFrustum().IntersectAABB(localBounds.Transform(transform))
}

// screenVertex is a vertex after projection and viewport mapping.
type screenVertex struct {
	X, Y float64 // Screen coordinates
	Z    float64 // NDC depth
	InvW float64 // 1/w for perspective-correct interpolation
}

// project maps a triangle to screen space. It returns false when the
// triangle is entirely behind the camera, degenerate, or back-facing.
func (r *Rasterizer) project(tri Triangle) ([3]screenVertex, bool) {
	var sv [3]screenVertex
	allBehind := true
	viewProj := r.camera.ViewProjectionMatrix()

	for i := range 3 {
		clip := viewProj.MulVec4(math3d.V4FromV3(tri.V[i].Position, 1))
		if clip.W > 0 {
			allBehind = false
			sv[i].InvW = 1 / clip.W
		}
		ndc := clip.PerspectiveDivide()
		sv[i].X = (ndc.X + 1) * 0.5 * float64(r.Width())
		sv[i].Y = (1 - ndc.Y) * 0.5 * float64(r.Height()) // Y flipped
		sv[i].Z = ndc.Z
	}
	if allBehind {
		return sv, false
	}

	edge1 := math3d.V2(sv[1].X-sv[0].X, sv[1].Y-sv[0].Y)
	edge2 := math3d.V2(sv[2].X-sv[0].X, sv[2].Y-sv[0].Y)
	cross := edge1.Cross(edge2)
	if cross == 0 || (cross < 0 && !r.DisableBackfaceCulling) {
		return sv, false
	}
	return sv, true
}

// edgeCoeffs returns A, B, C for edge(x, y) = A*x + B*y + C of the edge
// (x0,y0) -> (x1,y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// scan walks the pixels covered by sv using incremental edge functions.
// For every pixel that passes the clip and depth tests, shade receives the
// perspective-correct barycentric weights of the three vertices.
func (r *Rasterizer) scan(sv [3]screenVertex, shade func(w [3]float64) Color) {
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	a0, b0, c0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	a1, b1, c1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	a2, b2, c2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)

	area := a0*sv[0].X + b0*sv[0].Y + c0
	if area == 0 {
		return
	}
	invArea := 1 / area

	px, py := float64(minX)+0.5, float64(minY)+0.5
	e0Row := a0*px + b0*py + c0
	e1Row := a1*px + b1*py + c1
	e2Row := a2*px + b2*py + c2

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		e0, e1, e2 := e0Row, e1Row, e2Row
		for x := minX; x <= maxX; x++ {
			l0, l1, l2 := e0*invArea, e1*invArea, e2*invArea
			e0 += a0
			e1 += a1
			e2 += a2
			if l0 < 0 || l1 < 0 || l2 < 0 {
				continue
			}

			z := l0*sv[0].Z + l1*sv[1].Z + l2*sv[2].Z
			if z < -1 || z > 1 {
				continue // outside near/far
			}
			idx := y*width + x
			if z >= r.zbuffer[idx] {
				continue
			}

			p0, p1, p2 := l0*sv[0].InvW, l1*sv[1].InvW, l2*sv[2].InvW
			sum := p0 + p1 + p2
			if sum == 0 {
				continue
			}

			c := shade([3]float64{p0 / sum, p1 / sum, p2 / sum})
			c.A = 255
			r.zbuffer[idx] = z
			r.fb.SetPixel(x, y, c)
		}
		e0Row += b0
		e1Row += b1
		e2Row += b2
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

// DrawTriangleGouraud rasterizes a triangle with per-vertex lighting
// interpolated across the face.
func (r *Rasterizer) DrawTriangleGouraud(tri Triangle, light Lighting) {
	sv, ok := r.project(tri)
	if !ok {
		return
	}

	var lit [3][3]float64
	for i, v := range tri.V {
		k := light.Intensity(v.Normal)
		lit[i] = [3]float64{float64(v.Color.R) * k, float64(v.Color.G) * k, float64(v.Color.B) * k}
	}

	r.scan(sv, func(w [3]float64) Color {
		var ch [3]uint8
		for c := range 3 {
			ch[c] = uint8(math.Min(255, math.Round(w[0]*lit[0][c]+w[1]*lit[1][c]+w[2]*lit[2][c])))
		}
		return RGB(ch[0], ch[1], ch[2])
	})
}

// DrawTriangleTexturedGouraud rasterizes a textured triangle. Texels are
// tinted by the vertex color and scaled by interpolated vertex lighting.
func (r *Rasterizer) DrawTriangleTexturedGouraud(tri Triangle, tex *Texture, light Lighting) {
	sv, ok := r.project(tri)
	if !ok {
		return
	}

	var intensity [3]float64
	for i, v := range tri.V {
		intensity[i] = light.Intensity(v.Normal)
	}
	tint := tri.V[0].Color

	r.scan(sv, func(w [3]float64) Color {
		u := w[0]*tri.V[0].UV.X + w[1]*tri.V[1].UV.X + w[2]*tri.V[2].UV.X
		v := w[0]*tri.V[0].UV.Y + w[1]*tri.V[1].UV.Y + w[2]*tri.V[2].UV.Y
		k := w[0]*intensity[0] + w[1]*intensity[1] + w[2]*intensity[2]
		return MultiplyColor(ModulateColor(tex.Sample(u, v), tint), k)
	})
}

// MeshRenderer is the read-only view of a mesh the rasterizer needs.
// Defined here so render does not import models.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer is a mesh with local bounds, enabling frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// FaceColorer is a mesh that carries per-face base colors (materials).
type FaceColorer interface {
	FaceColor(i int) (Color, bool)
}

// FaceTexturer is a mesh whose faces may carry a base color texture.
// FaceTexture returns nil for untextured faces.
type FaceTexturer interface {
	FaceTexture(i int) *Texture
}

// tryFrustumCull reports whether the mesh is provably outside the frustum.
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	lo, hi := bounded.GetBounds()
	if !r.IsVisibleTransformed(AABB{Min: lo, Max: hi}, transform) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// worldTriangle builds face i of mesh in world space.
func worldTriangle(mesh MeshRenderer, i int, transform math3d.Mat4, color Color) Triangle {
	if fc, ok := mesh.(FaceColorer); ok {
		if c, ok := fc.FaceColor(i); ok {
			color = c
		}
	}

	var tri Triangle
	for k, idx := range mesh.GetFace(i) {
		pos, normal, uv := mesh.GetVertex(idx)
		tri.V[k] = Vertex{
			Position: transform.MulVec3(pos),
			Normal:   transform.MulVec3Dir(normal).Normalize(),
			UV:       uv,
			Color:    color,
		}
	}
	return tri
}

// DrawMeshGouraud renders a mesh with Gouraud shading. Faces with a material
// color use it in place of color. Faces with a texture (see FaceTexturer)
// sample it, tinted by that color; the rest are shaded flat. Culled meshes
// are skipped whole.
func (r *Rasterizer) DrawMeshGouraud(mesh MeshRenderer, transform math3d.Mat4, color Color, light Lighting) {
	if r.tryFrustumCull(mesh, transform) {
		return
	}
	ft, _ := mesh.(FaceTexturer)
	for i := range mesh.TriangleCount() {
		tri := worldTriangle(mesh, i, transform, color)
		if ft != nil {
			if tex := ft.FaceTexture(i); tex != nil {
				r.DrawTriangleTexturedGouraud(tri, tex, light)
				continue
			}
		}
		r.DrawTriangleGouraud(tri, light)
	}
}
