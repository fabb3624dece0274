package label

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/taigrr/folio/pkg/math3d"
	"github.com/taigrr/folio/pkg/models"
)

// Options control the shape of the tessellated text.
type Options struct {
	Size       float64 // Em height in world units
	Depth      float64 // Extrusion along +Z
	Resolution int     // Raster samples per em
}

// DefaultOptions matches the scene label: half a unit tall, 0.2 deep.
func DefaultOptions() Options {
	return Options{Size: 0.5, Depth: 0.2, Resolution: 48}
}

func (o Options) validate() error {
	switch {
	case o.Size <= 0:
		return errors.New("size must be positive")
	case o.Depth <= 0:
		return errors.New("depth must be positive")
	case o.Resolution < 4:
		return errors.New("resolution must be at least 4")
	}
	return nil
}

// coverage is a binary raster of the text. Row 0 is the top.
type coverage struct {
	w, h int
	bits []bool
}

func (c coverage) at(x, y int) bool {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return false
	}
	return c.bits[y*c.w+x]
}

// rasterize draws text and returns its coverage with the pixel offset of the
// pen origin inside the raster.
func rasterize(f *opentype.Font, text string, res int) (coverage, image.Point, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(res),
		DPI:     72, // one point per pixel
		Hinting: font.HintingNone,
	})
	if err != nil {
		return coverage{}, image.Point{}, err
	}
	defer face.Close()

	bounds, _ := font.BoundString(face, text)
	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	if maxX <= minX || maxY <= minY {
		return coverage{}, image.Point{X: -minX, Y: -minY}, nil
	}

	dst := image.NewAlpha(image.Rect(0, 0, maxX-minX, maxY-minY))
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(-minX, -minY),
	}
	d.DrawString(text)

	cov := coverage{w: dst.Rect.Dx(), h: dst.Rect.Dy()}
	cov.bits = make([]bool, cov.w*cov.h)
	for i, a := range dst.Pix {
		cov.bits[i] = a >= 0x80
	}
	return cov, image.Point{X: -minX, Y: -minY}, nil
}

// Tessellate turns text into a closed, extruded mesh. The front face sits at
// z = Depth and the back at z = 0; the origin is the start of the baseline.
// Glyph outlines follow the raster grid at opt.Resolution samples per em.
func Tessellate(f *opentype.Font, text string, opt Options) (*models.Mesh, error) {
	if err := opt.validate(); err != nil {
		return nil, fmt.Errorf("tessellate %q: %w", text, err)
	}
	cov, origin, err := rasterize(f, text, opt.Resolution)
	if err != nil {
		return nil, fmt.Errorf("tessellate %q: %w", text, err)
	}

	b := extruder{
		mesh:   models.NewMesh(text),
		scale:  opt.Size / float64(opt.Resolution),
		origin: origin,
		depth:  opt.Depth,
	}
	b.caps(cov)
	b.walls(cov)
	b.mesh.CalculateBounds()
	return b.mesh, nil
}

type extruder struct {
	mesh   *models.Mesh
	scale  float64
	origin image.Point
	depth  float64
}

// wx and wy map raster grid lines to world coordinates, flipping Y.
func (e *extruder) wx(x int) float64 { return float64(x-e.origin.X) * e.scale }
func (e *extruder) wy(y int) float64 { return float64(e.origin.Y-y) * e.scale }

// quad adds a rectangle whose corners a, b, c, d run counter-clockwise when
// seen from the side n points to.
func (e *extruder) quad(n, a, b, c, d math3d.Vec3) {
	m := e.mesh
	ia := m.AddVertex(a, n, math3d.Vec2{})
	ib := m.AddVertex(b, n, math3d.Vec2{})
	ic := m.AddVertex(c, n, math3d.Vec2{})
	id := m.AddVertex(d, n, math3d.Vec2{})
	m.AddFace(ia, ic, ib)
	m.AddFace(ia, id, ic)
}

// runs calls fn for every maximal run [start, end) of indices below n for
// which in reports true.
func runs(n int, in func(i int) bool, fn func(start, end int)) {
	start := -1
	for i := 0; i <= n; i++ {
		if i < n && in(i) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			fn(start, i)
			start = -1
		}
	}
}

// caps adds the front and back faces, one rectangle per horizontal run.
func (e *extruder) caps(cov coverage) {
	front, back := math3d.V3(0, 0, 1), math3d.V3(0, 0, -1)
	for y := range cov.h {
		yt, yb := e.wy(y), e.wy(y+1)
		runs(cov.w, func(x int) bool { return cov.at(x, y) }, func(x0, x1 int) {
			l, r := e.wx(x0), e.wx(x1)
			e.quad(front,
				math3d.V3(l, yb, e.depth), math3d.V3(r, yb, e.depth),
				math3d.V3(r, yt, e.depth), math3d.V3(l, yt, e.depth))
			e.quad(back,
				math3d.V3(l, yb, 0), math3d.V3(l, yt, 0),
				math3d.V3(r, yt, 0), math3d.V3(r, yb, 0))
		})
	}
}

// walls closes the mesh along every boundary between covered and empty
// pixels, merging runs along each grid line.
func (e *extruder) walls(cov coverage) {
	d := e.depth
	for y := range cov.h {
		// Top edges of row y, then bottom edges.
		yt, yb := e.wy(y), e.wy(y+1)
		runs(cov.w, func(x int) bool { return cov.at(x, y) && !cov.at(x, y-1) }, func(x0, x1 int) {
			l, r := e.wx(x0), e.wx(x1)
			e.quad(math3d.V3(0, 1, 0),
				math3d.V3(l, yt, d), math3d.V3(r, yt, d),
				math3d.V3(r, yt, 0), math3d.V3(l, yt, 0))
		})
		runs(cov.w, func(x int) bool { return cov.at(x, y) && !cov.at(x, y+1) }, func(x0, x1 int) {
			l, r := e.wx(x0), e.wx(x1)
			e.quad(math3d.V3(0, -1, 0),
				math3d.V3(l, yb, 0), math3d.V3(r, yb, 0),
				math3d.V3(r, yb, d), math3d.V3(l, yb, d))
		})
	}
	for x := range cov.w {
		l, r := e.wx(x), e.wx(x+1)
		runs(cov.h, func(y int) bool { return cov.at(x, y) && !cov.at(x-1, y) }, func(y0, y1 int) {
			yt, yb := e.wy(y0), e.wy(y1)
			e.quad(math3d.V3(-1, 0, 0),
				math3d.V3(l, yb, 0), math3d.V3(l, yb, d),
				math3d.V3(l, yt, d), math3d.V3(l, yt, 0))
		})
		runs(cov.h, func(y int) bool { return cov.at(x, y) && !cov.at(x+1, y) }, func(y0, y1 int) {
			yt, yb := e.wy(y0), e.wy(y1)
			e.quad(math3d.V3(1, 0, 0),
				math3d.V3(r, yb, d), math3d.V3(r, yb, 0),
				math3d.V3(r, yt, 0), math3d.V3(r, yt, d))
		})
	}
}
