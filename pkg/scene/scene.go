// Package scene holds what the viewer draws: the background, the lights,
// the loaded models and the text label.
package scene

import (
	"github.com/taigrr/folio/pkg/label"
	"github.com/taigrr/folio/pkg/math3d"
	"github.com/taigrr/folio/pkg/models"
	"github.com/taigrr/folio/pkg/render"
)

// DefaultBackground is the clear color, #20232a.
const DefaultBackground = 0x20232a

// DefaultLabelPosition is where the label's baseline starts.
var DefaultLabelPosition = math3d.V3(0, 1, 0)

// DefaultLighting is a full-strength ambient light plus a half-strength
// directional light shining from (5, 5, 5) toward the origin.
func DefaultLighting() render.Lighting {
	return render.Lighting{
		Ambient:     1.0,
		Directional: 0.5,
		Direction:   math3d.V3(5, 5, 5).Normalize(),
	}
}

// Model is a loaded mesh placed in the scene.
type Model struct {
	Name     string
	Mesh     *models.Mesh
	Textures []*render.Texture // By material index; nil entries are untextured
	Position math3d.Vec3
	Scale    float64
}

// NewModel places mesh and converts its material base maps to textures.
func NewModel(name string, mesh *models.Mesh, position math3d.Vec3, scale float64) *Model {
	m := &Model{Name: name, Mesh: mesh, Position: position, Scale: scale}
	for _, mat := range mesh.Materials {
		var tex *render.Texture
		if mat.HasTexture && mat.BaseMap != nil {
			tex = render.TextureFromImage(mat.BaseMap)
		}
		m.Textures = append(m.Textures, tex)
	}
	return m
}

// surface is a model's mesh as the rasterizer sees it: each face samples
// its own material's texture.
type surface struct {
	*models.Mesh
	textures []*render.Texture
}

func (s surface) FaceTexture(i int) *render.Texture {
	mat := s.Faces[i].Material
	if mat < 0 || mat >= len(s.textures) {
		return nil
	}
	return s.textures[mat]
}

// Transform returns the model-to-world matrix.
func (m *Model) Transform() math3d.Mat4 {
	return math3d.Translate(m.Position).Mul(math3d.ScaleUniform(m.Scale))
}

// Scene is everything drawn in one frame. The lights are fixed at
// construction. It is owned by the event loop and not safe for concurrent
// use.
type Scene struct {
	Background    render.Color
	Lighting      render.Lighting
	LabelPosition math3d.Vec3

	models []*Model
	label  *label.Label
}

// New creates an empty scene.
func New(background render.Color, light render.Lighting) *Scene {
	return &Scene{
		Background:    background,
		Lighting:      light,
		LabelPosition: DefaultLabelPosition,
	}
}

// AddModel places m in the scene. A model with the same name is replaced,
// keeping its draw order.
func (s *Scene) AddModel(m *Model) {
	for i, old := range s.models {
		if old.Name == m.Name {
			s.models[i] = m
			return
		}
	}
	s.models = append(s.models, m)
}

// Models returns the placed models in draw order.
func (s *Scene) Models() []*Model {
	return s.models
}

// SetLabel replaces the label. The previous one is dropped.
func (s *Scene) SetLabel(l *label.Label) {
	s.label = l
}

// Label returns the current label, nil if none has been set.
func (s *Scene) Label() *label.Label {
	return s.label
}

// Draw renders the scene into the rasterizer's framebuffer.
func (s *Scene) Draw(r *render.Rasterizer, fb *render.Framebuffer) {
	fb.Clear(s.Background)
	r.ClearDepth()
	r.ResetCullingStats()

	for _, m := range s.models {
		r.DrawMeshGouraud(surface{m.Mesh, m.Textures}, m.Transform(), render.ColorWhite, s.Lighting)
	}

	if s.label != nil && s.label.Mesh != nil {
		r.DrawMeshGouraud(s.label.Mesh, math3d.Translate(s.LabelPosition), s.label.Color, s.Lighting)
	}
}
