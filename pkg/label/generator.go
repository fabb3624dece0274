package label

import (
	"context"
	"image/color"

	"github.com/taigrr/folio/pkg/models"
)

// Request describes one label to build.
type Request struct {
	Text    string
	Color   color.RGBA
	Options Options
	Seq     uint64 // Issued by Slot.Next
}

// Label is a finished, renderable text mesh.
type Label struct {
	Text  string
	Mesh  *models.Mesh
	Color color.RGBA
	Seq   uint64
}

// Result is delivered by Generator.Start. Exactly one of Label and Err is set.
type Result struct {
	Seq   uint64
	Label *Label
	Err   error
}

// Generator builds labels from one font source.
type Generator struct {
	source Source
	cache  *FontCache
}

// NewGenerator creates a generator. A nil cache gets a private one.
func NewGenerator(src Source, cache *FontCache) *Generator {
	if cache == nil {
		cache = NewFontCache()
	}
	return &Generator{source: src, cache: cache}
}

// Source returns the font source labels are built from.
func (g *Generator) Source() Source { return g.source }

// Generate builds the label synchronously. Font failures are *LoadError and
// match ErrFontUnavailable.
func (g *Generator) Generate(ctx context.Context, req Request) (*Label, error) {
	f, err := g.cache.Font(ctx, g.source)
	if err != nil {
		return nil, err
	}
	mesh, err := Tessellate(f, req.Text, req.Options)
	if err != nil {
		return nil, err
	}
	return &Label{Text: req.Text, Mesh: mesh, Color: req.Color, Seq: req.Seq}, nil
}

// Start builds the label in a new goroutine and sends the outcome on out.
// The send is abandoned if ctx is cancelled first.
func (g *Generator) Start(ctx context.Context, req Request, out chan<- Result) {
	go func() {
		l, err := g.Generate(ctx, req)
		select {
		case out <- Result{Seq: req.Seq, Label: l, Err: err}:
		case <-ctx.Done():
		}
	}()
}
