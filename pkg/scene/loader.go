package scene

import (
	"context"
	"fmt"
	"sync"

	"github.com/taigrr/folio/pkg/math3d"
	"github.com/taigrr/folio/pkg/models"
)

// Placement says which file to load and where to put it.
type Placement struct {
	Name     string      `toml:"name" yaml:"name" env:"NAME"`
	Path     string      `toml:"path" yaml:"path" env:"PATH"`
	Position math3d.Vec3 `toml:"position" yaml:"position"`
	Scale    float64     `toml:"scale" yaml:"scale" env:"SCALE"`
}

// DefaultPlacements are the two models of the portfolio scene.
func DefaultPlacements() []Placement {
	return []Placement{
		{Name: "bulletin-board", Path: "models/bulletin-board-model.glb", Position: math3d.V3(-0.85, 1.3, 0), Scale: 1},
		{Name: "computer-desk", Path: "models/computer-desk-model.glb", Position: math3d.V3(0, 0, 0), Scale: 1},
	}
}

// ModelResult is the outcome of loading one placement.
type ModelResult struct {
	Placement Placement
	Model     *Model
	Err       error
}

// LoadModel loads p's file with its materials' base color textures.
func LoadModel(p Placement) (*Model, error) {
	mesh, err := models.LoadGLB(p.Path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", p.Path, err)
	}
	return NewModel(p.Name, mesh, p.Position, p.Scale), nil
}

// LoadModels loads every placement in its own goroutine and sends each
// outcome on out as it completes. A failure only affects its own result.
// Results not yet sent when ctx is cancelled are dropped. out is never
// closed; LoadModels returns immediately.
func LoadModels(ctx context.Context, ps []Placement, out chan<- ModelResult) {
	for _, p := range ps {
		go func() {
			m, err := LoadModel(p)
			select {
			case out <- ModelResult{Placement: p, Model: m, Err: err}:
			case <-ctx.Done():
			}
		}()
	}
}

// LoadAll loads every placement concurrently and waits for all of them.
// Results are in placement order.
func LoadAll(ctx context.Context, ps []Placement) []ModelResult {
	results := make([]ModelResult, len(ps))
	var wg sync.WaitGroup
	for i, p := range ps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = ModelResult{Placement: p, Err: err}
				return
			}
			m, err := LoadModel(p)
			results[i] = ModelResult{Placement: p, Model: m, Err: err}
		}()
	}
	wg.Wait()
	return results
}
