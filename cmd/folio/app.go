package main

import (
	"context"
	"image/color"
	"log/slog"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/folio/pkg/config"
	"github.com/taigrr/folio/pkg/label"
	"github.com/taigrr/folio/pkg/render"
	"github.com/taigrr/folio/pkg/scene"
	"github.com/taigrr/folio/pkg/view"
)

// app is the viewer state. It is owned by the event loop goroutine; the
// background loaders only talk to it through the channels.
type app struct {
	cfg *config.Config
	log *slog.Logger

	scene    *scene.Scene
	ctrl     *view.Controller
	follower *view.Follower
	camera   *render.Camera
	fb       *render.Framebuffer
	rast     *render.Rasterizer

	gen        *label.Generator
	slot       label.Slot
	labelColor color.RGBA
	labelOpts  label.Options

	status map[string]assetStatus

	models  chan scene.ModelResult
	labels  chan label.Result
	reloads chan scene.Placement
}

func newApp(cfg *config.Config, log *slog.Logger, cols, rows int) (*app, error) {
	bg, err := config.ParseColor(cfg.Background)
	if err != nil {
		return nil, err
	}
	labelColor, err := config.ParseColor(cfg.Label.Color)
	if err != nil {
		return nil, err
	}

	sc := scene.New(bg, scene.DefaultLighting())
	sc.LabelPosition = cfg.Label.Position

	fb := render.ForTerminal(cols, rows)
	ctrl := view.NewController(cfg.ViewState(), cfg.Steps(), fb.Aspect())
	camera := render.NewOrthographicCamera(orthoBounds(ctrl.Bounds()), cfg.View.Near, cfg.View.Far)

	a := &app{
		cfg:        cfg,
		log:        log,
		scene:      sc,
		ctrl:       ctrl,
		follower:   view.NewFollower(ctrl.State(), cfg.FPS, cfg.Smooth),
		camera:     camera,
		fb:         fb,
		rast:       render.NewRasterizer(camera, fb),
		gen:        label.NewGenerator(label.SourceFor(cfg.Label.Font), label.NewFontCache()),
		labelColor: labelColor,
		labelOpts: label.Options{
			Size:       cfg.Label.Size,
			Depth:      cfg.Label.Depth,
			Resolution: cfg.Label.Resolution,
		},
		status:  make(map[string]assetStatus),
		models:  make(chan scene.ModelResult, len(cfg.Models)),
		labels:  make(chan label.Result, 4),
		reloads: make(chan scene.Placement, len(cfg.Models)),
	}
	a.applyPose(ctrl.State())
	return a, nil
}

func orthoBounds(b view.Bounds) render.OrthoBounds {
	return render.OrthoBounds{Left: b.Left, Right: b.Right, Top: b.Top, Bottom: b.Bottom}
}

// start kicks off model loading and the first label.
func (a *app) start(ctx context.Context) {
	for _, p := range a.cfg.Models {
		a.status[p.Name] = assetLoading
	}
	scene.LoadModels(ctx, a.cfg.Models, a.models)
	a.requestLabel(ctx)
}

// labelRequest builds the request for the current offset and takes a new
// sequence number.
func (a *app) labelRequest() label.Request {
	return label.Request{
		Text:    a.ctrl.Label(),
		Color:   a.labelColor,
		Options: a.labelOpts,
		Seq:     a.slot.Next(),
	}
}

func (a *app) requestLabel(ctx context.Context) {
	req := a.labelRequest()
	a.log.Debug("label requested", "text", req.Text, "seq", req.Seq)
	a.gen.Start(ctx, req, a.labels)
}

// handleKey applies a view key. Only recognized keys regenerate the label.
func (a *app) handleKey(ctx context.Context, k view.Key) {
	if !a.ctrl.HandleKey(k) {
		return
	}
	a.requestLabel(ctx)
}

// resize reallocates the framebuffer for a cols x rows terminal and
// recomputes the projection.
func (a *app) resize(cols, rows int) {
	a.fb = render.ForTerminal(cols, rows)
	a.rast = render.NewRasterizer(a.camera, a.fb)
	a.ctrl.Resize(a.fb.Aspect())
	a.applyPose(a.follower.Current())
}

func (a *app) onLabel(res label.Result) {
	if res.Err != nil {
		a.log.Warn("label generation failed", "seq", res.Seq, "source", a.gen.Source().String(), "error", res.Err)
		a.slot.Fail(res.Seq)
		return
	}
	if !a.slot.Offer(res.Label) {
		a.log.Debug("stale label dropped", "seq", res.Seq)
		return
	}
	a.scene.SetLabel(a.slot.Current())
}

func (a *app) onModel(res scene.ModelResult) {
	name := res.Placement.Name
	if res.Err != nil {
		a.log.Error("model failed to load", "model", name, "path", res.Placement.Path, "error", res.Err)
		// A failed reload keeps the model already on screen.
		if a.status[name] != assetLoaded {
			a.status[name] = assetFailed
		}
		return
	}
	a.scene.AddModel(res.Model)
	a.status[name] = assetLoaded
	a.log.Info("model loaded", "model", name, "triangles", res.Model.Mesh.TriangleCount())
}

// onReload reloads a changed model file in the background.
func (a *app) onReload(ctx context.Context, p scene.Placement) {
	a.log.Info("model changed on disk", "model", p.Name, "path", p.Path)
	scene.LoadModels(ctx, []scene.Placement{p}, a.models)
}

// applyPose points the camera for the displayed state s.
func (a *app) applyPose(s view.State) {
	a.camera.SetOrthographic(orthoBounds(view.FrustumBounds(s, a.ctrl.Aspect())))
	pose := view.CameraPose(s)
	a.camera.SetPosition(pose.Position)
	a.camera.LookAt(pose.LookAt)
}

// frame advances the view one frame and draws the scene.
func (a *app) frame() {
	a.applyPose(a.follower.Step(a.ctrl.State()))
	a.scene.Draw(a.rast, a.fb)
}

func (a *app) hudInfo() hudInfo {
	info := hudInfo{
		State:        a.follower.Current(),
		LabelPending: a.slot.Pending(),
		Culled:       a.rast.CullingStats.MeshesCulled,
	}
	if l := a.slot.Current(); l != nil {
		info.Label = l.Text
	}
	for _, p := range a.cfg.Models {
		info.Models = append(info.Models, modelEntry{Name: p.Name, Status: a.status[p.Name]})
	}
	for _, m := range a.scene.Models() {
		info.Triangles += m.Mesh.TriangleCount()
	}
	if l := a.scene.Label(); l != nil && l.Mesh != nil {
		info.Triangles += l.Mesh.TriangleCount()
	}
	return info
}

// keyFor maps a key press to a view key. ok is false for keys the view
// does not handle.
func keyFor(ev uv.KeyPressEvent) (view.Key, bool) {
	switch {
	case ev.MatchString("z"):
		return view.KeyZoomIn, true
	case ev.MatchString("y"):
		return view.KeyZoomOut, true
	case ev.MatchString("up"):
		return view.KeyUp, true
	case ev.MatchString("down"):
		return view.KeyDown, true
	case ev.MatchString("left"):
		return view.KeyLeft, true
	case ev.MatchString("right"):
		return view.KeyRight, true
	}
	return "", false
}

// isQuit reports whether ev ends the program.
func isQuit(ev uv.KeyPressEvent) bool {
	return ev.MatchString("esc", "escape", "ctrl+c")
}
