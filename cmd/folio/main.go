// folio - Terminal 3D Portfolio Scene
// Renders a bulletin board, a computer desk and a 3D label showing the
// camera's X offset through an orthographic camera you pan and zoom.
//
// Controls:
//
//	Arrow keys  - Pan the camera
//	Z           - Zoom in
//	Y           - Zoom out
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/folio/pkg/config"
	"github.com/taigrr/folio/pkg/label"
	"github.com/taigrr/folio/pkg/scene"
)

// snapshotCols and snapshotRows size the headless render.
const (
	snapshotCols = 160
	snapshotRows = 60
)

func main() {
	cfg, err := config.Load("folio", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		printControls()
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := openLog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if cfg.Snapshot != "" {
		err = snapshot(cfg, log)
	} else {
		err = run(cfg, log)
	}
	if err != nil {
		log.Error("exiting", "error", err)
		closeLog()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printControls() {
	fmt.Fprintf(os.Stderr, "\nControls:\n")
	fmt.Fprintf(os.Stderr, "  Arrow keys  - Pan the camera\n")
	fmt.Fprintf(os.Stderr, "  Z / Y       - Zoom in / out\n")
	fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
}

// openLog opens the log file. The terminal belongs to the alternate screen,
// so nothing is logged to stderr.
func openLog(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return log, func() { f.Close() }, nil
}

// snapshot loads everything synchronously and writes one frame as PNG.
func snapshot(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	a, err := newApp(cfg, log, snapshotCols, snapshotRows)
	if err != nil {
		return err
	}
	for _, res := range scene.LoadAll(ctx, cfg.Models) {
		a.onModel(res)
	}

	req := a.labelRequest()
	l, err := a.gen.Generate(ctx, req)
	a.onLabel(label.Result{Seq: req.Seq, Label: l, Err: err})

	a.frame()
	if err := a.fb.SavePNG(cfg.Snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	log.Info("snapshot written", "path", cfg.Snapshot)
	return nil
}

func run(cfg *config.Config, log *slog.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	a, err := newApp(cfg, log, width, height)
	if err != nil {
		return err
	}

	// Context for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if cfg.Watch {
		w, err := scene.Watch(cfg.Models, log)
		if err != nil {
			log.Warn("model watching disabled", "error", err)
		} else {
			defer w.Close()
			go w.Run(ctx, a.reloads)
		}
	}

	log.Info("starting", "fps", cfg.FPS, "models", len(cfg.Models), "font", a.gen.Source().String())
	a.start(ctx)

	hud := NewHUD()
	ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-sigChan:
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				a.resize(width, height)
			case uv.KeyPressEvent:
				if isQuit(ev) {
					return nil
				}
				if k, ok := keyFor(ev); ok {
					a.handleKey(ctx, k)
				}
			}

		case res := <-a.models:
			a.onModel(res)

		case res := <-a.labels:
			a.onLabel(res)

		case p := <-a.reloads:
			a.onReload(ctx, p)

		case <-ticker.C:
			a.frame()
			area := uv.Rect(0, 0, width, height)
			a.fb.Draw(term, area)
			if cfg.HUD {
				hud.UpdateFPS()
				hud.Draw(term, width, height, a.hudInfo())
			}
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
