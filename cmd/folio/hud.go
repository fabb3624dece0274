package main

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/folio/pkg/view"
)

var (
	barBg      = lipgloss.Color("235")
	barStyle   = lipgloss.NewStyle().Background(barBg).Foreground(lipgloss.Color("252"))
	titleStyle = lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("255")).Bold(true)
	keyStyle   = barStyle.Foreground(lipgloss.Color("243"))
	valueStyle = barStyle.Foreground(lipgloss.Color("81"))
	okStyle    = barStyle.Foreground(lipgloss.Color("78"))
	warnStyle  = barStyle.Foreground(lipgloss.Color("214"))
	errStyle   = barStyle.Foreground(lipgloss.Color("203")).Bold(true)
)

// assetStatus is what the HUD shows for one model.
type assetStatus int

const (
	assetLoading assetStatus = iota
	assetLoaded
	assetFailed
)

// HUD renders a status bar over the top and bottom rows.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// hudInfo is the state shown by one HUD frame.
type hudInfo struct {
	State        view.State
	Label        string
	LabelPending bool
	Models       []modelEntry
	Triangles    int
	Culled       int
}

type modelEntry struct {
	Name   string
	Status assetStatus
}

// top returns the top bar padded to width.
func (h *HUD) top(width int, info hudInfo) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" ◆ FOLIO "))
	b.WriteString(keyStyle.Render(" x ") + valueStyle.Render(fmt.Sprintf("%.2f", info.State.OffsetX)))
	b.WriteString(keyStyle.Render("  y ") + valueStyle.Render(fmt.Sprintf("%.2f", info.State.OffsetY)))
	b.WriteString(keyStyle.Render("  size ") + valueStyle.Render(fmt.Sprintf("%.2f", info.State.FrustumSize)))
	b.WriteString(keyStyle.Render("  label ") + valueStyle.Render(info.Label))
	if info.LabelPending {
		b.WriteString(warnStyle.Render(" …"))
	}

	fps := valueStyle.Render(fmt.Sprintf(" %.0f FPS ", h.fps))
	return pad(b.String(), fps, width)
}

// bottom returns the bottom bar padded to width.
func (h *HUD) bottom(width int, info hudInfo) string {
	var b strings.Builder
	for _, m := range info.Models {
		b.WriteString(" ")
		switch m.Status {
		case assetLoaded:
			b.WriteString(okStyle.Render("● " + m.Name))
		case assetFailed:
			b.WriteString(errStyle.Render("✗ " + m.Name))
		default:
			b.WriteString(warnStyle.Render("○ " + m.Name))
		}
	}
	stats := keyStyle.Render(fmt.Sprintf(" %d tris  %d culled ", info.Triangles, info.Culled))
	return pad(b.String(), stats, width)
}

func pad(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + barStyle.Render(strings.Repeat(" ", gap)) + right
}

// Draw paints both bars onto scr.
func (h *HUD) Draw(scr uv.Screen, width, height int, info hudInfo) {
	if width <= 0 || height <= 0 {
		return
	}
	uv.NewStyledString(h.top(width, info)).Draw(scr, uv.Rect(0, 0, width, 1))
	if height > 1 {
		uv.NewStyledString(h.bottom(width, info)).Draw(scr, uv.Rect(0, height-1, width, 1))
	}
}
