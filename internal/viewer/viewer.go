// Package viewer renders a running battle in an ebiten window.
package viewer

import (
	"fmt"
	"math"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/terrain"
)

const (
	fieldWidth    = 960
	fieldHeight   = 640
	borderWidth   = 24
	logPanelWidth = 460
	logLineHeight = 14

	minDelay = 10 * time.Millisecond
	maxDelay = 2 * time.Second
)

// Options tunes playback.
type Options struct {
	TurnDelay time.Duration
	MaxTurns  int
	Title     string
}

// Viewer plays a battle one turn per TurnDelay. Space pauses, N steps while
// paused, C copies the event log, +/- change speed and L toggles labels.
type Viewer struct {
	battle *game.Battle
	grid   *terrain.Grid
	opts   Options

	paused     bool
	showLabels bool
	lastStep   time.Time
	status     string
	statusAt   time.Time
	prevKeys   map[ebiten.Key]bool

	view     viewport
	copyText func(string) error
}

// New wraps b. Terrain is drawn when the battle's terrain is a grid.
func New(b *game.Battle, opts Options) *Viewer {
	if opts.TurnDelay <= 0 {
		opts.TurnDelay = 100 * time.Millisecond
	}
	if opts.Title == "" {
		opts.Title = "Turn Tactics"
	}
	grid, _ := b.Terrain().(*terrain.Grid)
	return &Viewer{
		battle:     b,
		grid:       grid,
		opts:       opts,
		showLabels: true,
		prevKeys:   map[ebiten.Key]bool{},
		view:       fitViewport(b, grid),
		copyText:   clipboard.WriteAll,
	}
}

// Title is the window title.
func (v *Viewer) Title() string { return v.opts.Title }

// WindowSize is the full window in pixels.
func (v *Viewer) WindowSize() (int, int) {
	return borderWidth*2 + fieldWidth + logPanelWidth, borderWidth*2 + fieldHeight
}

func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.WindowSize()
}

func (v *Viewer) Update() error {
	v.handleInput()
	v.advance(time.Now())
	return nil
}

// finished reports whether playback has nothing left to run.
func (v *Viewer) finished() bool {
	return v.battle.Over() || (v.opts.MaxTurns > 0 && v.battle.Turn() >= v.opts.MaxTurns)
}

// advance runs one turn once the delay has elapsed.
func (v *Viewer) advance(now time.Time) bool {
	if v.paused || v.finished() {
		return false
	}
	if !v.lastStep.IsZero() && now.Sub(v.lastStep) < v.opts.TurnDelay {
		return false
	}
	v.lastStep = now
	v.battle.RunTurn()
	return true
}

// handleInput processes keypresses (edge-triggered).
func (v *Viewer) handleInput() {
	current := map[ebiten.Key]bool{}
	for _, k := range []ebiten.Key{
		ebiten.KeySpace, ebiten.KeyN, ebiten.KeyC, ebiten.KeyL,
		ebiten.KeyEqual, ebiten.KeyMinus,
	} {
		current[k] = ebiten.IsKeyPressed(k)
		if current[k] && !v.prevKeys[k] {
			v.press(k, time.Now())
		}
	}
	v.prevKeys = current
}

func (v *Viewer) press(k ebiten.Key, now time.Time) {
	switch k {
	case ebiten.KeySpace:
		v.paused = !v.paused
		if v.paused {
			v.setStatus("paused", now)
		} else {
			v.setStatus("running", now)
		}
	case ebiten.KeyN:
		if v.paused && !v.finished() {
			v.battle.RunTurn()
		}
	case ebiten.KeyC:
		v.copyLog(now)
	case ebiten.KeyL:
		v.showLabels = !v.showLabels
	case ebiten.KeyEqual:
		v.opts.TurnDelay = clampDelay(v.opts.TurnDelay / 2)
		v.setStatus(fmt.Sprintf("turn delay %s", v.opts.TurnDelay), now)
	case ebiten.KeyMinus:
		v.opts.TurnDelay = clampDelay(v.opts.TurnDelay * 2)
		v.setStatus(fmt.Sprintf("turn delay %s", v.opts.TurnDelay), now)
	}
}

func (v *Viewer) copyLog(now time.Time) {
	log := v.battle.Log()
	text := log.Format() + log.Summary(v.battle.Turn(), v.battle.Units())
	if err := v.copyText(text); err != nil {
		v.setStatus("copy failed: "+err.Error(), now)
		return
	}
	v.setStatus(fmt.Sprintf("copied %d events", log.Len()), now)
}

func (v *Viewer) setStatus(s string, now time.Time) {
	v.status, v.statusAt = s, now
}

func clampDelay(d time.Duration) time.Duration {
	return time.Duration(math.Max(float64(minDelay), math.Min(float64(maxDelay), float64(d))))
}

// viewport maps battlefield coordinates onto the field area of the window.
type viewport struct {
	minX, minY float64
	scale      float64
}

func (vp viewport) toScreen(x, y float64) (float32, float32) {
	return float32(borderWidth + (x-vp.minX)*vp.scale), float32(borderWidth + (y-vp.minY)*vp.scale)
}

// fitViewport frames the terrain grid when there is one, otherwise every unit
// and rally point with a margin.
func fitViewport(b *game.Battle, grid *terrain.Grid) viewport {
	minX, minY, maxX, maxY := 0.0, 0.0, 0.0, 0.0
	if grid != nil {
		maxX, maxY = grid.Width(), grid.Height()
	} else {
		first := true
		extend := func(p game.Point) {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				return
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		for _, u := range b.Units() {
			extend(u.Position())
		}
		extend(b.Rally(game.TeamRed))
		extend(b.Rally(game.TeamBlue))
		const margin = 20
		minX, minY, maxX, maxY = minX-margin, minY-margin, maxX+margin, maxY+margin
	}
	w, h := math.Max(maxX-minX, 1), math.Max(maxY-minY, 1)
	return viewport{
		minX:  minX,
		minY:  minY,
		scale: math.Min(fieldWidth/w, fieldHeight/h),
	}
}
