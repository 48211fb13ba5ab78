package viewer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Turn-Tactics/internal/game"
)

const (
	unitRadius  = 6
	statusTTL   = 3 * time.Second
	headerLines = 7
)

var face = text.NewGoXFace(basicfont.Face7x13)

var (
	colBackground = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	colField      = color.RGBA{R: 28, G: 42, B: 28, A: 255}
	colBorder     = color.RGBA{R: 65, G: 90, B: 65, A: 255}
	colPanel      = color.RGBA{R: 10, G: 12, B: 10, A: 248}
	colText       = color.RGBA{R: 200, G: 210, B: 200, A: 255}
	colDim        = color.RGBA{R: 130, G: 140, B: 130, A: 255}
	colDead       = color.RGBA{R: 90, G: 90, B: 90, A: 200}
)

// tileColor shades a terrain tile; higher ground is lighter.
func tileColor(t game.Tile) color.RGBA {
	var c color.RGBA
	switch t.Kind {
	case game.TerrainObstacle:
		c = color.RGBA{R: 88, G: 82, B: 70, A: 255}
	case game.TerrainWater:
		c = color.RGBA{R: 55, G: 70, B: 120, A: 255}
	case game.TerrainMountain:
		c = color.RGBA{R: 110, G: 100, B: 80, A: 255}
	default:
		c = colField
	}
	lift := uint8(t.Height * 30 / 100)
	c.R, c.G, c.B = addClamp(c.R, lift), addClamp(c.G, lift), addClamp(c.B, lift)
	return c
}

func addClamp(v, d uint8) uint8 {
	if int(v)+int(d) > 255 {
		return 255
	}
	return v + d
}

func teamColor(team string) color.RGBA {
	if team == game.TeamBlue.String() {
		return color.RGBA{R: 70, G: 110, B: 210, A: 255}
	}
	return color.RGBA{R: 210, G: 70, B: 70, A: 255}
}

func busyColor(busy string) color.RGBA {
	switch busy {
	case "building":
		return color.RGBA{R: 230, G: 180, B: 60, A: 255}
	case "healing":
		return color.RGBA{R: 90, G: 220, B: 110, A: 255}
	case "reloading":
		return color.RGBA{R: 200, G: 200, B: 200, A: 255}
	case "aiming":
		return color.RGBA{R: 255, G: 240, B: 90, A: 255}
	default:
		return color.RGBA{}
	}
}

func drawText(dst *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	v.drawField(screen)
	snap := v.battle.Snapshot()
	v.drawUnits(screen, snap)
	v.drawPanel(screen, snap, time.Now())
}

func (v *Viewer) drawField(screen *ebiten.Image) {
	ox, oy := float32(borderWidth), float32(borderWidth)
	vector.FillRect(screen, ox, oy, fieldWidth, fieldHeight, colField, false)

	if g := v.grid; g != nil {
		cell := float32(g.CellSize * v.view.scale)
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				t := g.At(col, row)
				if t.Kind == game.TerrainEmpty && t.Height == 0 {
					continue
				}
				x, y := v.view.toScreen(float64(col)*g.CellSize, float64(row)*g.CellSize)
				vector.FillRect(screen, x, y, cell, cell, tileColor(t), false)
			}
		}
	}

	for _, team := range []game.Team{game.TeamRed, game.TeamBlue} {
		p := v.battle.Rally(team)
		x, y := v.view.toScreen(p.X, p.Y)
		c := teamColor(team.String())
		vector.StrokeLine(screen, x-5, y-5, x+5, y+5, 1.5, c, false)
		vector.StrokeLine(screen, x-5, y+5, x+5, y-5, 1.5, c, false)
	}

	vector.StrokeRect(screen, ox-1, oy-1, fieldWidth+2, fieldHeight+2, 2.0, colBorder, false)
}

func (v *Viewer) drawUnits(screen *ebiten.Image, snap game.BattleSnapshot) {
	for _, u := range snap.Units {
		x, y := v.view.toScreen(u.X, u.Y)
		if !u.Alive {
			vector.StrokeLine(screen, x-4, y-4, x+4, y+4, 2, colDead, false)
			vector.StrokeLine(screen, x-4, y+4, x+4, y-4, 2, colDead, false)
			continue
		}
		vector.FillCircle(screen, x, y, unitRadius, teamColor(u.Team), true)
		if u.Busy != "idle" {
			vector.StrokeCircle(screen, x, y, unitRadius+3, 1.5, busyColor(u.Busy), true)
		}

		// Health bar.
		frac := float32(u.Health / 100)
		if frac > 1 {
			frac = 1
		}
		vector.FillRect(screen, x-8, y-unitRadius-6, 16, 3, color.RGBA{R: 40, G: 20, B: 20, A: 220}, false)
		vector.FillRect(screen, x-8, y-unitRadius-6, 16*frac, 3, color.RGBA{R: 80, G: 210, B: 80, A: 255}, false)

		if v.showLabels {
			drawText(screen, u.Label, int(x)+unitRadius+2, int(y)-6, colText)
		}
	}
}

func (v *Viewer) drawPanel(screen *ebiten.Image, snap game.BattleSnapshot, now time.Time) {
	px := borderWidth*2 + fieldWidth
	_, h := v.WindowSize()
	vector.FillRect(screen, float32(px), 0, logPanelWidth, float32(h), colPanel, false)
	vector.StrokeLine(screen, float32(px), 0, float32(px), float32(h), 1.0, colBorder, false)

	y := 4
	for _, line := range v.header(snap, now) {
		drawText(screen, line, px+8, y, colText)
		y += logLineHeight
	}
	vector.StrokeLine(screen, float32(px), float32(y+2), float32(px+logPanelWidth), float32(y+2), 1.0, colBorder, false)
	y += 6

	maxLines := (h - y - 4) / logLineHeight
	events := visibleEvents(v.battle.Log().Entries(), maxLines)
	for i, e := range events {
		recent := i >= len(events)-3
		c := colDim
		if recent {
			c = colText
			vector.FillRect(screen, float32(px+2), float32(y), logPanelWidth-4, logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, float32(px+5), float32(y+4), 3, 6, teamColor(e.Team), false)
		drawText(screen, e.String(), px+12, y, c)
		y += logLineHeight
	}
}

// header is the fixed block at the top of the side panel.
func (v *Viewer) header(snap game.BattleSnapshot, now time.Time) []string {
	red, blue := v.battle.Alive(game.TeamRed), v.battle.Alive(game.TeamBlue)
	state := "running"
	switch {
	case v.finished():
		state = "finished"
	case v.paused:
		state = "paused"
	}
	lines := []string{
		fmt.Sprintf("TURN %03d  seed=%d  attacker=%s", snap.Turn, snap.Seed, snap.Attacker),
		fmt.Sprintf("alive red=%d/%d blue=%d/%d", red, len(v.battle.Roster(game.TeamRed)),
			blue, len(v.battle.Roster(game.TeamBlue))),
		fmt.Sprintf("%s  delay=%s", state, v.opts.TurnDelay),
	}
	if v.finished() {
		out := game.DetermineOutcome(v.battle)
		lines = append(lines, fmt.Sprintf("outcome: %s (%s)", out.Outcome, out.Description))
	} else {
		lines = append(lines, "")
	}
	status := ""
	if v.status != "" && now.Sub(v.statusAt) < statusTTL {
		status = v.status
	}
	lines = append(lines, status,
		"SPACE pause  N step  C copy log",
		"+/- speed  L labels")
	return lines[:headerLines]
}

// visibleEvents keeps the newest entries that fit in maxLines.
func visibleEvents(events []game.Event, maxLines int) []game.Event {
	if maxLines <= 0 {
		return nil
	}
	if len(events) > maxLines {
		return events[len(events)-maxLines:]
	}
	return events
}
