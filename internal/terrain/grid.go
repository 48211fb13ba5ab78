// Package terrain holds the battlefield grid: what kind of ground lies under
// each cell and how high it is.
package terrain

import (
	"math"

	"github.com/Garsondee/Turn-Tactics/internal/game"
)

// DefaultCellSize is the world-space width of one grid cell.
const DefaultCellSize = 5.0

// Grid is a row-major terrain map. It implements game.Terrain.
type Grid struct {
	Cols     int
	Rows     int
	CellSize float64
	Cells    []game.Tile // index = row*Cols + col
}

// NewGrid creates an all-empty, height-0 grid.
func NewGrid(cols, rows int, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{Cols: cols, Rows: rows, CellSize: cellSize, Cells: make([]game.Tile, cols*rows)}
}

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && col < g.Cols && row >= 0 && row < g.Rows
}

// At returns the tile at (col, row). Out-of-bounds cells read as empty ground.
func (g *Grid) At(col, row int) game.Tile {
	if !g.inBounds(col, row) {
		return game.Tile{}
	}
	return g.Cells[row*g.Cols+col]
}

// Set overwrites a cell. Out-of-bounds writes are ignored; height is clamped
// to 0..100.
func (g *Grid) Set(col, row int, kind game.TerrainKind, height int) {
	if !g.inBounds(col, row) {
		return
	}
	if height < 0 {
		height = 0
	} else if height > 100 {
		height = 100
	}
	g.Cells[row*g.Cols+col] = game.Tile{Kind: kind, Height: height}
}

// CellOf converts a world coordinate to the cell containing it.
func (g *Grid) CellOf(x, y float64) (col, row int) {
	return int(math.Floor(x / g.CellSize)), int(math.Floor(y / g.CellSize))
}

// TerrainAt returns the tile under a world coordinate.
func (g *Grid) TerrainAt(x, y float64) game.Tile {
	col, row := g.CellOf(x, y)
	return g.At(col, row)
}

// Count returns how many cells are of the given kind.
func (g *Grid) Count(kind game.TerrainKind) int {
	n := 0
	for _, c := range g.Cells {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// Width and Height return the grid's extent in world units.
func (g *Grid) Width() float64  { return float64(g.Cols) * g.CellSize }
func (g *Grid) Height() float64 { return float64(g.Rows) * g.CellSize }

// Barricades turns finished engineer builds into obstacle cells under the
// engineer. It implements game.ObstacleBuilder.
type Barricades struct {
	Grid  *Grid
	Built int
}

// BuildObstacle marks the cell under the engineer as an obstacle, keeping its
// height.
func (b *Barricades) BuildObstacle(engineer *game.Unit) {
	p := engineer.Position()
	col, row := b.Grid.CellOf(p.X, p.Y)
	if !b.Grid.inBounds(col, row) {
		return
	}
	b.Grid.Set(col, row, game.TerrainObstacle, b.Grid.At(col, row).Height)
	b.Built++
}
