package terrain

import (
	"math/rand"

	"github.com/Garsondee/Turn-Tactics/internal/game"
)

// Chances are the per-cell probabilities of each non-empty terrain kind. They
// are checked in order obstacle, water, mountain against a single roll.
type Chances struct {
	Obstacle float64
	Water    float64
	Mountain float64
}

// DefaultChances matches the classic map generator.
var DefaultChances = Chances{Obstacle: 0.20, Water: 0.05, Mountain: 0.10}

// Generate fills a new grid with random terrain and heights in [0, 100).
// The same rng state always yields the same grid.
func Generate(cols, rows int, cellSize float64, rng *rand.Rand, c Chances) *Grid {
	g := NewGrid(cols, rows, cellSize)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			roll := rng.Float64()
			kind := game.TerrainEmpty
			switch {
			case roll < c.Obstacle:
				kind = game.TerrainObstacle
			case roll < c.Obstacle+c.Water:
				kind = game.TerrainWater
			case roll < c.Obstacle+c.Water+c.Mountain:
				kind = game.TerrainMountain
			}
			g.Cells[row*cols+col] = game.Tile{Kind: kind, Height: rng.Intn(100)}
		}
	}
	return g
}

// GenerateSeeded is Generate with its own seeded source.
func GenerateSeeded(cols, rows int, cellSize float64, seed int64, c Chances) *Grid {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
	return Generate(cols, rows, cellSize, rng, c)
}
