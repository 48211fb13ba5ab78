package terrain

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_AllEmpty(t *testing.T) {
	g := NewGrid(10, 8, 0)
	if g.CellSize != DefaultCellSize {
		t.Fatalf("zero cell size should default, got %.1f", g.CellSize)
	}
	if n := g.Count(game.TerrainEmpty); n != 80 {
		t.Fatalf("expected 80 empty cells, got %d", n)
	}
}

func TestGrid_OutOfBoundsIsEmpty(t *testing.T) {
	g := NewGrid(4, 4, 10)
	g.Set(0, 0, game.TerrainMountain, 50)
	for _, p := range [][2]float64{{-1, 0}, {0, -1}, {40, 0}, {0, 40}, {1e9, 1e9}} {
		if tile := g.TerrainAt(p[0], p[1]); tile != (game.Tile{}) {
			t.Fatalf("(%.0f,%.0f) should read as empty, got %+v", p[0], p[1], tile)
		}
	}
	g.Set(99, 99, game.TerrainWater, 10) // ignored
}

func TestGrid_TerrainAtMapsWorldToCell(t *testing.T) {
	g := NewGrid(4, 4, 10)
	g.Set(2, 1, game.TerrainWater, 33)
	tile := g.TerrainAt(25, 19.9)
	assert.Equal(t, game.TerrainWater, tile.Kind)
	assert.Equal(t, 33, tile.Height)
	assert.Equal(t, game.TerrainEmpty, g.TerrainAt(19.9, 19.9).Kind)
}

func TestGrid_SetClampsHeight(t *testing.T) {
	g := NewGrid(2, 1, 1)
	g.Set(0, 0, game.TerrainMountain, 250)
	g.Set(1, 0, game.TerrainMountain, -4)
	assert.Equal(t, 100, g.At(0, 0).Height)
	assert.Equal(t, 0, g.At(1, 0).Height)
}

func TestGenerate_SameSeedSameGrid(t *testing.T) {
	a := GenerateSeeded(30, 20, 5, 7, DefaultChances)
	b := GenerateSeeded(30, 20, 5, 7, DefaultChances)
	assert.Equal(t, a.Cells, b.Cells)
}

func TestGenerate_RoughProportions(t *testing.T) {
	g := GenerateSeeded(200, 200, 5, 1, DefaultChances)
	total := float64(len(g.Cells))
	obstacles := float64(g.Count(game.TerrainObstacle)) / total
	water := float64(g.Count(game.TerrainWater)) / total
	mountains := float64(g.Count(game.TerrainMountain)) / total
	assert.InDelta(t, 0.20, obstacles, 0.02)
	assert.InDelta(t, 0.05, water, 0.01)
	assert.InDelta(t, 0.10, mountains, 0.015)
	for _, c := range g.Cells {
		require.True(t, c.Height >= 0 && c.Height < 100, "height %d out of range", c.Height)
	}
}

func TestGenerate_ZeroChancesIsFlat(t *testing.T) {
	g := GenerateSeeded(10, 10, 5, 3, Chances{})
	assert.Equal(t, 100, g.Count(game.TerrainEmpty))
}

func TestCSV_RoundTrip(t *testing.T) {
	g := GenerateSeeded(12, 9, 5, 11, DefaultChances)
	var kinds, heights bytes.Buffer
	require.NoError(t, g.WriteCSV(&kinds, &heights))
	assert.Equal(t, 9, strings.Count(kinds.String(), "\n"))

	back, err := ReadCSV(&kinds, &heights, 5)
	require.NoError(t, err)
	assert.Equal(t, g.Cols, back.Cols)
	assert.Equal(t, g.Rows, back.Rows)
	assert.Equal(t, g.Cells, back.Cells)
}

func TestSaveDirAndLoadFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "maps")
	g := GenerateSeeded(8, 6, 5, 3, DefaultChances)
	require.NoError(t, g.SaveDir(dir))

	back, err := LoadFiles(filepath.Join(dir, KindsFile), filepath.Join(dir, HeightsFile), 5)
	require.NoError(t, err)
	assert.Equal(t, g.Cells, back.Cells)

	_, err = LoadFiles(filepath.Join(dir, "missing.csv"), filepath.Join(dir, HeightsFile), 5)
	assert.Error(t, err)
}

func TestReadCSV_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"row count mismatch": {"0,1\n1,0\n", "5,5\n"},
		"ragged row":         {"0,1\n1\n", "5,5\n5,5\n"},
		"unknown kind":       {"0,9\n", "5,5\n"},
		"negative kind":      {"-1,0\n", "5,5\n"},
		"bad height":         {"0,1\n", "5,x\n"},
	}
	for name, c := range cases {
		_, err := ReadCSV(strings.NewReader(c[0]), strings.NewReader(c[1]), 5)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestBarricades_BuildMarksCellUnderEngineer(t *testing.T) {
	g := NewGrid(10, 10, 10)
	g.Set(3, 4, game.TerrainEmpty, 42)
	b := &Barricades{Grid: g}

	battle := game.NewBattle(
		game.WithTerrain(g),
		game.WithObstacleBuilder(b),
		game.WithRedUnit(game.RoleEngineer, 35, 45),
		game.WithBlueUnit(game.RoleEngineer, 95, 95),
	)
	eng := battle.UnitByLabel("R0")
	act, err := game.NewBuildObstacleAction(eng)
	require.NoError(t, err)
	require.NoError(t, battle.Issue(act))
	battle.RunTurns(3)

	assert.Equal(t, 1, b.Built)
	assert.Equal(t, game.Tile{Kind: game.TerrainObstacle, Height: 42}, g.At(3, 4))
	assert.Equal(t, game.TerrainObstacle, battle.Snapshot().Units[0].Tile.Kind)
}
