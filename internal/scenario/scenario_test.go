package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Garsondee/Turn-Tactics/internal/config"
	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/terrain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
name: ambush
attacker: blue
seed: 99
hitChance: 1
rally:
  red: [10, 0]
  blue: [0, 0]
units:
  - {role: Assault, team: red, x: 0, y: 0}
  - {role: medic, team: blue, x: 20, y: 0}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "ambush", s.Name)
	assert.Equal(t, int64(99), s.Seed)
	require.NotNil(t, s.HitChance)
	assert.Equal(t, 1.0, *s.HitChance)
	assert.Equal(t, [2]float64{10, 0}, s.Rally.Red)
	require.Len(t, s.Units, 2)
	g, err := s.Grid()
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":     "units: [",
		"no units":     "name: empty\n",
		"bad role":     "units:\n  - {role: sapper, team: red}\n",
		"bad team":     "units:\n  - {role: medic, team: green}\n",
		"bad attacker": "attacker: purple\nunits:\n  - {role: medic, team: red}\n",
		"bad chance":   "hitChance: 1.5\nunits:\n  - {role: medic, team: red}\n",
		"bad terrain":  "terrain: {cols: 0, rows: 3}\nunits:\n  - {role: medic, team: red}\n",
		"half csv":     "terrain: {kinds: t.csv}\nunits:\n  - {role: medic, team: red}\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestOptions_BuildsBattle(t *testing.T) {
	s, err := Parse([]byte(sample))
	require.NoError(t, err)
	opts, err := s.Options()
	require.NoError(t, err)

	b := game.NewBattle(opts...)
	assert.Equal(t, game.TeamBlue, b.Attacker())
	assert.Equal(t, int64(99), b.Seed())
	assert.Equal(t, game.Point{X: 10}, b.Rally(game.TeamRed))
	require.Len(t, b.Units(), 2)
	assert.Equal(t, game.RoleAssault, b.Units()[0].Role())
	assert.Equal(t, game.TeamBlue, b.Units()[1].Team())

	// blue acts first
	b.RunTurn()
	assert.Equal(t, "blue", b.Log().Entries()[0].Team)
}

func TestOptions_CallerOverridesSeed(t *testing.T) {
	s, err := Builtin("duel")
	require.NoError(t, err)
	opts, err := s.Options()
	require.NoError(t, err)
	b := game.NewBattle(append(opts, game.WithSeed(1234))...)
	assert.Equal(t, int64(1234), b.Seed())
}

func TestBuiltin(t *testing.T) {
	assert.Equal(t, []string{"duel", "skirmish"}, Names())
	for _, name := range Names() {
		s, err := Builtin(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name)
	}

	s, err := Builtin("skirmish")
	require.NoError(t, err)
	g, err := s.Grid()
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, 40, g.Cols)
	assert.Equal(t, 20, g.Rows)

	_, err = Builtin("nope")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestSkirmishRunsToCompletion(t *testing.T) {
	s, err := Builtin("skirmish")
	require.NoError(t, err)
	opts, err := s.Options()
	require.NoError(t, err)
	b := game.NewBattle(opts...)
	b.RunUntil((*game.Battle).Over, 400)
	assert.Positive(t, b.Log().Len())
	for _, u := range b.Units() {
		assert.GreaterOrEqual(t, u.Health(), 0.0)
		assert.GreaterOrEqual(t, u.Armor(), 0.0)
	}
}

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ambush.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

	s, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "ambush", s.Name)

	s, err = Resolve(file)
	require.NoError(t, err)
	assert.Equal(t, "ambush", s.Name)

	s, err = Resolve("duel")
	require.NoError(t, err)
	assert.Equal(t, "duel", s.Name)

	_, err = Resolve(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultsLoseToScenario(t *testing.T) {
	defaults, err := Defaults(config.BattleConfig{HitChance: 0.3, Attacker: "blue"})
	require.NoError(t, err)
	assert.Len(t, defaults, 2)

	s, err := Builtin("duel")
	require.NoError(t, err)
	opts, err := s.Options()
	require.NoError(t, err)

	b := game.NewBattle(append(defaults, opts...)...)
	assert.Equal(t, game.TeamRed, b.Attacker(), "scenario attacker wins")

	b = game.NewBattle(defaults...)
	assert.Equal(t, game.TeamBlue, b.Attacker())

	_, err = Defaults(config.BattleConfig{Attacker: "green"})
	assert.ErrorIs(t, err, game.ErrUnknownTeam)

	none, err := Defaults(config.BattleConfig{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoad_CSVTerrainRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	maps := filepath.Join(dir, "maps")
	src := terrain.NewGrid(3, 2, 10)
	src.Set(1, 0, game.TerrainWater, 12)
	src.Set(2, 1, game.TerrainObstacle, 80)
	require.NoError(t, src.SaveDir(maps))

	doc := `
name: river
terrain:
  kinds: maps/terrain_map.csv
  heights: maps/height_map.csv
  cellSize: 10
units:
  - {role: engineer, team: red, x: 15, y: 5}
  - {role: medic, team: blue, x: 25, y: 15}
`
	file := filepath.Join(dir, "river.yaml")
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o600))

	s, err := Load(file)
	require.NoError(t, err)
	opts, err := s.Options()
	require.NoError(t, err)
	b := game.NewBattle(opts...)

	snap := b.Snapshot()
	assert.Equal(t, game.Tile{Kind: game.TerrainWater, Height: 12}, snap.Units[0].Tile)
	assert.Equal(t, game.Tile{Kind: game.TerrainObstacle, Height: 80}, snap.Units[1].Tile)
}

func TestOptions_MissingCSVTerrain(t *testing.T) {
	s, err := Parse([]byte("terrain: {kinds: nowhere.csv, heights: nowhere.csv}\nunits:\n  - {role: medic, team: red}\n"))
	require.NoError(t, err)
	_, err = s.Options()
	assert.Error(t, err)
}
