// Package scenario loads battle setups (rosters, rally points, terrain) from
// YAML and turns them into game options.
package scenario

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Turn-Tactics/internal/config"
	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/terrain"
)

var (
	// ErrInvalid marks a scenario document that cannot produce a battle.
	ErrInvalid = errors.New("invalid scenario")
	// ErrUnknown is returned by Builtin for names it does not ship.
	ErrUnknown = errors.New("unknown scenario")
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// UnitSpec places one unit.
type UnitSpec struct {
	Role string  `yaml:"role"`
	Team string  `yaml:"team"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Rally holds each team's advance point as [x, y].
type Rally struct {
	Red  [2]float64 `yaml:"red"`
	Blue [2]float64 `yaml:"blue"`
}

// TerrainSpec describes the grid: either two CSV layers (Kinds, Heights),
// or a generated grid of Cols x Rows. Nil chances use the defaults.
// Relative CSV paths are resolved against the scenario file's directory.
type TerrainSpec struct {
	Kinds    string   `yaml:"kinds"`
	Heights  string   `yaml:"heights"`
	Cols     int      `yaml:"cols"`
	Rows     int      `yaml:"rows"`
	CellSize float64  `yaml:"cellSize"`
	Seed     int64    `yaml:"seed"`
	Obstacle *float64 `yaml:"obstacle"`
	Water    *float64 `yaml:"water"`
	Mountain *float64 `yaml:"mountain"`
}

func (t *TerrainSpec) fromCSV() bool { return t.Kinds != "" || t.Heights != "" }

// Scenario is one battle setup.
type Scenario struct {
	Name      string       `yaml:"name"`
	Attacker  string       `yaml:"attacker"`
	Seed      int64        `yaml:"seed"`
	HitChance *float64     `yaml:"hitChance"`
	Rally     Rally        `yaml:"rally"`
	Terrain   *TerrainSpec `yaml:"terrain"`
	Units     []UnitSpec   `yaml:"units"`

	dir string
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a scenario file.
func Load(file string) (*Scenario, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	s.dir = filepath.Dir(file)
	return s, nil
}

// Builtin returns one of the scenarios shipped with the binary.
func Builtin(name string) (*Scenario, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return Parse(data)
}

// Names lists the built-in scenarios.
func Names() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve treats ref as a built-in name first, then as a file path.
func Resolve(ref string) (*Scenario, error) {
	s, err := Builtin(ref)
	if err == nil || !errors.Is(err, ErrUnknown) {
		return s, err
	}
	return Load(ref)
}

// Validate checks every name and number the battle will need.
func (s *Scenario) Validate() error {
	if s.Attacker != "" {
		if _, err := game.ParseTeam(s.Attacker); err != nil {
			return fmt.Errorf("%w: attacker: %v", ErrInvalid, err)
		}
	}
	if s.HitChance != nil && (*s.HitChance < 0 || *s.HitChance > 1) {
		return fmt.Errorf("%w: hitChance %.2f outside [0,1]", ErrInvalid, *s.HitChance)
	}
	if len(s.Units) == 0 {
		return fmt.Errorf("%w: no units", ErrInvalid)
	}
	for i, u := range s.Units {
		if _, err := game.ParseRole(u.Role); err != nil {
			return fmt.Errorf("%w: unit %d: %v", ErrInvalid, i, err)
		}
		if _, err := game.ParseTeam(u.Team); err != nil {
			return fmt.Errorf("%w: unit %d: %v", ErrInvalid, i, err)
		}
	}
	if t := s.Terrain; t != nil {
		switch {
		case t.fromCSV() && (t.Kinds == "" || t.Heights == ""):
			return fmt.Errorf("%w: terrain csv needs both kinds and heights", ErrInvalid)
		case !t.fromCSV() && (t.Cols <= 0 || t.Rows <= 0):
			return fmt.Errorf("%w: terrain needs positive cols and rows", ErrInvalid)
		}
	}
	return nil
}

// Grid loads or generates the scenario's terrain, or returns nil when it has
// none.
func (s *Scenario) Grid() (*terrain.Grid, error) {
	t := s.Terrain
	if t == nil {
		return nil, nil
	}
	if t.fromCSV() {
		g, err := terrain.LoadFiles(s.resolve(t.Kinds), s.resolve(t.Heights), t.CellSize)
		if err != nil {
			return nil, fmt.Errorf("scenario %s terrain: %w", s.Name, err)
		}
		return g, nil
	}
	c := terrain.DefaultChances
	if t.Obstacle != nil {
		c.Obstacle = *t.Obstacle
	}
	if t.Water != nil {
		c.Water = *t.Water
	}
	if t.Mountain != nil {
		c.Mountain = *t.Mountain
	}
	return terrain.GenerateSeeded(t.Cols, t.Rows, t.CellSize, t.Seed, c), nil
}

func (s *Scenario) resolve(file string) string {
	if filepath.IsAbs(file) || s.dir == "" {
		return file
	}
	return filepath.Join(s.dir, file)
}

// Options builds the battle setup. Callers append their own options after
// these to override seed or hit chance. Terrain, when present, also receives
// finished engineer builds.
func (s *Scenario) Options() ([]game.Option, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	opts := []game.Option{
		game.WithSeed(s.Seed),
		game.WithRally(game.TeamRed, s.Rally.Red[0], s.Rally.Red[1]),
		game.WithRally(game.TeamBlue, s.Rally.Blue[0], s.Rally.Blue[1]),
	}
	if s.Attacker != "" {
		team, _ := game.ParseTeam(s.Attacker)
		opts = append(opts, game.WithAttacker(team))
	}
	if s.HitChance != nil {
		opts = append(opts, game.WithHitChance(*s.HitChance))
	}
	g, err := s.Grid()
	if err != nil {
		return nil, err
	}
	if g != nil {
		opts = append(opts, game.WithTerrain(g), game.WithObstacleBuilder(&terrain.Barricades{Grid: g}))
	}
	for _, u := range s.Units {
		role, _ := game.ParseRole(u.Role)
		team, _ := game.ParseTeam(u.Team)
		opts = append(opts, game.WithUnit(role, team, u.X, u.Y))
	}
	return opts, nil
}

// Defaults turns configured battle settings into options. Put them before a
// scenario's own options so the scenario wins.
func Defaults(cfg config.BattleConfig) ([]game.Option, error) {
	var opts []game.Option
	if cfg.HitChance > 0 {
		opts = append(opts, game.WithHitChance(cfg.HitChance))
	}
	if cfg.Attacker != "" {
		t, err := game.ParseTeam(cfg.Attacker)
		if err != nil {
			return nil, fmt.Errorf("configured attacker: %w", err)
		}
		opts = append(opts, game.WithAttacker(t))
	}
	return opts, nil
}
