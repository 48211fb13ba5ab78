package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Turn-Tactics/internal/config"
	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/logging"
	"github.com/Garsondee/Turn-Tactics/internal/scenario"
	"github.com/Garsondee/Turn-Tactics/internal/store"
	"github.com/Garsondee/Turn-Tactics/internal/terrain"
)

type options struct {
	runs      int
	turns     int
	seedBase  int64
	seedStep  int64
	scenario  string
	configDir string
	db        string
	logLevel  string
	saveMap   string
}

func main() {
	var o options
	flag.IntVar(&o.runs, "runs", 5, "number of headless battles")
	flag.IntVar(&o.turns, "turns", 0, "turn cap per run (0 = battle.maxTurns from config)")
	flag.Int64Var(&o.seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&o.scenario, "scenario", "", "built-in scenario name or YAML file (default battle.scenario)")
	flag.StringVar(&o.configDir, "config", "", "directory holding tactics.cfg")
	flag.StringVar(&o.db, "db", "", "sqlite file to save replays into (overrides storage config)")
	flag.StringVar(&o.logLevel, "log-level", "", "log level (default logLevel from config)")
	flag.StringVar(&o.saveMap, "save-terrain", "", "directory to write run 1's starting terrain into as CSV layers")
	flag.Parse()

	if err := run(context.Background(), o); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	if o.runs <= 0 {
		return errors.New("-runs must be > 0")
	}
	if o.turns < 0 {
		return errors.New("-turns must be >= 0")
	}
	if err := config.Load(o.configDir); err != nil && !config.IsNotFound(err) {
		return err
	}
	level := o.logLevel
	if level == "" {
		level = config.GetString("logLevel")
	}
	logger := logging.New(level, os.Stderr)

	battleCfg := config.GetBattleConfig()
	if o.turns == 0 {
		o.turns = battleCfg.MaxTurns
	}
	if o.scenario == "" {
		o.scenario = battleCfg.Scenario
	}
	sc, err := scenario.Resolve(o.scenario)
	if err != nil {
		return err
	}
	base, err := scenario.Defaults(battleCfg)
	if err != nil {
		return err
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	st, err := openStore(o, logger)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("scenario=%s runs=%d turns=%d seed_base=%d seed_step=%d\n\n",
		sc.Name, o.runs, o.turns, o.seedBase, o.seedStep)

	all := make([]runStats, 0, o.runs)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		// Options per run: finished builds mutate the grid.
		scOpts, err := sc.Options()
		if err != nil {
			return err
		}
		opts := append(append([]game.Option(nil), base...), scOpts...)
		opts = append(opts, game.WithSeed(seed), game.WithLogger(logger.With().Int("run", i+1).Logger()))
		b := game.NewBattle(opts...)
		if i == 0 && o.saveMap != "" {
			if err := saveTerrain(b, o.saveMap); err != nil {
				return err
			}
		}
		over := b.RunUntil((*game.Battle).Over, o.turns)

		rs := collectStats(i+1, seed, b, over)
		if st != nil {
			rs.uuid = uuid.NewString()
			rec := store.Record{UUID: rs.uuid, Scenario: sc.Name, Battle: b}
			if _, err := st.SaveBattle(ctx, rec); err != nil {
				return err
			}
		}
		all = append(all, rs)
		printRun(os.Stdout, rs)
	}
	printAggregate(os.Stdout, all)

	if st != nil {
		counts, err := st.OutcomeCounts(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("stored_outcomes (%s): %s\n", st.Backend, formatCounts(counts))
	}
	return nil
}

// saveTerrain writes the battle's grid before any turn has changed it.
func saveTerrain(b *game.Battle, dir string) error {
	g, ok := b.Terrain().(*terrain.Grid)
	if !ok {
		return errors.New("-save-terrain: scenario has no terrain grid")
	}
	if err := g.SaveDir(dir); err != nil {
		return fmt.Errorf("-save-terrain: %w", err)
	}
	fmt.Printf("terrain saved to %s\n", filepath.Join(dir, terrain.KindsFile))
	return nil
}

// openStore returns nil when persistence is off.
func openStore(o options, logger zerolog.Logger) (*store.Store, error) {
	cfg := config.GetStorageConfig()
	if o.db != "" {
		cfg.Type = "sqlite"
		cfg.SQLite.Path = o.db
	}
	st, err := store.Open(cfg, logger)
	if errors.Is(err, store.ErrDisabled) {
		return nil, nil
	}
	return st, err
}
