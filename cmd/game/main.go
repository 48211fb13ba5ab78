package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Turn-Tactics/internal/config"
	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/logging"
	"github.com/Garsondee/Turn-Tactics/internal/scenario"
	"github.com/Garsondee/Turn-Tactics/internal/viewer"
)

func main() {
	configDir := flag.String("config", "", "directory holding tactics.cfg")
	scenarioRef := flag.String("scenario", "", "built-in scenario name or YAML file (default battle.scenario)")
	seed := flag.Int64("seed", 0, "battle seed (0 = scenario seed)")
	flag.Parse()

	if err := config.Load(*configDir); err != nil && !config.IsNotFound(err) {
		log.Fatal(err)
	}
	logger := logging.New(config.GetString("logLevel"), os.Stderr)
	cfg := config.GetBattleConfig()

	ref := *scenarioRef
	if ref == "" {
		ref = cfg.Scenario
	}
	sc, err := scenario.Resolve(ref)
	if err != nil {
		log.Fatal(err)
	}
	opts, err := scenario.Defaults(cfg)
	if err != nil {
		log.Fatal(err)
	}
	scOpts, err := sc.Options()
	if err != nil {
		log.Fatal(err)
	}
	opts = append(opts, scOpts...)
	if *seed != 0 {
		opts = append(opts, game.WithSeed(*seed))
	}
	opts = append(opts, game.WithLogger(logger))

	v := viewer.New(game.NewBattle(opts...), viewer.Options{
		TurnDelay: cfg.TurnDelay,
		MaxTurns:  cfg.MaxTurns,
		Title:     "Turn Tactics - " + sc.Name,
	})
	ebiten.SetWindowTitle(v.Title())
	ebiten.SetWindowSize(v.WindowSize())
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
