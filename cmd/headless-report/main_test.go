package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/scenario"
	"github.com/Garsondee/Turn-Tactics/internal/terrain"
)

func TestTeamSurvivalCounts(t *testing.T) {
	units := []game.UnitSnapshot{
		{Team: "red", Alive: true},
		{Team: "red", Alive: false},
		{Team: "blue", Alive: true},
		{Team: "blue", Alive: true},
	}

	redTotal, blueTotal, redSurvivors, blueSurvivors := teamSurvivalCounts(units)
	if redTotal != 2 || blueTotal != 2 {
		t.Fatalf("expected totals red=2 blue=2, got red=%d blue=%d", redTotal, blueTotal)
	}
	if redSurvivors != 1 || blueSurvivors != 2 {
		t.Fatalf("expected survivors red=1 blue=2, got red=%d blue=%d", redSurvivors, blueSurvivors)
	}
}

func TestDetectStalemate_TrueWhenMutualSurvivalAndQuiet(t *testing.T) {
	rs := runStats{
		turns:         500,
		overTurn:      -1,
		redTotal:      4,
		blueTotal:     4,
		redSurvivors:  3,
		blueSurvivors: 3,
		lastDeathTurn: 120,
	}

	isStalemate, reason := detectStalemate(rs)
	if !isStalemate {
		t.Fatalf("expected stalemate=true, got false (reason=%s)", reason)
	}
	if !strings.Contains(reason, "high_mutual_survival") {
		t.Fatalf("expected reason to mention high_mutual_survival, got: %s", reason)
	}
}

func TestDetectStalemate_FalseWhenBattleOver(t *testing.T) {
	rs := runStats{
		turns:         40,
		overTurn:      40,
		redTotal:      4,
		blueTotal:     4,
		redSurvivors:  4,
		blueSurvivors: 0,
	}

	if isStalemate, reason := detectStalemate(rs); isStalemate {
		t.Fatalf("expected stalemate=false for a finished battle (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWhenAttritionDecisive(t *testing.T) {
	rs := runStats{
		turns:         500,
		overTurn:      -1,
		redTotal:      4,
		blueTotal:     4,
		redSurvivors:  1,
		blueSurvivors: 4,
		lastDeathTurn: 100,
	}

	if isStalemate, reason := detectStalemate(rs); isStalemate {
		t.Fatalf("expected stalemate=false under decisive attrition (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWhenCasualtiesRecent(t *testing.T) {
	rs := runStats{
		turns:         500,
		overTurn:      -1,
		redTotal:      4,
		blueTotal:     4,
		redSurvivors:  3,
		blueSurvivors: 4,
		lastDeathTurn: 490,
	}

	isStalemate, reason := detectStalemate(rs)
	if isStalemate {
		t.Fatalf("expected stalemate=false after a recent death (reason=%s)", reason)
	}
	if !strings.Contains(reason, "recent_casualties") {
		t.Fatalf("expected reason to mention recent_casualties, got: %s", reason)
	}
}

func TestCollectStats_Duel(t *testing.T) {
	b := game.NewBattle(
		game.WithSeed(3),
		game.WithHitChance(1),
		game.WithRally(game.TeamRed, 40, 0),
		game.WithRally(game.TeamBlue, 0, 0),
		game.WithRedUnit(game.RoleAssault, 0, 0),
		game.WithBlueUnit(game.RoleMedic, 40, 0),
	)
	over := b.RunUntil((*game.Battle).Over, 50)
	if over < 0 {
		t.Fatalf("expected the duel to end within 50 turns")
	}

	rs := collectStats(1, 3, b, over)
	if rs.turns != over || rs.overTurn != over {
		t.Fatalf("expected turns=%d over=%d, got turns=%d over=%d", over, over, rs.turns, rs.overTurn)
	}
	if rs.firstContactTurn != 1 {
		t.Fatalf("expected contact on turn 1 at point-blank range, got %d", rs.firstContactTurn)
	}
	if rs.firstDeathTurn != over || rs.lastDeathTurn != over {
		t.Fatalf("expected the only death on turn %d, got first=%d last=%d", over, rs.firstDeathTurn, rs.lastDeathTurn)
	}
	if len(rs.deaths) != 1 || rs.deaths[0] != "B1" {
		t.Fatalf("expected B1 to be the only casualty, got %v", rs.deaths)
	}
	if rs.damage["red"] <= 0 {
		t.Fatalf("expected red to have dealt damage")
	}
	if rs.outcome.Outcome != game.OutcomeRedVictory {
		t.Fatalf("expected red victory, got %s", rs.outcome.Outcome)
	}
	if rs.actions["attack"] == 0 {
		t.Fatalf("expected attack actions to be counted")
	}
}

func TestPrintRunAndAggregate(t *testing.T) {
	rs := runStats{
		runIndex:         1,
		seed:             42,
		turns:            10,
		overTurn:         10,
		outcome:          game.OutcomeReason{Outcome: game.OutcomeBlueVictory, Description: "decisive_blue_victory_red_eliminated"},
		redTotal:         1,
		blueTotal:        1,
		blueSurvivors:    1,
		firstContactTurn: 2,
		firstDeathTurn:   10,
		lastDeathTurn:    10,
		deaths:           []string{"R0"},
		actions:          map[string]int{"attack": 5, "move": 3},
		damage:           map[string]float64{"blue": 100},
	}

	var buf bytes.Buffer
	printRun(&buf, rs)
	printAggregate(&buf, []runStats{rs})
	out := buf.String()

	for _, want := range []string{
		"--- Run 1 (seed=42) ---",
		"outcome=blue_victory (decisive_blue_victory_red_eliminated)",
		"survivors: red=0/1 blue=1/1",
		"action_totals: attack=5 move=3 no_effect=0",
		"casualties: R0",
		"stalemate=false",
		"outcomes: blue_victory=1",
		"first_contact=2.0 first_death=10.0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRunPersistsReplays(t *testing.T) {
	t.Cleanup(viper.Reset)
	db := filepath.Join(t.TempDir(), "replays.db")

	err := run(context.Background(), options{
		runs:     2,
		turns:    30,
		seedBase: 1,
		seedStep: 1,
		scenario: "duel",
		db:       db,
		logLevel: "error",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunSavesTerrainThatScenariosCanLoad(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := filepath.Join(t.TempDir(), "maps")

	err := run(context.Background(), options{
		runs:     1,
		turns:    5,
		seedBase: 1,
		seedStep: 1,
		scenario: "skirmish",
		logLevel: "error",
		saveMap:  dir,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	sc, err := scenario.Builtin("skirmish")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	want, err := sc.Grid()
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	got, err := terrain.LoadFiles(filepath.Join(dir, terrain.KindsFile), filepath.Join(dir, terrain.HeightsFile), want.CellSize)
	if err != nil {
		t.Fatalf("load saved terrain: %v", err)
	}
	if got.Cols != want.Cols || got.Rows != want.Rows || got.Count(game.TerrainObstacle) != want.Count(game.TerrainObstacle) {
		t.Fatalf("saved terrain %dx%d with %d obstacles, want %dx%d with %d",
			got.Cols, got.Rows, got.Count(game.TerrainObstacle),
			want.Cols, want.Rows, want.Count(game.TerrainObstacle))
	}
}

func TestRunSaveTerrainNeedsGrid(t *testing.T) {
	t.Cleanup(viper.Reset)
	err := run(context.Background(), options{
		runs: 1, turns: 1, scenario: "duel", logLevel: "error",
		saveMap: t.TempDir(),
	})
	if err == nil || !strings.Contains(err.Error(), "no terrain grid") {
		t.Fatalf("expected a missing-grid error, got %v", err)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	t.Cleanup(viper.Reset)
	if err := run(context.Background(), options{runs: 0}); err == nil {
		t.Fatalf("expected an error for -runs 0")
	}
	if err := run(context.Background(), options{runs: 1, turns: -1}); err == nil {
		t.Fatalf("expected an error for negative -turns")
	}
	if err := run(context.Background(), options{runs: 1, scenario: "no-such-battle"}); err == nil {
		t.Fatalf("expected an error for an unknown scenario")
	}
}
