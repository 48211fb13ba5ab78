package game_test

import (
	"testing"

	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/game/mocks"
	"go.uber.org/mock/gomock"
)

func TestSupportConsultsLineOfSight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sight := mocks.NewMockLineOfSight(ctrl)
	b := game.NewBattle(
		game.WithLineOfSight(sight),
		game.WithRally(game.TeamBlue, 150, 0),
		game.WithRedUnit(game.RoleSupport, 0, 0),
		game.WithBlueUnit(game.RoleAssault, 150, 0),
	)
	sniper, target := b.UnitByLabel("R0"), b.UnitByLabel("B1")
	sight.EXPECT().HasLineOfSight(sniper, target).Return(true)

	b.RunTurn()

	if got := sniper.Busy().Kind; got != game.BusyAiming {
		t.Fatalf("support with clear sight should aim, got %s", got)
	}
}

func TestSupportWithoutSightShootsDirectly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sight := mocks.NewMockLineOfSight(ctrl)
	sight.EXPECT().HasLineOfSight(gomock.Any(), gomock.Any()).Return(false).AnyTimes()
	b := game.NewBattle(
		game.WithLineOfSight(sight),
		game.WithHitChance(1),
		game.WithRally(game.TeamBlue, 150, 0),
		game.WithRedUnit(game.RoleSupport, 0, 0),
		game.WithBlueUnit(game.RoleAssault, 150, 0),
	)
	b.RunTurn()

	if !b.Log().HasEntry("R0", "attack", "sniper rifle fired 1") {
		t.Fatalf("expected a plain attack, log:\n%s", b.Log().Format())
	}
	if b.UnitByLabel("R0").IsBusy() {
		t.Fatal("support should not be aiming without sight")
	}
}

func TestEngineerBuildCallsBuilderOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	builder := mocks.NewMockObstacleBuilder(ctrl)
	b := game.NewBattle(
		game.WithObstacleBuilder(builder),
		game.WithRedUnit(game.RoleEngineer, 0, 0),
		game.WithBlueUnit(game.RoleEngineer, 1000, 0),
	)
	eng := b.UnitByLabel("R0")
	builder.EXPECT().BuildObstacle(eng).Times(1)

	act, err := game.NewBuildObstacleAction(eng)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Issue(act); err != nil {
		t.Fatalf("issue: %v", err)
	}
	b.RunTurns(3)
	if eng.IsBusy() {
		t.Fatalf("engineer should be idle after the third build turn, got %s", eng.Busy())
	}
}
