package viewer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Turn-Tactics/internal/game"
	"github.com/Garsondee/Turn-Tactics/internal/terrain"
)

func duel() *game.Battle {
	return game.NewBattle(
		game.WithRally(game.TeamRed, 100, 0),
		game.WithRedUnit(game.RoleAssault, 0, 0),
		game.WithBlueUnit(game.RoleAssault, 100, 0),
	)
}

func TestAdvanceHonoursDelay(t *testing.T) {
	v := New(duel(), Options{TurnDelay: time.Second})
	start := time.Unix(1000, 0)

	assert.True(t, v.advance(start), "first update runs immediately")
	assert.False(t, v.advance(start.Add(500*time.Millisecond)))
	assert.True(t, v.advance(start.Add(time.Second)))
	assert.Equal(t, 2, v.battle.Turn())
}

func TestPauseAndStep(t *testing.T) {
	v := New(duel(), Options{TurnDelay: time.Millisecond})
	now := time.Unix(1000, 0)

	v.press(ebiten.KeySpace, now)
	assert.True(t, v.paused)
	assert.False(t, v.advance(now.Add(time.Hour)))
	assert.Equal(t, 0, v.battle.Turn())

	v.press(ebiten.KeyN, now)
	assert.Equal(t, 1, v.battle.Turn())

	v.press(ebiten.KeySpace, now)
	assert.False(t, v.paused)
	assert.Equal(t, "running", v.status)
}

func TestStopsAtTurnCap(t *testing.T) {
	v := New(duel(), Options{TurnDelay: time.Millisecond, MaxTurns: 3})
	now := time.Unix(1000, 0)
	for i := 0; i < 10; i++ {
		v.advance(now.Add(time.Duration(i) * time.Second))
	}
	assert.Equal(t, 3, v.battle.Turn())
	assert.True(t, v.finished())
}

func TestSpeedKeysClamp(t *testing.T) {
	v := New(duel(), Options{TurnDelay: 100 * time.Millisecond})
	now := time.Unix(1000, 0)
	for i := 0; i < 10; i++ {
		v.press(ebiten.KeyEqual, now)
	}
	assert.Equal(t, minDelay, v.opts.TurnDelay)
	for i := 0; i < 20; i++ {
		v.press(ebiten.KeyMinus, now)
	}
	assert.Equal(t, maxDelay, v.opts.TurnDelay)
}

func TestCopyLog(t *testing.T) {
	v := New(duel(), Options{})
	var copied string
	v.copyText = func(s string) error { copied = s; return nil }
	v.battle.RunTurns(2)
	now := time.Unix(1000, 0)

	v.press(ebiten.KeyC, now)
	assert.Contains(t, copied, "[T=001] R0")
	assert.Contains(t, copied, "--- Summary at T=002 ---")
	assert.Equal(t, "copied 4 events", v.status)

	v.copyText = func(string) error { return errors.New("no clipboard") }
	v.press(ebiten.KeyC, now)
	assert.Equal(t, "copy failed: no clipboard", v.status)
}

func TestHeader(t *testing.T) {
	v := New(duel(), Options{TurnDelay: time.Second, MaxTurns: 1})
	now := time.Unix(1000, 0)
	lines := v.header(v.battle.Snapshot(), now)
	require.Len(t, lines, headerLines)
	assert.Equal(t, "TURN 000  seed=1  attacker=red", lines[0])
	assert.Equal(t, "alive red=1/1 blue=1/1", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "running"))

	v.setStatus("hello", now)
	assert.Equal(t, "hello", v.header(v.battle.Snapshot(), now.Add(time.Second))[4])
	assert.Equal(t, "", v.header(v.battle.Snapshot(), now.Add(statusTTL))[4])

	v.battle.RunTurn()
	lines = v.header(v.battle.Snapshot(), now)
	assert.True(t, strings.HasPrefix(lines[2], "finished"))
	assert.Equal(t, "outcome: inconclusive (inconclusive_insufficient_resolution)", lines[3])
}

func TestVisibleEvents(t *testing.T) {
	events := make([]game.Event, 5)
	for i := range events {
		events[i].Turn = i
	}
	got := visibleEvents(events, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].Turn)
	assert.Len(t, visibleEvents(events, 10), 5)
	assert.Nil(t, visibleEvents(events, 0))
}

func TestFitViewport(t *testing.T) {
	g := terrain.NewGrid(40, 20, 5)
	b := game.NewBattle(game.WithTerrain(g), game.WithRedUnit(game.RoleMedic, 10, 10))
	v := New(b, Options{})
	require.NotNil(t, v.grid)
	assert.InDelta(t, 4.8, v.view.scale, 1e-9) // min(960/200, 640/100)
	x, y := v.view.toScreen(0, 0)
	assert.Equal(t, float32(borderWidth), x)
	assert.Equal(t, float32(borderWidth), y)

	v = New(duel(), Options{})
	assert.Nil(t, v.grid)
	x, _ = v.view.toScreen(-20, 0)
	assert.Equal(t, float32(borderWidth), x)
}

func TestTileColor(t *testing.T) {
	flat := tileColor(game.Tile{Kind: game.TerrainEmpty})
	assert.Equal(t, colField, flat)
	high := tileColor(game.Tile{Kind: game.TerrainMountain, Height: 100})
	low := tileColor(game.Tile{Kind: game.TerrainMountain})
	assert.Greater(t, high.R, low.R)
	assert.NotEqual(t, tileColor(game.Tile{Kind: game.TerrainWater}), flat)
}
