package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Garsondee/Turn-Tactics/internal/game"
)

// stalemateQuietTurns is how long a capped battle must go without a death
// before it counts as a stalemate.
const stalemateQuietTurns = 50

type runStats struct {
	runIndex int
	seed     int64
	uuid     string

	turns    int
	overTurn int // -1 when the turn cap ran out first
	outcome  game.OutcomeReason

	redTotal      int
	blueTotal     int
	redSurvivors  int
	blueSurvivors int

	firstContactTurn int
	firstDeathTurn   int
	lastDeathTurn    int
	deaths           []string

	actions  map[string]int
	noEffect int
	damage   map[string]float64 // health damage dealt, by shooter team
	healed   float64
}

func collectStats(runIndex int, seed int64, b *game.Battle, overTurn int) runStats {
	snap := b.Snapshot()
	rs := runStats{
		runIndex:         runIndex,
		seed:             seed,
		turns:            b.Turn(),
		overTurn:         overTurn,
		outcome:          game.DetermineOutcome(b),
		firstContactTurn: -1,
		firstDeathTurn:   -1,
		lastDeathTurn:    -1,
		actions:          map[string]int{},
		damage:           map[string]float64{},
	}
	rs.redTotal, rs.blueTotal, rs.redSurvivors, rs.blueSurvivors = teamSurvivalCounts(snap.Units)

	for _, e := range b.Log().Entries() {
		switch {
		case e.Detail == game.DetailTargetDown:
			if rs.firstDeathTurn < 0 {
				rs.firstDeathTurn = e.Turn
			}
			rs.lastDeathTurn = e.Turn
			rs.deaths = append(rs.deaths, e.Target)
			continue
		case strings.HasPrefix(e.Detail, "no effect"):
			rs.noEffect++
		}
		rs.actions[e.Kind]++
		if isShot(e) {
			if rs.firstContactTurn < 0 {
				rs.firstContactTurn = e.Turn
			}
			rs.damage[e.Team] += e.Amount
		}
		if e.Kind == game.ActionHeal.String() && strings.HasPrefix(e.Detail, "treatment complete") {
			rs.healed += e.Amount
		}
	}
	return rs
}

// isShot reports whether e is a volley that was actually fired.
func isShot(e game.Event) bool {
	if e.Kind != game.ActionAttack.String() && e.Kind != game.ActionAimAndAttack.String() {
		return false
	}
	return strings.Contains(e.Detail, " fired ")
}

func teamSurvivalCounts(units []game.UnitSnapshot) (redTotal, blueTotal, redSurvivors, blueSurvivors int) {
	for _, u := range units {
		switch u.Team {
		case game.TeamRed.String():
			redTotal++
			if u.Alive {
				redSurvivors++
			}
		case game.TeamBlue.String():
			blueTotal++
			if u.Alive {
				blueSurvivors++
			}
		}
	}
	return redTotal, blueTotal, redSurvivors, blueSurvivors
}

// detectStalemate flags capped battles where both sides kept most of their
// units and nobody has died for a while.
func detectStalemate(rs runStats) (bool, string) {
	if rs.overTurn >= 0 {
		return false, fmt.Sprintf("battle_over_at_turn_%d", rs.overTurn)
	}
	if rs.redTotal == 0 || rs.blueTotal == 0 {
		return false, "empty_side"
	}
	redSurvival := float64(rs.redSurvivors) / float64(rs.redTotal)
	blueSurvival := float64(rs.blueSurvivors) / float64(rs.blueTotal)
	if redSurvival < 0.5 || blueSurvival < 0.5 {
		return false, fmt.Sprintf("decisive_attrition red=%.2f blue=%.2f", redSurvival, blueSurvival)
	}
	quiet := rs.turns
	if rs.lastDeathTurn >= 0 {
		quiet = rs.turns - rs.lastDeathTurn
	}
	if quiet < stalemateQuietTurns {
		return false, fmt.Sprintf("recent_casualties quiet_turns=%d", quiet)
	}
	return true, fmt.Sprintf("high_mutual_survival red=%.2f blue=%.2f quiet_turns=%d",
		redSurvival, blueSurvival, quiet)
}

func printRun(w io.Writer, rs runStats) {
	fmt.Fprintf(w, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	if rs.uuid != "" {
		fmt.Fprintf(w, "replay=%s\n", rs.uuid)
	}
	fmt.Fprintf(w, "turns=%d over_at=%s outcome=%s (%s)\n",
		rs.turns, turnString(rs.overTurn), rs.outcome.Outcome, rs.outcome.Description)
	fmt.Fprintf(w, "survivors: red=%d/%d blue=%d/%d\n",
		rs.redSurvivors, rs.redTotal, rs.blueSurvivors, rs.blueTotal)
	fmt.Fprintf(w, "phase_markers: first_contact=%s first_death=%s last_death=%s\n",
		turnString(rs.firstContactTurn), turnString(rs.firstDeathTurn), turnString(rs.lastDeathTurn))
	fmt.Fprintf(w, "action_totals: %s no_effect=%d\n", formatCounts(rs.actions), rs.noEffect)
	fmt.Fprintf(w, "damage_dealt: red=%.1f blue=%.1f healed=%.1f\n",
		rs.damage[game.TeamRed.String()], rs.damage[game.TeamBlue.String()], rs.healed)
	fmt.Fprintf(w, "casualties: %s\n", joinList(rs.deaths))
	stalemate, reason := detectStalemate(rs)
	fmt.Fprintf(w, "stalemate=%v reason=%s\n\n", stalemate, reason)
}

func printAggregate(w io.Writer, all []runStats) {
	outcomes := map[string]int{}
	totalTurns := 0
	totalRed, totalBlue := 0, 0
	stalemates := 0
	contactTurns := make([]int, 0, len(all))
	deathTurns := make([]int, 0, len(all))
	actions := map[string]int{}

	for _, rs := range all {
		outcomes[rs.outcome.Outcome.String()]++
		totalTurns += rs.turns
		totalRed += rs.redSurvivors
		totalBlue += rs.blueSurvivors
		if ok, _ := detectStalemate(rs); ok {
			stalemates++
		}
		if rs.firstContactTurn >= 0 {
			contactTurns = append(contactTurns, rs.firstContactTurn)
		}
		if rs.firstDeathTurn >= 0 {
			deathTurns = append(deathTurns, rs.firstDeathTurn)
		}
		for k, v := range rs.actions {
			actions[k] += v
		}
	}

	fmt.Fprintln(w, "=== Aggregate ===")
	fmt.Fprintf(w, "runs=%d stalemates=%d\n", len(all), stalemates)
	fmt.Fprintf(w, "outcomes: %s\n", formatCounts(outcomes))
	fmt.Fprintf(w, "avg_turns=%.1f avg_survivors: red=%.1f blue=%.1f\n",
		avg(totalTurns, len(all)), avg(totalRed, len(all)), avg(totalBlue, len(all)))
	fmt.Fprintf(w, "phase_marker_avg_turns: first_contact=%s first_death=%s\n",
		avgTurnString(contactTurns), avgTurnString(deathTurns))
	fmt.Fprintf(w, "avg_actions_per_run:")
	for _, k := range sortedKeys(actions) {
		fmt.Fprintf(w, " %s=%.1f", k, avg(actions[k], len(all)))
	}
	fmt.Fprintln(w)
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTurnString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func turnString(t int) string {
	if t < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", t)
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(counts))
	for _, k := range sortedKeys(counts) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinList(labels []string) string {
	if len(labels) == 0 {
		return "none"
	}
	return strings.Join(labels, ",")
}
