package game

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeRedVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

type OutcomeReason struct {
	Outcome       BattleOutcome `json:"outcome"`
	RedSurvivors  int           `json:"red_survivors"`
	RedTotal      int           `json:"red_total"`
	BlueSurvivors int           `json:"blue_survivors"`
	BlueTotal     int           `json:"blue_total"`
	Description   string        `json:"description"`
}

// DetermineOutcome judges the battle as it stands. It is meant to be called
// between turns; the battle itself never ends on its own.
func DetermineOutcome(b *Battle) OutcomeReason {
	r := OutcomeReason{
		RedTotal:      len(b.red),
		BlueTotal:     len(b.blue),
		RedSurvivors:  b.Alive(TeamRed),
		BlueSurvivors: b.Alive(TeamBlue),
	}

	redCasualtyRate := 0.0
	blueCasualtyRate := 0.0
	if r.RedTotal > 0 {
		redCasualtyRate = float64(r.RedTotal-r.RedSurvivors) / float64(r.RedTotal)
	}
	if r.BlueTotal > 0 {
		blueCasualtyRate = float64(r.BlueTotal-r.BlueSurvivors) / float64(r.BlueTotal)
	}

	switch {
	case r.RedSurvivors == 0 && r.BlueSurvivors == 0:
		r.Outcome, r.Description = OutcomeDraw, "mutual_annihilation"
		return r
	case r.RedSurvivors == 0:
		r.Outcome, r.Description = OutcomeBlueVictory, "decisive_blue_victory_red_eliminated"
		return r
	case r.BlueSurvivors == 0:
		r.Outcome, r.Description = OutcomeRedVictory, "decisive_red_victory_blue_eliminated"
		return r
	}

	casualtyDiff := blueCasualtyRate - redCasualtyRate
	switch {
	case casualtyDiff > 0.30 && redCasualtyRate < 0.50:
		r.Outcome, r.Description = OutcomeRedVictory, "marginal_red_victory_casualty_advantage"
	case casualtyDiff < -0.30 && blueCasualtyRate < 0.50:
		r.Outcome, r.Description = OutcomeBlueVictory, "marginal_blue_victory_casualty_advantage"
	case casualtyDiff >= -0.20 && casualtyDiff <= 0.20 && (redCasualtyRate > 0.30 || blueCasualtyRate > 0.30):
		r.Outcome, r.Description = OutcomeDraw, "draw_similar_casualties"
	default:
		r.Outcome, r.Description = OutcomeInconclusive, "inconclusive_insufficient_resolution"
	}
	return r
}
