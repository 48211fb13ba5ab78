package game

// view is what a unit can see when it decides: both rosters in their current,
// already-mutated-this-turn state, plus the battle's hooks.
type view struct {
	allies  []*Unit
	enemies []*Unit
	rally   Point
	sight   LineOfSight
}

// decide picks this turn's action for u. Dead units return false.
//
// Priority: an ongoing commitment continues; then the role's specialty; then
// the generic attack-or-advance fallback.
func decide(u *Unit, v view) (Action, bool) {
	if !u.IsAlive() {
		return Action{}, false
	}
	if a, ok := continueCommitment(u); ok {
		return a, true
	}
	switch u.role {
	case RoleMedic:
		if a, ok := decideMedic(u, v); ok {
			return a, true
		}
	case RoleAssault:
		if u.weapon != nil && u.weapon.Empty() {
			return Action{Kind: ActionReload, Actor: u}, true
		}
	case RoleSupport:
		if a, ok := decideSupport(u, v); ok {
			return a, true
		}
	}
	return decideGeneric(u, v), true
}

// continueCommitment resumes a busy unit's multi-turn action. A commitment
// whose target has died or moved out of reach is dropped so the unit can
// re-evaluate.
func continueCommitment(u *Unit) (Action, bool) {
	b := u.busy
	if _, lost := u.commitmentLost(); lost {
		u.cancelBusy()
		return Action{}, false
	}
	switch b.Kind {
	case BusyBuilding:
		return Action{Kind: ActionBuildObstacle, Actor: u}, true
	case BusyHealing:
		return Action{Kind: ActionHeal, Actor: u, Target: b.Target}, true
	case BusyReloading:
		return Action{Kind: ActionReload, Actor: u}, true
	case BusyAiming:
		return Action{Kind: ActionAimAndAttack, Actor: u, Target: b.Target}, true
	}
	return Action{}, false
}

// decideMedic treats the nearest injured ally, walking over first if needed.
func decideMedic(u *Unit, v view) (Action, bool) {
	var patient *Unit
	best := 0.0
	for _, a := range v.allies {
		if a == u || !a.IsAlive() || a.health >= maxHealth {
			continue
		}
		d := u.DistanceTo(a)
		if patient == nil || d < best {
			patient, best = a, d
		}
	}
	if patient == nil {
		return Action{}, false
	}
	if best < healRange {
		return Action{Kind: ActionHeal, Actor: u, Target: patient}, true
	}
	return Action{Kind: ActionMove, Actor: u, Dest: patient.Position()}, true
}

// decideSupport lines up a shot on the nearest enemy in range and in sight.
func decideSupport(u *Unit, v view) (Action, bool) {
	if u.weapon == nil {
		return Action{}, false
	}
	target := nearestAlive(u, v.enemies)
	if target == nil {
		return Action{}, false
	}
	if u.DistanceTo(target) > u.weapon.Range || !v.sight.HasLineOfSight(u, target) {
		return Action{}, false
	}
	return Action{Kind: ActionAimAndAttack, Actor: u, Target: target}, true
}

// decideGeneric attacks the first enemy in range (roster order), otherwise
// advances on the rally point.
func decideGeneric(u *Unit, v view) Action {
	if u.weapon != nil {
		for _, e := range v.enemies {
			if e.IsAlive() && u.DistanceTo(e) <= u.weapon.Range {
				return Action{Kind: ActionAttack, Actor: u, Target: e}
			}
		}
	}
	return Action{Kind: ActionMove, Actor: u, Dest: v.rally}
}

func nearestAlive(u *Unit, units []*Unit) *Unit {
	var best *Unit
	bestDist := 0.0
	for _, o := range units {
		if !o.IsAlive() {
			continue
		}
		d := u.DistanceTo(o)
		if best == nil || d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}
