package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role name cannot be parsed.
var ErrUnknownRole = errors.New("unknown role")

// Role is a unit's fixed specialisation. It is the capability tag checked by
// gated actions.
type Role int

const (
	RoleEngineer Role = iota
	RoleMedic
	RoleAssault
	RoleSupport
	roleCount // sentinel
)

func (r Role) String() string {
	switch r {
	case RoleEngineer:
		return "engineer"
	case RoleMedic:
		return "medic"
	case RoleAssault:
		return "assault"
	case RoleSupport:
		return "support"
	default:
		return "unknown"
	}
}

// ParseRole maps a role name to a Role.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r := Role(0); r < roleCount; r++ {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// RolePreset holds the starting stats for a role.
type RolePreset struct {
	Health float64
	Armor  float64
	Speed  float64
	Weapon func() *Weapon
}

var rolePresets = [roleCount]RolePreset{
	RoleEngineer: {Health: 120, Armor: 100, Speed: 1.5, Weapon: Pistol},
	RoleMedic:    {Health: 80, Armor: 50, Speed: 2.0, Weapon: Pistol},
	RoleAssault:  {Health: 100, Armor: 70, Speed: 2.5, Weapon: SMG},
	RoleSupport:  {Health: 100, Armor: 50, Speed: 1.0, Weapon: SniperRifle},
}

// Preset returns the starting stats for this role.
func (r Role) Preset() RolePreset {
	if r < 0 || r >= roleCount {
		return RolePreset{Health: 100, Weapon: func() *Weapon { return nil }}
	}
	return rolePresets[r]
}

// --- Busy state machine ---

// BusyKind names a multi-turn commitment.
type BusyKind int

const (
	BusyIdle BusyKind = iota
	BusyBuilding
	BusyHealing
	BusyReloading
	BusyAiming
)

func (k BusyKind) String() string {
	switch k {
	case BusyIdle:
		return "idle"
	case BusyBuilding:
		return "building"
	case BusyHealing:
		return "healing"
	case BusyReloading:
		return "reloading"
	case BusyAiming:
		return "aiming"
	default:
		return "unknown"
	}
}

// Turns a commitment takes before it completes.
const (
	buildTurns  = 3
	healTurns   = 5
	reloadTurns = 5
	aimTurns    = 5
)

// Cap returns how many turns the commitment lasts.
func (k BusyKind) Cap() int {
	switch k {
	case BusyBuilding:
		return buildTurns
	case BusyHealing:
		return healTurns
	case BusyReloading:
		return reloadTurns
	case BusyAiming:
		return aimTurns
	default:
		return 0
	}
}

// action returns the action kind that drives this commitment.
func (k BusyKind) action() ActionKind {
	switch k {
	case BusyBuilding:
		return ActionBuildObstacle
	case BusyHealing:
		return ActionHeal
	case BusyReloading:
		return ActionReload
	default:
		return ActionAimAndAttack
	}
}

// BusyState is Idle | Building(n) | Healing(n, target) | Reloading(n) |
// Aiming(n, target). Progress counts completed turns of the commitment.
type BusyState struct {
	Kind     BusyKind
	Progress int
	Target   *Unit
}

func (b BusyState) String() string {
	if b.Kind == BusyIdle {
		return "idle"
	}
	if b.Target != nil {
		return fmt.Sprintf("%s(%d/%d, %s)", b.Kind, b.Progress, b.Kind.Cap(), b.Target.label)
	}
	return fmt.Sprintf("%s(%d/%d)", b.Kind, b.Progress, b.Kind.Cap())
}

// advanceBusy moves the unit's commitment of the given kind one turn forward,
// starting it if the unit was idle or committed to something else. It returns
// true on the turn the counter reaches the cap; the state is then back to Idle.
func (u *Unit) advanceBusy(kind BusyKind, target *Unit) bool {
	if u.busy.Kind != kind || u.busy.Target != target {
		u.busy = BusyState{Kind: kind, Target: target}
	}
	u.busy.Progress++
	if u.busy.Progress >= kind.Cap() {
		u.busy = BusyState{}
		return true
	}
	return false
}

const (
	reasonTargetLost = "target lost"
	reasonOutOfReach = "target out of range"
)

// inReach reports whether target is close enough for the commitment's effect.
// Building and reloading have no target and are always in reach.
func (u *Unit) inReach(busy BusyKind, target *Unit) bool {
	switch busy {
	case BusyHealing:
		return u.DistanceTo(target) < healRange
	case BusyAiming:
		return u.weapon != nil && u.DistanceTo(target) <= u.weapon.Range
	}
	return true
}

// commitmentLost reports why the unit's targeted commitment can no longer
// complete, if it cannot.
func (u *Unit) commitmentLost() (string, bool) {
	t := u.busy.Target
	switch {
	case t == nil:
		return "", false
	case !t.IsAlive():
		return reasonTargetLost, true
	case !u.inReach(u.busy.Kind, t):
		return reasonOutOfReach, true
	}
	return "", false
}

// cancelBusy drops any commitment and undoes its side effects.
func (u *Unit) cancelBusy() {
	if u.busy.Kind == BusyReloading {
		u.speed = u.baseSpeed
	}
	u.busy = BusyState{}
}
