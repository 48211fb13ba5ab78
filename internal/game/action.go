package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAction marks an action that violates its construction contract,
	// e.g. a medic asked to build.
	ErrInvalidAction = errors.New("invalid action")
	// ErrActorUnavailable marks an issued action whose actor cannot act now.
	ErrActorUnavailable = errors.New("actor unavailable")
)

const (
	healAmount    = 50.0 // health restored by a completed heal
	resupplyArmor = 50.0 // armor restored by one supply run
	healRange     = 10.0 // medic must be closer than this to treat
	reloadSpeed   = 1.5  // assault speed while changing magazines
)

// DetailTargetDown is the event detail recorded when a shot kills its target.
const DetailTargetDown = "target down"

// ActionKind identifies what a unit does with its turn.
type ActionKind int

const (
	ActionMove ActionKind = iota
	ActionAttack
	ActionBuildObstacle
	ActionHeal
	ActionReload
	ActionAimAndAttack
	ActionSupply
	actionKindCount // sentinel
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionBuildObstacle:
		return "build"
	case ActionHeal:
		return "heal"
	case ActionReload:
		return "reload"
	case ActionAimAndAttack:
		return "aim"
	case ActionSupply:
		return "supply"
	default:
		return "unknown"
	}
}

// ParseActionKind maps an action name to its kind.
func ParseActionKind(s string) (ActionKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k := ActionKind(0); k < actionKindCount; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, s)
}

// requiredRole returns the role an action kind is gated on, if any.
func (k ActionKind) requiredRole() (Role, bool) {
	switch k {
	case ActionBuildObstacle:
		return RoleEngineer, true
	case ActionHeal:
		return RoleMedic, true
	case ActionReload:
		return RoleAssault, true
	case ActionAimAndAttack, ActionSupply:
		return RoleSupport, true
	default:
		return 0, false
	}
}

func (k ActionKind) needsTarget() bool {
	switch k {
	case ActionAttack, ActionHeal, ActionAimAndAttack, ActionSupply:
		return true
	default:
		return false
	}
}

func (k ActionKind) friendlyTarget() bool {
	return k == ActionHeal || k == ActionSupply
}

// commitment maps a multi-turn kind to the busy state it holds the actor in.
func (k ActionKind) commitment() (BusyKind, bool) {
	switch k {
	case ActionBuildObstacle:
		return BusyBuilding, true
	case ActionHeal:
		return BusyHealing, true
	case ActionReload:
		return BusyReloading, true
	case ActionAimAndAttack:
		return BusyAiming, true
	}
	return BusyIdle, false
}

// Action is one unit's intended turn. Build it with NewAction or one of the
// typed constructors; the zero value is not valid.
type Action struct {
	Kind   ActionKind
	Actor  *Unit
	Target *Unit
	Dest   Point // move destination
}

func (a Action) String() string {
	switch {
	case a.Kind == ActionMove:
		return fmt.Sprintf("%s move → (%.1f,%.1f)", a.Actor.label, a.Dest.X, a.Dest.Y)
	case a.Target != nil:
		return fmt.Sprintf("%s %s → %s", a.Actor.label, a.Kind, a.Target.label)
	default:
		return fmt.Sprintf("%s %s", a.Actor.label, a.Kind)
	}
}

// NewAction validates the actor's role and target against the kind.
func NewAction(kind ActionKind, actor, target *Unit, dest Point) (Action, error) {
	if kind < 0 || kind >= actionKindCount {
		return Action{}, fmt.Errorf("%w: kind %d", ErrInvalidAction, kind)
	}
	if actor == nil {
		return Action{}, fmt.Errorf("%w: %s without actor", ErrInvalidAction, kind)
	}
	if role, gated := kind.requiredRole(); gated && actor.role != role {
		return Action{}, fmt.Errorf("%w: only a %s can %s, %s is a %s",
			ErrInvalidAction, role, kind, actor.label, actor.role)
	}
	if kind.needsTarget() {
		if target == nil || target == actor {
			return Action{}, fmt.Errorf("%w: %s by %s needs another unit as target", ErrInvalidAction, kind, actor.label)
		}
		if kind.friendlyTarget() != (target.team == actor.team) {
			side := "an enemy"
			if kind.friendlyTarget() {
				side = "a friendly"
			}
			return Action{}, fmt.Errorf("%w: %s by %s needs %s target, got %s",
				ErrInvalidAction, kind, actor.label, side, target.label)
		}
	} else {
		target = nil
	}
	return Action{Kind: kind, Actor: actor, Target: target, Dest: dest}, nil
}

func NewMoveAction(actor *Unit, x, y float64) (Action, error) {
	return NewAction(ActionMove, actor, nil, Point{X: x, Y: y})
}

func NewAttackAction(actor, target *Unit) (Action, error) {
	return NewAction(ActionAttack, actor, target, Point{})
}

func NewBuildObstacleAction(actor *Unit) (Action, error) {
	return NewAction(ActionBuildObstacle, actor, nil, Point{})
}

func NewHealAction(actor, target *Unit) (Action, error) {
	return NewAction(ActionHeal, actor, target, Point{})
}

func NewReloadAction(actor *Unit) (Action, error) {
	return NewAction(ActionReload, actor, nil, Point{})
}

func NewAimAndAttackAction(actor, target *Unit) (Action, error) {
	return NewAction(ActionAimAndAttack, actor, target, Point{})
}

// NewSupplyAction builds a support resupply run on a friendly unit.
func NewSupplyAction(actor, target *Unit) (Action, error) {
	return NewAction(ActionSupply, actor, target, Point{})
}

// --- Execution ---

// execute applies a validated action to the battle state.
func (b *Battle) execute(a Action) {
	u := a.Actor
	switch a.Kind {
	case ActionMove:
		if b.blocked(a) {
			return
		}
		u.Move(a.Dest.X, a.Dest.Y)
		b.record(u, a.Kind, nil, fmt.Sprintf("toward (%.1f,%.1f) now at (%.1f,%.1f)",
			a.Dest.X, a.Dest.Y, u.x, u.y), u.speed)

	case ActionAttack:
		if b.blocked(a) {
			return
		}
		b.fire(u, a.Target, a.Kind)

	case ActionBuildObstacle:
		if u.advanceBusy(BusyBuilding, nil) {
			b.builder.BuildObstacle(u)
			b.record(u, a.Kind, nil, "obstacle complete", buildTurns)
			return
		}
		b.recordProgress(u, a.Kind, nil)

	case ActionHeal:
		if !a.Target.IsAlive() {
			b.abandon(u, a, reasonTargetLost)
			return
		}
		if u.advanceBusy(BusyHealing, a.Target) {
			before := a.Target.health
			a.Target.heal(healAmount)
			b.record(u, a.Kind, a.Target, fmt.Sprintf("treatment complete, health %.1f → %.1f",
				before, a.Target.health), a.Target.health-before)
			return
		}
		b.recordProgress(u, a.Kind, a.Target)

	case ActionReload:
		if u.weapon == nil {
			b.noop(u, a, "no weapon to reload")
			return
		}
		u.speed = reloadSpeed
		if u.advanceBusy(BusyReloading, nil) {
			u.weapon.Reload()
			u.speed = u.baseSpeed
			b.record(u, a.Kind, nil, fmt.Sprintf("magazine full (%d)", u.weapon.CurrentAmmo),
				float64(u.weapon.CurrentAmmo))
			return
		}
		b.recordProgress(u, a.Kind, nil)

	case ActionAimAndAttack:
		if !a.Target.IsAlive() {
			b.abandon(u, a, reasonTargetLost)
			return
		}
		if u.advanceBusy(BusyAiming, a.Target) {
			b.fire(u, a.Target, a.Kind)
			return
		}
		b.recordProgress(u, a.Kind, a.Target)

	case ActionSupply:
		b.supply(u, a.Target)
	}
}

// blocked reports (and logs) a move or attack attempted mid-commitment.
func (b *Battle) blocked(a Action) bool {
	if !a.Actor.IsBusy() {
		return false
	}
	b.noop(a.Actor, a, "busy "+a.Actor.busy.String())
	return true
}

func (b *Battle) fire(u, target *Unit, kind ActionKind) {
	if u.weapon == nil || u.weapon.Empty() {
		b.noop(u, Action{Kind: kind, Actor: u, Target: target}, "no ammo")
		return
	}
	res := u.Attack(target, b.dice)
	b.record(u, kind, target, fmt.Sprintf("%s fired %d, hit %d, -%.1f hp -%.1f armor",
		u.weapon.Name, res.Fired, res.Hits, res.HealthDamage, res.ArmorDamage), res.HealthDamage)
	if !target.IsAlive() {
		b.record(u, kind, target, DetailTargetDown, 0)
	}
}

// supply restores armor first, otherwise ammo. Exactly one effect per run.
func (b *Battle) supply(u, target *Unit) {
	switch {
	case target.armor < maxArmor:
		before := target.armor
		target.repairArmor(resupplyArmor)
		b.record(u, ActionSupply, target, fmt.Sprintf("armor %.1f → %.1f", before, target.armor),
			target.armor-before)
	case target.weapon != nil && target.weapon.NeedsAmmo():
		target.weapon.Reload()
		b.record(u, ActionSupply, target, fmt.Sprintf("ammo refilled (%d)", target.weapon.CurrentAmmo),
			float64(target.weapon.CurrentAmmo))
	default:
		b.noop(u, Action{Kind: ActionSupply, Actor: u, Target: target}, "nothing to resupply")
	}
}

func (b *Battle) recordProgress(u *Unit, kind ActionKind, target *Unit) {
	b.record(u, kind, target, fmt.Sprintf("%d/%d", u.busy.Progress, u.busy.Kind.Cap()),
		float64(u.busy.Progress))
}

// begin commits u to a multi-turn order. Progress stays at zero; only the
// turns that follow advance it.
func (b *Battle) begin(u *Unit, busy BusyKind, a Action) {
	if busy == BusyReloading {
		if u.weapon == nil {
			b.noop(u, a, "no weapon to reload")
			return
		}
		u.speed = reloadSpeed
	}
	u.busy = BusyState{Kind: busy, Target: a.Target}
	b.record(u, a.Kind, a.Target, fmt.Sprintf("ordered, 0/%d", busy.Cap()), 0)
}

// abandon drops a commitment whose target is dead or out of reach.
func (b *Battle) abandon(u *Unit, a Action, reason string) {
	u.cancelBusy()
	b.logger.Debug().Str("unit", u.label).Str("action", a.Kind.String()).
		Str("target", a.Target.label).Int("turn", b.turn).Msg(reason + ", commitment cancelled")
	b.record(u, a.Kind, a.Target, reason+", cancelled", 0)
}

// noop logs an action that had no effect. Not an error.
func (b *Battle) noop(u *Unit, a Action, reason string) {
	ev := b.logger.Info().Str("unit", u.label).Str("action", a.Kind.String()).Int("turn", b.turn)
	if a.Target != nil {
		ev = ev.Str("target", a.Target.label)
	}
	ev.Msg(reason)
	b.record(u, a.Kind, a.Target, "no effect: "+reason, 0)
}
