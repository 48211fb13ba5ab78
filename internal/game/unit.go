package game

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownTeam is returned when a team name cannot be parsed.
var ErrUnknownTeam = errors.New("unknown team")

const (
	maxHealth = 100.0 // heal ceiling
	maxArmor  = 100.0 // armor ceiling, also the absorption denominator
)

// Team distinguishes the two opposing sides.
type Team int

const (
	TeamRed  Team = iota // attacks first by default
	TeamBlue             // OpFor
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// ParseTeam maps "red"/"blue" to a Team.
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return TeamRed, nil
	case "blue", "b":
		return TeamBlue, nil
	default:
		return TeamRed, fmt.Errorf("%w: %q", ErrUnknownTeam, s)
	}
}

// Point is a battlefield coordinate.
type Point struct {
	X, Y float64
}

// Unit is one combatant on the field. Units are never removed from their
// roster; a dead unit simply stops acting.
type Unit struct {
	id    int
	label string // e.g. "R0", "B3"
	team  Team
	role  Role

	x, y      float64
	health    float64
	armor     float64
	speed     float64
	baseSpeed float64
	weapon    *Weapon

	busy BusyState
}

// NewUnit creates a unit with the given role preset at (x, y).
func NewUnit(id int, role Role, team Team, x, y float64) *Unit {
	p := role.Preset()
	return &Unit{
		id:        id,
		label:     unitLabel(team, id),
		team:      team,
		role:      role,
		x:         x,
		y:         y,
		health:    p.Health,
		armor:     p.Armor,
		speed:     p.Speed,
		baseSpeed: p.Speed,
		weapon:    p.Weapon(),
	}
}

func unitLabel(team Team, id int) string {
	if team == TeamBlue {
		return fmt.Sprintf("B%d", id)
	}
	return fmt.Sprintf("R%d", id)
}

func (u *Unit) ID() int            { return u.id }
func (u *Unit) Label() string      { return u.label }
func (u *Unit) Team() Team         { return u.team }
func (u *Unit) Role() Role         { return u.role }
func (u *Unit) Position() Point    { return Point{X: u.x, Y: u.y} }
func (u *Unit) Health() float64    { return u.health }
func (u *Unit) Armor() float64     { return u.armor }
func (u *Unit) Speed() float64     { return u.speed }
func (u *Unit) BaseSpeed() float64 { return u.baseSpeed }
func (u *Unit) Weapon() *Weapon    { return u.weapon }
func (u *Unit) Busy() BusyState    { return u.busy }

// SetWeapon replaces the unit's weapon. A nil weapon leaves the unit unarmed.
func (u *Unit) SetWeapon(w *Weapon) { u.weapon = w }

// SetArmor overrides armor, clamped to [0, 100].
func (u *Unit) SetArmor(a float64) { u.armor = math.Max(0, math.Min(maxArmor, a)) }

// SetHealth overrides health, clamped at 0.
func (u *Unit) SetHealth(h float64) { u.health = math.Max(0, h) }

// IsAlive reports whether the unit can still act.
func (u *Unit) IsAlive() bool {
	return u.health > 0
}

// IsBusy reports whether a multi-turn commitment blocks moving and attacking.
func (u *Unit) IsBusy() bool {
	return u.busy.Kind != BusyIdle
}

// DistanceTo returns the Euclidean distance to other.
func (u *Unit) DistanceTo(other *Unit) float64 {
	return math.Hypot(other.x-u.x, other.y-u.y)
}

func (u *Unit) distanceToPoint(p Point) float64 {
	return math.Hypot(p.X-u.x, p.Y-u.y)
}

// Move steps the unit Speed units straight toward (tx, ty). The step is never
// shortened, so a unit closer than Speed lands past the target.
func (u *Unit) Move(tx, ty float64) {
	dx := tx - u.x
	dy := ty - u.y
	dist := math.Hypot(dx, dy)
	if dist <= 0 {
		return
	}
	u.x += (dx / dist) * u.speed
	u.y += (dy / dist) * u.speed
}

// AttackResult summarises one volley.
type AttackResult struct {
	Fired        int
	Hits         int
	HealthDamage float64
	ArmorDamage  float64
}

// Attack fires one volley at target. Each bullet rolls independently and
// each hit runs the armor formula against the target's armor at that moment.
func (u *Unit) Attack(target *Unit, dice *Dice) AttackResult {
	var res AttackResult
	if target == nil || u.weapon == nil {
		return res
	}
	res.Fired = u.weapon.Fire()
	for i := 0; i < res.Fired; i++ {
		if !dice.RollHit() {
			continue
		}
		res.Hits++
		armorBefore := target.armor
		dmg := target.absorb(u.weapon.Damage)
		target.TakeDamage(dmg)
		res.HealthDamage += dmg
		res.ArmorDamage += armorBefore - target.armor
	}
	return res
}

// absorb runs the armor formula for one hit of base damage d and returns the
// share that reaches health. Armor is consumed by exactly what it absorbed.
func (u *Unit) absorb(d float64) float64 {
	if u.armor <= 0 {
		return d
	}
	reduced := d * (1 - u.armor/maxArmor)
	u.armor -= d - reduced
	if u.armor < 0 {
		u.armor = 0
	}
	return reduced
}

// TakeDamage subtracts damage from health, never going below zero.
func (u *Unit) TakeDamage(damage float64) {
	u.health -= damage
	if u.health < 0 {
		u.health = 0
	}
}

// heal restores health up to the heal ceiling.
func (u *Unit) heal(amount float64) {
	u.health = math.Min(u.health+amount, maxHealth)
}

// repairArmor restores armor up to the armor ceiling.
func (u *Unit) repairArmor(amount float64) {
	u.armor = math.Min(u.armor+amount, maxArmor)
}
