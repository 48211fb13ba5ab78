package game

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Battle is the turn coordinator. It owns both rosters and runs every living
// unit's decision in fixed team-then-roster order, executing each action
// before the next unit decides.
type Battle struct {
	red  []*Unit
	blue []*Unit
	all  []*Unit // creation order, stable indices

	attacker  Team
	turn      int
	seed      int64
	hitChance float64
	dice      *Dice
	rally     [2]Point

	sight   LineOfSight
	builder ObstacleBuilder
	terrain Terrain

	log    *EventLog
	logger zerolog.Logger

	nextID int
}

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optInfra optionKind = iota // seed, hooks, rally; applied first
	optUnit                    // add units; applied after infrastructure
)

// Option configures a Battle during construction.
type Option struct {
	kind optionKind
	fn   func(*Battle)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return Option{optInfra, func(b *Battle) { b.seed = seed }}
}

// WithHitChance overrides the per-bullet hit probability.
func WithHitChance(p float64) Option {
	return Option{optInfra, func(b *Battle) { b.hitChance = p }}
}

// WithAttacker sets which team acts first each turn.
func WithAttacker(t Team) Option {
	return Option{optInfra, func(b *Battle) { b.attacker = t }}
}

// WithRally sets the point a team advances on when nobody is in range.
func WithRally(t Team, x, y float64) Option {
	return Option{optInfra, func(b *Battle) { b.rally[t] = Point{X: x, Y: y} }}
}

// WithLineOfSight replaces the sight check used by support units.
func WithLineOfSight(s LineOfSight) Option {
	return Option{optInfra, func(b *Battle) { b.sight = s }}
}

// WithObstacleBuilder sets the hook run when an engineer finishes a build.
func WithObstacleBuilder(ob ObstacleBuilder) Option {
	return Option{optInfra, func(b *Battle) { b.builder = ob }}
}

// WithTerrain sets the terrain reported in snapshots.
func WithTerrain(t Terrain) Option {
	return Option{optInfra, func(b *Battle) { b.terrain = t }}
}

// WithLogger attaches an operational logger.
func WithLogger(l zerolog.Logger) Option {
	return Option{optInfra, func(b *Battle) { b.logger = l }}
}

// WithUnit adds a unit of the given role.
func WithUnit(role Role, team Team, x, y float64) Option {
	return Option{optUnit, func(b *Battle) { b.AddUnit(role, team, x, y) }}
}

// WithRedUnit adds a red unit.
func WithRedUnit(role Role, x, y float64) Option {
	return WithUnit(role, TeamRed, x, y)
}

// WithBlueUnit adds a blue unit.
func WithBlueUnit(role Role, x, y float64) Option {
	return WithUnit(role, TeamBlue, x, y)
}

// NewBattle constructs a battle in two ordered passes: infrastructure, then
// units.
func NewBattle(opts ...Option) *Battle {
	b := &Battle{
		attacker:  TeamRed,
		seed:      1,
		hitChance: DefaultHitChance,
		sight:     ClearSight{},
		builder:   NoopBuilder{},
		terrain:   FlatTerrain{},
		log:       NewEventLog(),
		logger:    zerolog.Nop(),
	}
	for _, o := range opts {
		if o.kind == optInfra {
			o.fn(b)
		}
	}
	b.dice = NewDice(b.seed, b.hitChance)
	for _, o := range opts {
		if o.kind == optUnit {
			o.fn(b)
		}
	}
	return b
}

// AddUnit places a new unit at the end of its team's roster.
func (b *Battle) AddUnit(role Role, team Team, x, y float64) *Unit {
	u := NewUnit(b.nextID, role, team, x, y)
	b.nextID++
	b.all = append(b.all, u)
	if team == TeamBlue {
		b.blue = append(b.blue, u)
	} else {
		b.red = append(b.red, u)
	}
	return u
}

func (b *Battle) Turn() int              { return b.turn }
func (b *Battle) Seed() int64            { return b.seed }
func (b *Battle) Attacker() Team         { return b.attacker }
func (b *Battle) Units() []*Unit         { return b.all }
func (b *Battle) Log() *EventLog         { return b.log }
func (b *Battle) Terrain() Terrain       { return b.terrain }
func (b *Battle) Rally(t Team) Point     { return b.rally[t] }
func (b *Battle) Logger() zerolog.Logger { return b.logger }

// Roster returns a team's units in roster order, dead ones included.
func (b *Battle) Roster(t Team) []*Unit {
	if t == TeamBlue {
		return b.blue
	}
	return b.red
}

// UnitByLabel finds a unit by its label, e.g. "B3".
func (b *Battle) UnitByLabel(label string) *Unit {
	for _, u := range b.all {
		if u.label == label {
			return u
		}
	}
	return nil
}

// Alive counts a team's living units.
func (b *Battle) Alive(t Team) int {
	n := 0
	for _, u := range b.Roster(t) {
		if u.IsAlive() {
			n++
		}
	}
	return n
}

// Over reports whether at least one side has no living units. The battle
// never stops itself; callers check this between turns.
func (b *Battle) Over() bool {
	return b.Alive(TeamRed) == 0 || b.Alive(TeamBlue) == 0
}

// RunTurn advances the battle one turn.
func (b *Battle) RunTurn() {
	b.turn++
	for _, team := range [2]Team{b.attacker, b.attacker.Opponent()} {
		for _, u := range b.Roster(team) {
			if reason, lost := u.commitmentLost(); lost && u.IsAlive() {
				b.abandon(u, Action{Kind: u.busy.Kind.action(), Actor: u, Target: u.busy.Target}, reason)
			}
			a, ok := decide(u, b.viewFor(u))
			if !ok {
				continue
			}
			b.execute(a)
		}
	}
	b.logger.Debug().Int("turn", b.turn).
		Int("red_alive", b.Alive(TeamRed)).Int("blue_alive", b.Alive(TeamBlue)).
		Msg("turn complete")
}

// RunTurns advances the battle n turns.
func (b *Battle) RunTurns(n int) {
	for i := 0; i < n; i++ {
		b.RunTurn()
	}
}

// RunUntil advances up to maxTurns, stopping early once predicate holds.
// Returns the turn at which the predicate was satisfied, or -1.
func (b *Battle) RunUntil(predicate func(*Battle) bool, maxTurns int) int {
	for i := 0; i < maxTurns; i++ {
		b.RunTurn()
		if predicate(b) {
			return b.turn
		}
	}
	return -1
}

// Issue applies a manual order outside the turn order. The action is
// validated again, so hand-built values get the same role and target checks
// as NewAction. Multi-turn orders (build, heal, reload, aim) only start the
// commitment; the turns that follow advance it.
func (b *Battle) Issue(a Action) error {
	a, err := NewAction(a.Kind, a.Actor, a.Target, a.Dest)
	if err != nil {
		return err
	}
	u := a.Actor
	if !b.owns(u) {
		return fmt.Errorf("%w: actor is not part of this battle", ErrInvalidAction)
	}
	if !u.IsAlive() {
		return fmt.Errorf("%w: %s is down", ErrActorUnavailable, u.label)
	}
	if a.Target != nil && !b.owns(a.Target) {
		return fmt.Errorf("%w: target is not part of this battle", ErrInvalidAction)
	}
	if busy, ok := a.Kind.commitment(); ok {
		if u.IsBusy() {
			return fmt.Errorf("%w: %s is already %s", ErrActorUnavailable, u.label, u.busy)
		}
		if a.Target != nil && !a.Target.IsAlive() {
			return fmt.Errorf("%w: %s is down", ErrInvalidAction, a.Target.label)
		}
		if a.Target != nil && !u.inReach(busy, a.Target) {
			return fmt.Errorf("%w: %s is out of range of %s", ErrInvalidAction, a.Target.label, u.label)
		}
		b.begin(u, busy, a)
		return nil
	}
	if (a.Kind == ActionMove || a.Kind == ActionAttack) && u.IsBusy() {
		return fmt.Errorf("%w: %s is %s", ErrActorUnavailable, u.label, u.busy)
	}
	b.execute(a)
	return nil
}

func (b *Battle) owns(u *Unit) bool {
	for _, o := range b.all {
		if o == u {
			return true
		}
	}
	return false
}

func (b *Battle) viewFor(u *Unit) view {
	return view{
		allies:  b.Roster(u.team),
		enemies: b.Roster(u.team.Opponent()),
		rally:   b.rally[u.team],
		sight:   b.sight,
	}
}

// record appends an event for u to the battle log.
func (b *Battle) record(u *Unit, kind ActionKind, target *Unit, detail string, amount float64) {
	e := Event{
		Turn:   b.turn,
		Unit:   u.label,
		Team:   u.team.String(),
		Role:   u.role.String(),
		Kind:   kind.String(),
		Detail: detail,
		Amount: amount,
	}
	if target != nil {
		e.Target = target.label
	}
	b.log.Add(e)
}
