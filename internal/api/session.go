package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/Garsondee/Turn-Tactics/internal/game"
)

// Session lifecycle states.
const (
	StateReady     = "ready"
	StateStreaming = "streaming"
	StateFinished  = "finished"
)

const (
	eventStream = "stream"
	eventPause  = "pause"
	eventFinish = "finish"
)

var (
	ErrNotFound  = errors.New("battle not found")
	ErrStreaming = errors.New("battle is streaming")
	ErrFinished  = errors.New("battle is finished")
)

// Order is a manual action addressed by unit labels.
type Order struct {
	Kind   string  `json:"kind"`
	Actor  string  `json:"actor"`
	Target string  `json:"target,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// Frame is one streamed turn.
type Frame struct {
	Turn     int                 `json:"turn"`
	Events   []game.Event        `json:"events"`
	Snapshot game.BattleSnapshot `json:"snapshot"`
	State    string              `json:"state"`
}

// View is the JSON form of a session.
type View struct {
	ID       string              `json:"id"`
	Scenario string              `json:"scenario"`
	State    string              `json:"state"`
	Created  time.Time           `json:"created"`
	Outcome  game.OutcomeReason  `json:"outcome"`
	Snapshot game.BattleSnapshot `json:"snapshot"`
}

// Session is one battle served over HTTP. All battle access goes through mu;
// the lifecycle machine guards which requests may run.
type Session struct {
	ID       string
	Scenario string
	Created  time.Time

	mu        sync.Mutex
	battle    *game.Battle
	lifecycle *fsm.FSM
	maxTurns  int
	streamed  int // event log length already sent to the stream
}

func newSession(id, scenario string, b *game.Battle, maxTurns int, onFinish func(context.Context, *Session)) *Session {
	s := &Session{
		ID:       id,
		Scenario: scenario,
		Created:  time.Now().UTC(),
		battle:   b,
		maxTurns: maxTurns,
	}
	s.lifecycle = fsm.NewFSM(
		StateReady,
		fsm.Events{
			{Name: eventStream, Src: []string{StateReady}, Dst: StateStreaming},
			{Name: eventPause, Src: []string{StateStreaming}, Dst: StateReady},
			{Name: eventFinish, Src: []string{StateReady, StateStreaming}, Dst: StateFinished},
		},
		fsm.Callbacks{
			"enter_" + StateFinished: func(ctx context.Context, _ *fsm.Event) {
				if onFinish != nil {
					onFinish(ctx, s)
				}
			},
		},
	)
	return s
}

// State returns the lifecycle state.
func (s *Session) State() string {
	return s.lifecycle.Current()
}

// done reports whether the battle has reached a terminal position or the
// turn cap. Caller holds mu.
func (s *Session) done() bool {
	return s.battle.Over() || (s.maxTurns > 0 && s.battle.Turn() >= s.maxTurns)
}

func (s *Session) ready() error {
	switch s.State() {
	case StateStreaming:
		return ErrStreaming
	case StateFinished:
		return ErrFinished
	}
	return nil
}

// finishIfDone moves the session to finished once the battle is done.
// Caller holds mu.
func (s *Session) finishIfDone(ctx context.Context) error {
	if !s.done() || s.State() == StateFinished {
		return nil
	}
	return s.lifecycle.Event(ctx, eventFinish)
}

// Advance runs up to n turns, stopping early when the battle is done. It
// returns the number of turns actually run.
func (s *Session) Advance(ctx context.Context, n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return 0, err
	}
	ran := 0
	for ran < n && !s.done() {
		s.battle.RunTurn()
		ran++
	}
	return ran, s.finishIfDone(ctx)
}

// Issue applies a manual order. Multi-turn orders only start; turns advance them.
func (s *Session) Issue(ctx context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	kind, err := game.ParseActionKind(o.Kind)
	if err != nil {
		return err
	}
	actor := s.battle.UnitByLabel(o.Actor)
	if actor == nil {
		return fmt.Errorf("%w: no unit %q", game.ErrInvalidAction, o.Actor)
	}
	var target *game.Unit
	if o.Target != "" {
		if target = s.battle.UnitByLabel(o.Target); target == nil {
			return fmt.Errorf("%w: no unit %q", game.ErrInvalidAction, o.Target)
		}
	}
	a, err := game.NewAction(kind, actor, target, game.Point{X: o.X, Y: o.Y})
	if err != nil {
		return err
	}
	if err := s.battle.Issue(a); err != nil {
		return err
	}
	return s.finishIfDone(ctx)
}

// Events returns log entries from turn from onwards.
func (s *Session) Events(from int) []game.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.battle.Log().FilterTurnRange(from, math.MaxInt)
	if events == nil {
		events = []game.Event{}
	}
	return events
}

// View copies the session for the wire.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:       s.ID,
		Scenario: s.Scenario,
		State:    s.State(),
		Created:  s.Created,
		Outcome:  game.DetermineOutcome(s.battle),
		Snapshot: s.battle.Snapshot(),
	}
}

// beginStream claims the session for a stream.
func (s *Session) beginStream(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	s.streamed = s.battle.Log().Len()
	return s.lifecycle.Event(ctx, eventStream)
}

// step runs one streamed turn. The returned bool is false once the battle is
// done; the frame is still valid then.
func (s *Session) step(ctx context.Context) (Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done() {
		s.battle.RunTurn()
	}
	log := s.battle.Log()
	f := Frame{
		Turn:     s.battle.Turn(),
		Events:   log.Since(s.streamed),
		Snapshot: s.battle.Snapshot(),
	}
	if f.Events == nil {
		f.Events = []game.Event{}
	}
	s.streamed = log.Len()
	err := s.finishIfDone(ctx)
	f.State = s.State()
	return f, f.State != StateFinished, err
}

// endStream hands a still-running battle back to request mode.
func (s *Session) endStream(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() == StateStreaming {
		_ = s.lifecycle.Event(ctx, eventPause)
	}
}
