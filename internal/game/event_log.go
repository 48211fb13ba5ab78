package game

import (
	"fmt"
	"strings"
)

// Event is one recorded action outcome.
type Event struct {
	Turn   int     `json:"turn"`
	Unit   string  `json:"unit"`   // actor label e.g. "R0", or "--" for battle-wide events
	Team   string  `json:"team"`   // "red", "blue", or "--"
	Role   string  `json:"role"`   // actor role
	Kind   string  `json:"kind"`   // action kind or battle event name
	Target string  `json:"target"` // target label, empty when untargeted
	Detail string  `json:"detail"` // human-readable outcome
	Amount float64 `json:"amount"` // optional numeric value (damage, progress, ...)
}

// String formats the event as a fixed-width log line.
//
//	[T=004] R2   assault  attack  B1   smg fired 3, hit 2, -12.0 hp -68.0 armor
func (e Event) String() string {
	target := e.Target
	if target == "" {
		target = "-"
	}
	return fmt.Sprintf("[T=%03d] %-4s %-8s %-7s %-4s %s",
		e.Turn, e.Unit, e.Role, e.Kind, target, e.Detail)
}

// EventLog is the per-battle, append-only record of what every unit did.
type EventLog struct {
	entries []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Add records a new entry.
func (el *EventLog) Add(e Event) {
	el.entries = append(el.entries, e)
}

// Len returns the number of recorded events.
func (el *EventLog) Len() int {
	return len(el.entries)
}

// Entries returns all recorded entries.
func (el *EventLog) Entries() []Event {
	return el.entries
}

// Since returns the entries at index n onward. Callers polling the log keep
// the last Len they saw.
func (el *EventLog) Since(n int) []Event {
	if n < 0 {
		n = 0
	}
	if n >= len(el.entries) {
		return nil
	}
	out := make([]Event, len(el.entries)-n)
	copy(out, el.entries[n:])
	return out
}

// Filter returns entries matching the given kind. Empty matches any.
func (el *EventLog) Filter(kind string) []Event {
	var out []Event
	for _, e := range el.entries {
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries whose actor is the given label.
func (el *EventLog) FilterUnit(label string) []Event {
	var out []Event
	for _, e := range el.entries {
		if e.Unit == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTurnRange returns entries within [fromTurn, toTurn] inclusive.
func (el *EventLog) FilterTurnRange(fromTurn, toTurn int) []Event {
	var out []Event
	for _, e := range el.entries {
		if e.Turn >= fromTurn && e.Turn <= toTurn {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match kind.
func (el *EventLog) Count(kind string) int {
	return len(el.Filter(kind))
}

// LastOf returns the most recent entry of the given kind, or false if none.
func (el *EventLog) LastOf(kind string) (Event, bool) {
	for i := len(el.entries) - 1; i >= 0; i-- {
		if el.entries[i].Kind == kind {
			return el.entries[i], true
		}
	}
	return Event{}, false
}

// HasEntry returns true if an entry matches unit, kind and detail substring.
// Empty arguments match anything.
func (el *EventLog) HasEntry(unit, kind, detailSubstr string) bool {
	for _, e := range el.entries {
		if unit != "" && e.Unit != unit {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		if detailSubstr != "" && !strings.Contains(e.Detail, detailSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as one string.
func (el *EventLog) Format() string {
	return formatEvents(el.entries)
}

// FormatRange returns the log restricted to a turn range.
func (el *EventLog) FormatRange(fromTurn, toTurn int) string {
	return formatEvents(el.FilterTurnRange(fromTurn, toTurn))
}

func formatEvents(events []Event) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable state block for the given units.
func (el *EventLog) Summary(turn int, units []*Unit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", turn)

	alive := map[Team]int{}
	total := map[Team]int{}
	for _, u := range units {
		total[u.team]++
		if u.IsAlive() {
			alive[u.team]++
		}
	}
	fmt.Fprintf(&sb, "Alive: red=%d/%d  blue=%d/%d\n",
		alive[TeamRed], total[TeamRed], alive[TeamBlue], total[TeamBlue])

	kinds := map[string]int{}
	for _, e := range el.entries {
		kinds[e.Kind]++
	}
	sb.WriteString("Actions: ")
	for k := ActionKind(0); k < actionKindCount; k++ {
		if n := kinds[k.String()]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", k, n)
		}
	}
	sb.WriteByte('\n')

	for _, u := range units {
		status := "alive"
		if !u.IsAlive() {
			status = "dead"
		}
		fmt.Fprintf(&sb, "%-4s %-8s hp=%5.1f armor=%5.1f at (%.1f,%.1f) %s %s\n",
			u.label, u.role, u.health, u.armor, u.x, u.y, u.busy, status)
	}
	return sb.String()
}
