package types

import "time"

// EventKind identifies a search event.
type EventKind int

const (
	EventStarted EventKind = iota
	EventProgress
	EventMatch
	EventFinished
)

// Event is a structured observation emitted by the miner. Fields that do
// not apply to a kind are left zero.
type Event struct {
	Kind     EventKind
	Prefix   string
	Mode     Mode
	Workers  int
	Round    int
	Domain   string // decimal width of the searched range
	Attempts uint64
	Elapsed  time.Duration
	Result   *Result
	Err      error
}

// EventSink receives search events. Implementations must be safe for
// concurrent use.
type EventSink interface {
	Event(Event)
}

// EventFunc adapts a function to EventSink.
type EventFunc func(Event)

// Event calls f(e).
func (f EventFunc) Event(e Event) { f(e) }

// Discard drops all events.
var Discard EventSink = EventFunc(func(Event) {})
