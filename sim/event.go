// Package sim is a small discrete event simulation core. Components tick on
// a serial engine and sleep when a tick makes no progress.
package sim

// VTimeInSec is simulated time in seconds.
type VTimeInSec float64

// An Event happens at a point in simulated time and is handled by its
// handler.
type Event interface {
	Time() VTimeInSec
	Handler() Handler

	// IsSecondary events run after the primary events of the same time.
	IsSecondary() bool
}

// EventBase carries the fields every event needs.
type EventBase struct {
	time      VTimeInSec
	handler   Handler
	secondary bool
}

// NewEventBase creates a primary EventBase.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{time: t, handler: handler}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary tells if the event is secondary.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler handles the events scheduled for it. An event may only change
// the state of its own handler.
type Handler interface {
	Handle(e Event) error
}

// TimeTeller tells the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts future events.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine drives a simulation by handling events in time order.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run handles events until none is left.
	Run() error

	// Pause holds the engine before its next event.
	Pause()

	// Continue releases a paused engine.
	Continue()
}
