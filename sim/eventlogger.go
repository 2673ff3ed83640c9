package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook that prints every event an engine is about to handle.
type EventLogger struct {
	logger    *log.Logger
	numEvents uint64
}

// NewEventLogger returns a new EventLogger which will write into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// NumEvents returns the number of events logged.
func (h *EventLogger) NumEvents() uint64 {
	return h.numEvents
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	h.numEvents++

	named, ok := evt.Handler().(Named)
	if ok {
		h.logger.Printf("%.10f, %s -> %s",
			evt.Time(), reflect.TypeOf(evt), named.Name())
	} else {
		h.logger.Printf("%.10f, %s", evt.Time(), reflect.TypeOf(evt))
	}
}
