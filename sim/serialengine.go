package sim

import (
	"log"
	"reflect"
	"sync"
	"sync/atomic"
)

// A SerialEngine runs events one after another on the calling goroutine.
// Other goroutines may read the time, pause and continue the engine while it
// runs.
type SerialEngine struct {
	HookableBase

	timeLock sync.RWMutex
	time     VTimeInSec
	queue    *EventQueue

	numHandled atomic.Uint64

	pauseMu   sync.Mutex
	paused    bool
	runPermit sync.Mutex

	runLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{queue: NewEventQueue()}
}

// Schedule registers an event to happen in the future. Scheduling into the
// past is a contract violation.
func (e *SerialEngine) Schedule(evt Event) {
	now := e.CurrentTime()
	if evt.Time() < now {
		log.Panicf("scheduling %s at %.10f, earlier than now %.10f",
			reflect.TypeOf(evt), evt.Time(), now)
	}

	e.queue.Push(evt)
}

// CurrentTime returns the time of the event being handled.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.timeLock.RLock()
	defer e.timeLock.RUnlock()

	return e.time
}

func (e *SerialEngine) setTime(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// NumHandledEvents returns the number of events handled so far.
func (e *SerialEngine) NumHandledEvents() uint64 {
	return e.numHandled.Load()
}

// Run handles events until the queue is empty or a handler returns an error.
func (e *SerialEngine) Run() error {
	e.runLock.Lock()
	defer e.runLock.Unlock()

	for {
		done, err := e.step()
		if done || err != nil {
			return err
		}
	}
}

func (e *SerialEngine) step() (done bool, err error) {
	e.runPermit.Lock()
	defer e.runPermit.Unlock()

	evt := e.queue.Pop()
	if evt == nil {
		return true, nil
	}

	e.setTime(evt.Time())

	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	err = evt.Handler().Handle(evt)
	e.numHandled.Add(1)

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return false, err
}

// Pause stops the engine before its next event until Continue is called.
func (e *SerialEngine) Pause() {
	e.pauseMu.Lock()
	defer e.pauseMu.Unlock()

	if e.paused {
		return
	}

	e.runPermit.Lock()
	e.paused = true
}

// Continue lets a paused engine handle events again.
func (e *SerialEngine) Continue() {
	e.pauseMu.Lock()
	defer e.pauseMu.Unlock()

	if !e.paused {
		return
	}

	e.paused = false
	e.runPermit.Unlock()
}
