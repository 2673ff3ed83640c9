package sim

import (
	"container/heap"
	"sync"
)

// EventQueue orders events by time. Primary events run before secondary
// events of the same time, and events that tie on both run in the order they
// were pushed, so a simulation replays identically.
type EventQueue struct {
	sync.Mutex
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event to the queue.
func (q *EventQueue) Push(evt Event) {
	q.Lock()
	defer q.Unlock()

	heap.Push(&q.events, queuedEvent{evt: evt, seq: q.nextSeq})
	q.nextSeq++
}

// Pop removes and returns the next event. It returns nil if the queue is
// empty.
func (q *EventQueue) Pop() Event {
	q.Lock()
	defer q.Unlock()

	if len(q.events) == 0 {
		return nil
	}

	return heap.Pop(&q.events).(queuedEvent).evt
}

// Len returns the number of events in the queue.
func (q *EventQueue) Len() int {
	q.Lock()
	defer q.Unlock()

	return len(q.events)
}

type queuedEvent struct {
	evt Event
	seq uint64
}

type eventHeap []queuedEvent

func (h eventHeap) Len() int {
	return len(h)
}

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]

	if a.evt.Time() != b.evt.Time() {
		return a.evt.Time() < b.evt.Time()
	}

	if a.evt.IsSecondary() != b.evt.IsSecondary() {
		return !a.evt.IsSecondary()
	}

	return a.seq < b.seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queuedEvent))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]

	return e
}
