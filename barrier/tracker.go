// Package barrier tracks, per write stream, the epochs whose buffered data
// still has to be flushed, in the order the host closed them.
package barrier

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

// Capacity is the number of pending epochs a stream can hold.
const Capacity = 256

// InvalidEpochID marks an unused slot. It can never be pushed.
const InvalidEpochID uint32 = 0xFFFFFFFF

// Tracker faults. All of them are wrapped with the stream id.
var (
	ErrInvalidStream    = errors.New("invalid barrier stream")
	ErrInvalidEpoch     = errors.New("invalid epoch id")
	ErrEmpty            = errors.New("barrier stream is empty")
	ErrCapacityExceeded = errors.New("barrier stream capacity exceeded")
)

// HookPosEpochPush marks when an epoch is pushed into a stream.
var HookPosEpochPush = &sim.HookPos{Name: "Epoch Push"}

// HookPosEpochPop marks when an epoch is popped from a stream.
var HookPosEpochPop = &sim.HookPos{Name: "Epoch Pop"}

// CapacityPolicy selects when a push into a full stream faults.
type CapacityPolicy int

const (
	// CapacityStrict faults as soon as the stream holds Capacity epochs.
	CapacityStrict CapacityPolicy = iota

	// CapacityLegacy faults only once the stream holds more than Capacity
	// epochs. The push that takes the count to Capacity+1 is accepted and
	// overwrites the oldest unread epoch.
	CapacityLegacy
)

// String returns the name of the policy.
func (p CapacityPolicy) String() string {
	switch p {
	case CapacityStrict:
		return "strict"
	case CapacityLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("CapacityPolicy(%d)", int(p))
	}
}

// EpochEntry is the item carried by the hooks of a Tracker.
type EpochEntry struct {
	StreamID int
	EpochID  uint32
}

type stream struct {
	sync.Mutex
	epochs [Capacity]uint32
	head   int
	tail   int
	count  int
}

func (s *stream) reset() {
	s.Lock()
	defer s.Unlock()

	s.head = 0
	s.tail = 0
	s.count = 0

	for i := range s.epochs {
		s.epochs[i] = InvalidEpochID
	}
}

// A Tracker holds the pending flush epochs of every barrier stream.
//
// Each stream is a FIFO. There is no ordering between streams.
type Tracker struct {
	sim.HookableBase

	policy  CapacityPolicy
	streams [nvme.NumStreams]stream
}

// NewTracker creates a Tracker with empty streams.
func NewTracker(policy CapacityPolicy) *Tracker {
	t := &Tracker{policy: policy}
	t.Reset()

	return t
}

// Policy returns the capacity policy of the tracker.
func (t *Tracker) Policy() CapacityPolicy {
	return t.policy
}

// Reset empties every stream.
func (t *Tracker) Reset() {
	for i := range t.streams {
		t.streams[i].reset()
	}
}

func (t *Tracker) stream(streamID int) (*stream, error) {
	if streamID < nvme.StreamOne || streamID > nvme.NumStreams {
		return nil, fmt.Errorf("stream %d: %w", streamID, ErrInvalidStream)
	}

	return &t.streams[streamID-1], nil
}

func (t *Tracker) full(s *stream) bool {
	if t.policy == CapacityLegacy {
		return s.count > Capacity
	}

	return s.count >= Capacity
}

// Push appends an epoch at the tail of the stream.
func (t *Tracker) Push(streamID int, epochID uint32) error {
	s, err := t.stream(streamID)
	if err != nil {
		return err
	}

	if epochID == InvalidEpochID {
		return fmt.Errorf("stream %d: %w", streamID, ErrInvalidEpoch)
	}

	s.Lock()
	if t.full(s) {
		s.Unlock()
		return fmt.Errorf("stream %d: %w", streamID, ErrCapacityExceeded)
	}

	s.epochs[s.tail] = epochID
	s.tail = (s.tail + 1) % Capacity
	s.count++
	s.Unlock()

	t.invoke(HookPosEpochPush, streamID, epochID)

	return nil
}

// Pop removes and returns the epoch at the head of the stream.
func (t *Tracker) Pop(streamID int) (uint32, error) {
	s, err := t.stream(streamID)
	if err != nil {
		return InvalidEpochID, err
	}

	s.Lock()
	if s.count == 0 {
		s.Unlock()
		return InvalidEpochID, fmt.Errorf("stream %d: %w", streamID, ErrEmpty)
	}

	epochID := s.epochs[s.head]
	s.epochs[s.head] = InvalidEpochID
	s.head = (s.head + 1) % Capacity
	s.count--
	s.Unlock()

	t.invoke(HookPosEpochPop, streamID, epochID)

	return epochID, nil
}

// Count returns the number of pending epochs of the stream.
func (t *Tracker) Count(streamID int) (int, error) {
	s, err := t.stream(streamID)
	if err != nil {
		return 0, err
	}

	s.Lock()
	defer s.Unlock()

	return s.count, nil
}

// Drain pops every pending epoch of the stream in FIFO order and passes it to
// fn. It stops at the first error.
func (t *Tracker) Drain(streamID int, fn func(epochID uint32) error) error {
	for {
		n, err := t.Count(streamID)
		if err != nil {
			return err
		}

		if n == 0 {
			return nil
		}

		epochID, err := t.Pop(streamID)
		if err != nil {
			return err
		}

		if err := fn(epochID); err != nil {
			return err
		}
	}
}

func (t *Tracker) invoke(pos *sim.HookPos, streamID int, epochID uint32) {
	if t.NumHooks() == 0 {
		return
	}

	t.InvokeHook(sim.HookCtx{
		Domain: t,
		Pos:    pos,
		Item:   EpochEntry{StreamID: streamID, EpochID: epochID},
	})
}
