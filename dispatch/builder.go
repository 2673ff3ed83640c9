package dispatch

import (
	"github.com/sarchlab/ssdctrl/barrier"
)

// Builder can build Dispatchers.
type Builder struct {
	translator   Translator
	flusher      Flusher
	completer    Completer
	tracker      *barrier.Tracker
	capacityLow  uint32
	capacityHigh uint32

	reportFlushFailure bool
}

// MakeBuilder creates a Builder with default capacity.
func MakeBuilder() Builder {
	return Builder{
		capacityLow:  DefaultCapacityLow,
		capacityHigh: DefaultCapacityHigh,
	}
}

// Default addressable capacity, in logical blocks.
const (
	DefaultCapacityLow  uint32 = 0x0800_0000
	DefaultCapacityHigh uint32 = 0
)

// WithTranslator sets the storage-request translation layer.
func (b Builder) WithTranslator(t Translator) Builder {
	b.translator = t
	return b
}

// WithFlusher sets the collaborator that persists buffered writes.
func (b Builder) WithFlusher(f Flusher) Builder {
	b.flusher = f
	return b
}

// WithCompleter sets the collaborator that posts completions.
func (b Builder) WithCompleter(c Completer) Builder {
	b.completer = c
	return b
}

// WithCapacity sets the two-tier addressable capacity.
func (b Builder) WithCapacity(low, high uint32) Builder {
	b.capacityLow = low
	b.capacityHigh = high

	return b
}

// WithBarrier enables barrier support. Writes then keep their stream and
// epoch fields, and flushes drain the tracker.
func (b Builder) WithBarrier(tracker *barrier.Tracker) Builder {
	b.tracker = tracker
	return b
}

// WithFlushFailureReporting makes a flush whose collaborator fails complete
// with an internal error status instead of success.
func (b Builder) WithFlushFailureReporting() Builder {
	b.reportFlushFailure = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.translator == nil {
		panic("dispatcher requires a translator")
	}

	if b.flusher == nil {
		panic("dispatcher requires a flusher")
	}

	if b.completer == nil {
		panic("dispatcher requires a completer")
	}

	if b.capacityLow == 0 {
		panic("addressable capacity cannot be 0")
	}
}

// Build creates a Dispatcher.
func (b Builder) Build() *Dispatcher {
	b.parametersMustBeValid()

	d := &Dispatcher{
		decoder: Decoder{
			CapacityLow:  b.capacityLow,
			CapacityHigh: b.capacityHigh,
		},
		translator:         b.translator,
		completer:          b.completer,
		reportFlushFailure: b.reportFlushFailure,
	}

	if b.tracker != nil {
		d.writePath = NewBarrierWritePath(b.translator, b.flusher, b.tracker)
	} else {
		d.writePath = NewPlainWritePath(b.translator, b.flusher)
	}

	return d
}
