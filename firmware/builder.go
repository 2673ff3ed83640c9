package firmware

import (
	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/controller"
	"github.com/sarchlab/ssdctrl/dispatch"
	"github.com/sarchlab/ssdctrl/sim"
)

// Builder can build firmware components.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq

	hw         controller.Hardware
	fetcher    CommandFetcher
	completer  dispatch.Completer
	admin      AdminHandler
	translator dispatch.Translator
	flusher    dispatch.Flusher
	storage    StoragePipeline

	capacityLow        uint32
	capacityHigh       uint32
	barrierEnabled     bool
	capacityPolicy     barrier.CapacityPolicy
	reportFlushFailure bool
	badBlockBufferBase uint64

	internalFlushPeriod sim.VTimeInSec
	faultHandler        FaultHandler
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:               1 * sim.GHz,
		capacityLow:        dispatch.DefaultCapacityLow,
		capacityHigh:       dispatch.DefaultCapacityHigh,
		capacityPolicy:     barrier.CapacityStrict,
		badBlockBufferBase: controller.DefaultBadBlockBufferBase,
		faultHandler:       PanicFaultHandler{},
	}
}

// WithEngine sets the engine that the firmware uses.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency that the firmware polls at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithHardware sets the register and queue surface.
func (b Builder) WithHardware(hw controller.Hardware) Builder {
	b.hw = hw
	return b
}

// WithCommandFetcher sets where commands are fetched from.
func (b Builder) WithCommandFetcher(f CommandFetcher) Builder {
	b.fetcher = f
	return b
}

// WithCompleter sets where completions are posted.
func (b Builder) WithCompleter(c dispatch.Completer) Builder {
	b.completer = c
	return b
}

// WithAdminHandler sets the admin command handler.
func (b Builder) WithAdminHandler(h AdminHandler) Builder {
	b.admin = h
	return b
}

// WithTranslator sets the storage-request translation layer.
func (b Builder) WithTranslator(t dispatch.Translator) Builder {
	b.translator = t
	return b
}

// WithFlusher sets the collaborator that persists buffered writes.
func (b Builder) WithFlusher(f dispatch.Flusher) Builder {
	b.flusher = f
	return b
}

// WithStoragePipeline sets the background storage-request engine.
func (b Builder) WithStoragePipeline(p StoragePipeline) Builder {
	b.storage = p
	return b
}

// WithCapacity sets the two-tier addressable capacity.
func (b Builder) WithCapacity(low, high uint32) Builder {
	b.capacityLow = low
	b.capacityHigh = high

	return b
}

// WithBarrier enables barrier support with the given capacity policy.
func (b Builder) WithBarrier(policy barrier.CapacityPolicy) Builder {
	b.barrierEnabled = true
	b.capacityPolicy = policy

	return b
}

// WithFlushFailureReporting makes failed flushes complete with an error
// status.
func (b Builder) WithFlushFailureReporting() Builder {
	b.reportFlushFailure = true
	return b
}

// WithBadBlockBufferBase sets the scratch buffer used at shutdown.
func (b Builder) WithBadBlockBufferBase(addr uint64) Builder {
	b.badBlockBufferBase = addr
	return b
}

// WithInternalFlushPeriod enables the internal periodic flush. A period of 0
// disables it.
func (b Builder) WithInternalFlushPeriod(period sim.VTimeInSec) Builder {
	b.internalFlushPeriod = period
	return b
}

// WithFaultHandler sets the fault handler.
func (b Builder) WithFaultHandler(h FaultHandler) Builder {
	b.faultHandler = h
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("engine is not set")
	}

	if b.fetcher == nil {
		panic("command fetcher is not set")
	}

	if b.admin == nil {
		panic("admin handler is not set")
	}

	if b.storage == nil {
		panic("storage pipeline is not set")
	}

	if b.faultHandler == nil {
		panic("fault handler is not set")
	}

	if b.internalFlushPeriod < 0 {
		panic("internal flush period cannot be negative")
	}
}

// Build creates a firmware component with the given name.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		ctx:                 &controller.DeviceContext{Status: controller.StateIdle},
		fetcher:             b.fetcher,
		admin:               b.admin,
		storage:             b.storage,
		faultHandler:        b.faultHandler,
		internalFlushPeriod: b.internalFlushPeriod,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.ctrl = controller.MakeBuilder().
		WithHardware(b.hw).
		WithTimeTeller(b.engine).
		WithBadBlockBufferBase(b.badBlockBufferBase).
		Build(c.ctx)

	db := dispatch.MakeBuilder().
		WithTranslator(b.translator).
		WithFlusher(b.flusher).
		WithCompleter(b.completer).
		WithCapacity(b.capacityLow, b.capacityHigh)

	if b.barrierEnabled {
		c.tracker = barrier.NewTracker(b.capacityPolicy)
		db = db.WithBarrier(c.tracker)
	}

	if b.reportFlushFailure {
		db = db.WithFlushFailureReporting()
	}

	c.dispatcher = db.Build()

	return c
}
