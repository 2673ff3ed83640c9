package controller

import "github.com/sarchlab/ssdctrl/sim"

// DefaultBadBlockBufferBase is the reserved data buffer used when the grown
// bad block table is persisted.
const DefaultBadBlockBufferBase uint64 = 0x1000_0000

// Builder can build Controllers.
type Builder struct {
	hw                 Hardware
	timeTeller         sim.TimeTeller
	badBlockBufferBase uint64
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		badBlockBufferBase: DefaultBadBlockBufferBase,
	}
}

// WithHardware sets the register and queue surface to drive.
func (b Builder) WithHardware(hw Hardware) Builder {
	b.hw = hw
	return b
}

// WithTimeTeller sets the clock used for the flush baseline.
func (b Builder) WithTimeTeller(t sim.TimeTeller) Builder {
	b.timeTeller = t
	return b
}

// WithBadBlockBufferBase sets the scratch buffer used to persist the grown
// bad block table.
func (b Builder) WithBadBlockBufferBase(addr uint64) Builder {
	b.badBlockBufferBase = addr
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.hw == nil {
		panic("controller requires hardware")
	}

	if b.timeTeller == nil {
		panic("controller requires a time teller")
	}
}

// Build creates a Controller that drives ctx. A nil ctx creates a fresh
// idle context.
func (b Builder) Build(ctx *DeviceContext) *Controller {
	b.parametersMustBeValid()

	if ctx == nil {
		ctx = &DeviceContext{Status: StateIdle}
	}

	return &Controller{
		ctx:                ctx,
		hw:                 b.hw,
		timeTeller:         b.timeTeller,
		badBlockBufferBase: b.badBlockBufferBase,
	}
}
