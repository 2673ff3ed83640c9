package hostsim

import (
	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/firmware"
	"github.com/sarchlab/ssdctrl/sim"
)

// Platform is a firmware instance wired to simulated collaborators.
type Platform struct {
	Engine   sim.Engine
	Host     *Host
	FTL      *FTL
	Admin    *AdminResponder
	Firmware *firmware.Comp
	Driver   *Driver
}

// Run starts the driver and runs the engine until no event is left.
func (p *Platform) Run() error {
	p.Driver.Start()
	return p.Engine.Run()
}

// PlatformBuilder can build Platforms.
type PlatformBuilder struct {
	engine       sim.Engine
	freq         sim.Freq
	workload     Workload
	faultHandler firmware.FaultHandler

	barrierEnabled      bool
	capacityPolicy      barrier.CapacityPolicy
	reportFlushFailure  bool
	internalFlushPeriod sim.VTimeInSec
	dmaLatency          int
	maxInFlight         int
}

// MakePlatformBuilder creates a PlatformBuilder with default parameters.
func MakePlatformBuilder() PlatformBuilder {
	return PlatformBuilder{
		freq:         1 * sim.GHz,
		workload:     DefaultWorkload(),
		faultHandler: firmware.PanicFaultHandler{},
		dmaLatency:   4,
		maxInFlight:  8,
	}
}

// WithEngine sets the engine. A serial engine is created if not set.
func (b PlatformBuilder) WithEngine(e sim.Engine) PlatformBuilder {
	b.engine = e
	return b
}

// WithFreq sets the frequency of the firmware and the driver.
func (b PlatformBuilder) WithFreq(f sim.Freq) PlatformBuilder {
	b.freq = f
	return b
}

// WithWorkload sets the workload the driver runs.
func (b PlatformBuilder) WithWorkload(w Workload) PlatformBuilder {
	b.workload = w
	return b
}

// WithFaultHandler sets the fault handler of the firmware and the FTL.
func (b PlatformBuilder) WithFaultHandler(h firmware.FaultHandler) PlatformBuilder {
	b.faultHandler = h
	return b
}

// WithBarrier enables barrier support.
func (b PlatformBuilder) WithBarrier(policy barrier.CapacityPolicy) PlatformBuilder {
	b.barrierEnabled = true
	b.capacityPolicy = policy

	return b
}

// WithFlushFailureReporting makes failed flushes complete with an error
// status.
func (b PlatformBuilder) WithFlushFailureReporting() PlatformBuilder {
	b.reportFlushFailure = true
	return b
}

// WithInternalFlushPeriod enables the internal periodic flush.
func (b PlatformBuilder) WithInternalFlushPeriod(p sim.VTimeInSec) PlatformBuilder {
	b.internalFlushPeriod = p
	return b
}

// WithDMALatency sets the number of scheduling rounds a transfer takes.
func (b PlatformBuilder) WithDMALatency(rounds int) PlatformBuilder {
	b.dmaLatency = rounds
	return b
}

// WithMaxInFlight sets the number of concurrent DMA transfers.
func (b PlatformBuilder) WithMaxInFlight(n int) PlatformBuilder {
	b.maxInFlight = n
	return b
}

// Build creates a Platform. Component names are prefixed with name.
func (b PlatformBuilder) Build(name string) *Platform {
	if b.engine == nil {
		b.engine = sim.NewSerialEngine()
	}

	p := &Platform{Engine: b.engine, Host: NewHost()}

	p.FTL = MakeFTLBuilder().
		WithCompleter(p.Host).
		WithFaultHandler(b.faultHandler).
		WithDMALatency(b.dmaLatency).
		WithMaxInFlight(b.maxInFlight).
		Build()
	p.Admin = &AdminResponder{Completer: p.Host}

	fb := firmware.MakeBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithHardware(p.Host).
		WithCommandFetcher(p.Host).
		WithCompleter(p.Host).
		WithAdminHandler(p.Admin).
		WithTranslator(p.FTL).
		WithFlusher(p.FTL).
		WithStoragePipeline(p.FTL).
		WithInternalFlushPeriod(b.internalFlushPeriod).
		WithFaultHandler(b.faultHandler)

	if b.barrierEnabled {
		fb = fb.WithBarrier(b.capacityPolicy)
	}

	if b.reportFlushFailure {
		fb = fb.WithFlushFailureReporting()
	}

	p.Firmware = fb.Build(name + ".Firmware")
	if tracker := p.Firmware.Tracker(); tracker != nil {
		p.FTL.AttachEpochSink(tracker)
	}

	p.FTL.AttachFaultHandler(firmware.FaultHandlerFunc(p.Firmware.Fault))

	p.Host.ConnectFirmware(p.Firmware)

	p.Driver = MakeDriverBuilder().
		WithEngine(b.engine).
		WithFreq(b.freq).
		WithHost(p.Host).
		WithLink(p.Firmware).
		WithWorkload(b.workload).
		Build(name + ".Host")

	return p
}
