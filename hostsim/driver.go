package hostsim

import (
	"log"

	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

// A LinkNotifier is told when the PCIe link comes up.
type LinkNotifier interface {
	LinkUp()
}

// DriverPhase is the stage of the controller lifecycle the driver is in.
type DriverPhase int

// Driver phases, in the order they are visited.
const (
	PhaseLinkUp DriverPhase = iota
	PhaseWaitReady
	PhaseIO
	PhaseShutdown
	PhaseWaitShutdown
	PhaseWaitDisable
	PhaseDone
)

var phaseNames = [...]string{
	"LinkUp", "WaitReady", "IO", "Shutdown", "WaitShutdown", "WaitDisable",
	"Done",
}

func (p DriverPhase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Unknown"
	}

	return phaseNames[p]
}

// DriverStats summarizes the commands the driver has issued.
type DriverStats struct {
	Submitted    uint64
	Completed    uint64
	Failed       uint64
	TotalLatency sim.VTimeInSec
	MaxLatency   sim.VTimeInSec
}

type outstandingCmd struct {
	cmd       nvme.Command
	issueTime sim.VTimeInSec
}

// Driver plays the host. It brings the controller up, runs the workload and
// shuts the controller down.
type Driver struct {
	*sim.TickingComponent

	host *Host
	link LinkNotifier

	phase       DriverPhase
	numQueues   int
	writeCache  bool
	plan        []nvme.Command
	outstanding map[uint16]outstandingCmd
	freeSlots   []uint16

	stats DriverStats
}

// Phase returns the current phase.
func (d *Driver) Phase() DriverPhase {
	return d.phase
}

// Stats returns the command statistics.
func (d *Driver) Stats() DriverStats {
	return d.stats
}

// Start schedules the first tick.
func (d *Driver) Start() {
	d.TickNow()
}

// Tick advances the driver.
func (d *Driver) Tick() bool {
	d.Lock()
	defer d.Unlock()

	switch d.phase {
	case PhaseLinkUp:
		return d.linkUp()
	case PhaseWaitReady:
		return d.waitReady()
	case PhaseIO:
		return d.runIO()
	case PhaseShutdown:
		return d.shutdown()
	case PhaseWaitShutdown:
		return d.waitShutdown()
	case PhaseWaitDisable:
		return d.waitDisable()
	default:
		return false
	}
}

func (d *Driver) linkUp() bool {
	d.link.LinkUp()
	d.host.WriteCC(nvme.CC(0).WithEnabled(true))
	d.enter(PhaseWaitReady)

	return true
}

func (d *Driver) waitReady() bool {
	if !d.host.CSTS().Ready() {
		return false
	}

	for qid := 1; qid <= d.numQueues; qid++ {
		if err := d.host.CreateIOQueuePair(uint16(qid)); err != nil {
			log.Panic(err)
		}
	}

	d.submit(nvme.Command{
		QueueID: nvme.AdminQueueID,
		Dwords:  [nvme.NumDwords]uint32{uint32(OpcodeIdentify)},
	})

	if d.writeCache {
		d.submit(SetWriteCacheCommand(true))
	}

	d.enter(PhaseIO)

	return true
}

func (d *Driver) runIO() bool {
	madeProgress := d.collectCompletions()

	if d.canIssue() {
		cmd := d.plan[0]
		d.plan = d.plan[1:]
		d.submit(cmd)

		madeProgress = true
	}

	if len(d.plan) == 0 && len(d.outstanding) == 0 {
		d.enter(PhaseShutdown)
		return true
	}

	return madeProgress
}

// canIssue tells if the next planned command can be submitted. A flush
// waits for every earlier command to complete.
func (d *Driver) canIssue() bool {
	if len(d.plan) == 0 || len(d.freeSlots) == 0 {
		return false
	}

	if d.plan[0].Opcode() == nvme.OpcodeFlush && len(d.outstanding) > 0 {
		return false
	}

	return true
}

func (d *Driver) collectCompletions() bool {
	cpls := d.host.TakeCompletions()
	now := d.Engine.CurrentTime()

	for _, cpl := range cpls {
		o, found := d.outstanding[cpl.SlotTag]
		if !found {
			log.Panicf("completion for unknown slot %d", cpl.SlotTag)
		}

		delete(d.outstanding, cpl.SlotTag)
		d.freeSlots = append(d.freeSlots, cpl.SlotTag)

		d.stats.Completed++
		if !cpl.Succeeded() {
			d.stats.Failed++
			log.Printf("command seq %d failed with status 0x%04X",
				o.cmd.SeqNum, cpl.StatusField)
		}

		latency := now - o.issueTime
		d.stats.TotalLatency += latency
		if latency > d.stats.MaxLatency {
			d.stats.MaxLatency = latency
		}
	}

	return len(cpls) > 0
}

func (d *Driver) submit(cmd nvme.Command) {
	cmd.SlotTag = d.freeSlots[len(d.freeSlots)-1]
	d.freeSlots = d.freeSlots[:len(d.freeSlots)-1]

	cmd, err := d.host.Submit(cmd)
	if err != nil {
		log.Panic(err)
	}

	d.outstanding[cmd.SlotTag] = outstandingCmd{
		cmd:       cmd,
		issueTime: d.Engine.CurrentTime(),
	}
	d.stats.Submitted++
}

func (d *Driver) shutdown() bool {
	d.host.WriteCC(d.host.CC().WithShutdownNotification(1))
	d.enter(PhaseWaitShutdown)

	return true
}

func (d *Driver) waitShutdown() bool {
	if d.host.CSTS().ShutdownStatus() != nvme.ShutdownStatusComplete {
		return false
	}

	d.host.WriteCC(nvme.CC(0))
	d.enter(PhaseWaitDisable)

	return true
}

func (d *Driver) waitDisable() bool {
	if d.host.CSTS().Ready() {
		return false
	}

	d.enter(PhaseDone)

	return true
}

func (d *Driver) enter(p DriverPhase) {
	log.Printf("%s: %s -> %s", d.Name(), d.phase, p)
	d.phase = p
}

// DriverBuilder can build Drivers.
type DriverBuilder struct {
	engine   sim.Engine
	freq     sim.Freq
	host     *Host
	link     LinkNotifier
	workload Workload
}

// MakeDriverBuilder creates a DriverBuilder with the default workload.
func MakeDriverBuilder() DriverBuilder {
	return DriverBuilder{
		freq:     1 * sim.GHz,
		workload: DefaultWorkload(),
	}
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(e sim.Engine) DriverBuilder {
	b.engine = e
	return b
}

// WithFreq sets the frequency the driver polls at.
func (b DriverBuilder) WithFreq(f sim.Freq) DriverBuilder {
	b.freq = f
	return b
}

// WithHost sets the host interface to drive.
func (b DriverBuilder) WithHost(h *Host) DriverBuilder {
	b.host = h
	return b
}

// WithLink sets who is told that the link is up.
func (b DriverBuilder) WithLink(l LinkNotifier) DriverBuilder {
	b.link = l
	return b
}

// WithWorkload sets the workload.
func (b DriverBuilder) WithWorkload(w Workload) DriverBuilder {
	b.workload = w
	return b
}

// Build creates a Driver.
func (b DriverBuilder) Build(name string) *Driver {
	if b.engine == nil || b.host == nil || b.link == nil {
		panic("driver requires an engine, a host and a link")
	}

	b.workload.mustBeValid()

	d := &Driver{
		host:        b.host,
		link:        b.link,
		numQueues:   b.workload.NumQueues,
		writeCache:  b.workload.VolatileWriteCache,
		plan:        b.workload.plan(),
		outstanding: make(map[uint16]outstandingCmd),
	}
	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	for i := b.workload.QueueDepth - 1; i >= 0; i-- {
		d.freeSlots = append(d.freeSlots, uint16(i))
	}

	b.host.ConnectDriver(d)

	return d
}
