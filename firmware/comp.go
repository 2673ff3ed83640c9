// Package firmware provides the control loop of the host interface.
package firmware

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/controller"
	"github.com/sarchlab/ssdctrl/dispatch"
	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

// Comp is the firmware control loop. Every tick fetches at most one command,
// steps the lifecycle state machine once, and runs the background storage
// scheduler when no I/O command was submitted in the same tick.
type Comp struct {
	*sim.TickingComponent

	ctx        *controller.DeviceContext
	ctrl       *controller.Controller
	dispatcher *dispatch.Dispatcher
	tracker    *barrier.Tracker

	fetcher      CommandFetcher
	admin        AdminHandler
	storage      StoragePipeline
	faultHandler FaultHandler

	internalFlushPeriod sim.VTimeInSec

	initialized bool
	halted      atomic.Bool

	numAdminCommands uint64
	numIOCommands    uint64
}

// Context returns the device context.
func (c *Comp) Context() *controller.DeviceContext {
	return c.ctx
}

// Controller returns the lifecycle state machine.
func (c *Comp) Controller() *controller.Controller {
	return c.ctrl
}

// Dispatcher returns the I/O command dispatcher.
func (c *Comp) Dispatcher() *dispatch.Dispatcher {
	return c.dispatcher
}

// Tracker returns the barrier tracker. It is nil when barrier support is
// disabled.
func (c *Comp) Tracker() *barrier.Tracker {
	return c.tracker
}

// Halted tells if the firmware stopped after a fault.
func (c *Comp) Halted() bool {
	return c.halted.Load()
}

// NumCommands returns the number of admin and I/O commands received.
func (c *Comp) NumCommands() (admin, io uint64) {
	return c.numAdminCommands, c.numIOCommands
}

// Snapshot is a point-in-time view of the firmware.
type Snapshot struct {
	Cycle            uint64 `json:"cycle"`
	State            string `json:"state"`
	CacheEnabled     bool   `json:"cache_enabled"`
	Halted           bool   `json:"halted"`
	ResetCount       int    `json:"reset_count"`
	NumAdminCommands uint64 `json:"num_admin_commands"`
	NumIOCommands    uint64 `json:"num_io_commands"`
	Barrier          bool   `json:"barrier"`
	OpenEpochs       []int  `json:"open_epochs,omitempty"`
}

// Snapshot returns the current view of the firmware. It is safe to call while
// the simulation runs.
func (c *Comp) Snapshot() Snapshot {
	c.Lock()
	defer c.Unlock()

	s := Snapshot{
		Cycle:            c.Freq.Cycle(c.Engine.CurrentTime()),
		State:            c.ctx.Status.String(),
		CacheEnabled:     c.ctx.CacheEnabled,
		Halted:           c.halted.Load(),
		ResetCount:       c.ctrl.ResetCount(),
		NumAdminCommands: c.numAdminCommands,
		NumIOCommands:    c.numIOCommands,
		Barrier:          c.tracker != nil,
	}

	if c.tracker != nil {
		for streamID := nvme.StreamOne; streamID <= nvme.NumStreams; streamID++ {
			n, err := c.tracker.Count(streamID)
			if err != nil {
				panic(err)
			}

			s.OpenEpochs = append(s.OpenEpochs, n)
		}
	}

	return s
}

// Init initializes the storage engine and the barrier streams. It only runs
// once.
func (c *Comp) Init() {
	if c.initialized {
		return
	}

	log.Printf("%s: waiting for FTL initialization", c.Name())

	c.storage.InitFtl()

	if c.tracker != nil {
		c.tracker.Reset()
	}

	c.initialized = true

	log.Printf("%s: FTL initialized, waiting for the host", c.Name())
}

// LinkUp notifies the firmware that the PCIe link is up.
func (c *Comp) LinkUp() {
	c.Lock()
	c.ctrl.Arm()
	c.Unlock()

	c.TickLater()
}

// ForceReset moves the firmware to the reset state.
func (c *Comp) ForceReset() {
	c.Lock()
	c.ctrl.ForceReset()
	c.Unlock()

	c.TickLater()
}

// Fault reports a fault raised by a collaborator and halts the firmware. The
// storage pipeline calls it from inside Tick, so it does not take the
// component lock.
func (c *Comp) Fault(err error) {
	c.fault(err)
}

// Tick runs one iteration of the control loop.
func (c *Comp) Tick() bool {
	c.Lock()
	defer c.Unlock()

	if c.halted.Load() {
		return false
	}

	c.Init()

	madeProgress := false
	runScheduler := true

	if c.ctx.Status == controller.StateRunning {
		fetched, submittedIO := c.handleCommand()
		madeProgress = fetched
		runScheduler = !submittedIO

		madeProgress = c.internalFlush() || madeProgress
	}

	if c.halted.Load() {
		return false
	}

	madeProgress = c.ctrl.Step() || madeProgress

	if runScheduler && c.storageBusy() {
		c.storage.ReconcileCompletedDmaRequests()
		c.storage.ScheduleStorageRequests()

		madeProgress = true
	}

	return madeProgress
}

func (c *Comp) handleCommand() (fetched, submittedIO bool) {
	cmd, ok := c.fetcher.FetchCommand()
	if !ok {
		return false, false
	}

	c.ctrl.ResetRetryCounter()

	if cmd.IsAdmin() {
		c.numAdminCommands++
		c.admin.HandleAdminCommand(c.ctx, cmd)

		return true, false
	}

	c.numIOCommands++

	if err := c.dispatcher.Dispatch(cmd); err != nil {
		c.fault(&CommandFault{Cmd: cmd, Err: err})
		return true, true
	}

	c.storage.FlushSubmissionQueueToLowLevel()

	return true, true
}

func (c *Comp) internalFlush() bool {
	if c.internalFlushPeriod <= 0 || c.halted.Load() {
		return false
	}

	now := c.Engine.CurrentTime()
	if now-c.ctrl.FlushBaseline() < c.internalFlushPeriod {
		return false
	}

	if err := c.dispatcher.FlushBuffered(); err != nil {
		c.fault(fmt.Errorf("internal flush: %w", err))
	}

	c.ctrl.RestartFlushBaseline()

	return true
}

func (c *Comp) storageBusy() bool {
	return c.storage.PendingDMA() ||
		c.storage.OutstandingRequests() > 0 ||
		c.storage.BlockedRequests() > 0
}

func (c *Comp) fault(err error) {
	c.halted.Store(true)
	c.faultHandler.HandleFault(err)
}
