package controller

import (
	"log"

	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

// LinkResetThreshold is the number of consecutive resets after which the
// PCIe link is reset.
const LinkResetThreshold = 5

// HookPosStateTransition marks a lifecycle state change. The hook item is a
// Transition.
var HookPosStateTransition = &sim.HookPos{Name: "State Transition"}

// A Controller advances the lifecycle state machine one step at a time.
type Controller struct {
	sim.HookableBase

	ctx                *DeviceContext
	hw                 Hardware
	timeTeller         sim.TimeTeller
	badBlockBufferBase uint64

	flushBaseline sim.VTimeInSec
	resetCount    int
}

// Context returns the device context the controller drives.
func (c *Controller) Context() *DeviceContext {
	return c.ctx
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.ctx.Status
}

// FlushBaseline returns the time the controller was last enabled.
func (c *Controller) FlushBaseline() sim.VTimeInSec {
	return c.flushBaseline
}

// RestartFlushBaseline sets the flush baseline to the current time.
func (c *Controller) RestartFlushBaseline() {
	c.flushBaseline = c.timeTeller.CurrentTime()
}

// ResetCount returns the number of consecutive resets since the last command
// or link reset.
func (c *Controller) ResetCount() int {
	return c.resetCount
}

// ResetRetryCounter is called whenever a command is received.
func (c *Controller) ResetRetryCounter() {
	c.resetCount = 0
}

// Arm handles the link-up notification. It moves an idle controller to
// waiting for CC.EN and returns false in any other state.
func (c *Controller) Arm() bool {
	if c.ctx.Status != StateIdle {
		return false
	}

	c.transit(StateWaitCCEn)

	return true
}

// ForceReset moves the controller to RESET regardless of its state.
func (c *Controller) ForceReset() {
	c.transit(StateReset)
}

// Step evaluates the current state once. It returns true if the controller
// did any work.
func (c *Controller) Step() bool {
	switch c.ctx.Status {
	case StateIdle:
		return false
	case StateWaitCCEn:
		return c.waitEnable()
	case StateRunning:
		return c.checkShutdownNotification()
	case StateShutdown:
		return c.waitQueueTeardown()
	case StateWaitReset:
		return c.waitDisable()
	case StateReset:
		return c.reset()
	default:
		log.Panicf("unknown controller state %s", c.ctx.Status)
	}

	return false
}

func (c *Controller) waitEnable() bool {
	if !c.hw.ControllerConfiguration().Enabled() {
		return false
	}

	c.hw.SetAdminQueue(true, true, true)
	c.hw.SetReady(true)
	c.RestartFlushBaseline()
	c.transit(StateRunning)

	return true
}

func (c *Controller) checkShutdownNotification() bool {
	if c.hw.ControllerConfiguration().ShutdownNotification() == 0 {
		return false
	}

	c.hw.SetShutdownStatus(nvme.ShutdownStatusInProgress)
	c.clearIOQueues()
	c.hw.SetAdminQueue(false, false, false)
	c.ctx.CacheEnabled = false
	c.hw.SetShutdownStatus(nvme.ShutdownStatusComplete)
	c.hw.PersistGrownBadBlockTable(c.badBlockBufferBase)
	c.transit(StateShutdown)

	return true
}

func (c *Controller) waitQueueTeardown() bool {
	for qid := 0; qid < nvme.NumIOQueuePairs; qid++ {
		if !c.hw.IOQueuePairCleared(qid) {
			c.clearIOQueues()
			return true
		}
	}

	c.transit(StateWaitReset)

	return true
}

func (c *Controller) waitDisable() bool {
	if c.hw.ControllerConfiguration().Enabled() {
		return false
	}

	c.ctx.CacheEnabled = false
	c.hw.SetShutdownStatus(nvme.ShutdownStatusNone)
	c.hw.SetReady(false)
	c.transit(StateIdle)

	return true
}

func (c *Controller) reset() bool {
	c.clearIOQueues()

	c.resetCount++
	if c.resetCount >= LinkResetThreshold {
		c.hw.AsyncLinkReset(c.resetCount)
		c.resetCount = 0
		log.Printf("PCIe link reset, reconnect the host if it does not recover")
	}

	c.ctx.CacheEnabled = false
	c.hw.SetAdminQueue(false, false, false)
	c.hw.SetShutdownStatus(nvme.ShutdownStatusNone)
	c.hw.SetReady(false)
	c.transit(StateIdle)

	return true
}

func (c *Controller) clearIOQueues() {
	for qid := 0; qid < nvme.NumIOQueuePairs; qid++ {
		c.hw.ClearIOCompletionQueue(qid)
		c.hw.ClearIOSubmissionQueue(qid)
	}
}

func (c *Controller) transit(to State) {
	from := c.ctx.Status
	c.ctx.Status = to

	log.Printf("controller %s -> %s", from, to)

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosStateTransition,
			Item:   Transition{From: from, To: to},
		})
	}
}
