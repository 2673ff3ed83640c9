// Package controller implements the lifecycle state machine that drives the
// NVMe controller-enable and shutdown handshake.
package controller

import "fmt"

// State is a lifecycle state of the controller.
type State int

// Lifecycle states.
const (
	StateIdle State = iota
	StateWaitCCEn
	StateRunning
	StateShutdown
	StateWaitReset
	StateReset
)

var stateNames = [...]string{
	StateIdle:      "IDLE",
	StateWaitCCEn:  "WAIT_CC_EN",
	StateRunning:   "RUNNING",
	StateShutdown:  "SHUTDOWN",
	StateWaitReset: "WAIT_RESET",
	StateReset:     "RESET",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// DeviceContext is the device-wide state shared by the firmware components.
// There is one DeviceContext per firmware instance.
type DeviceContext struct {
	Status       State
	CacheEnabled bool
}

// Transition is the item of the state transition hook.
type Transition struct {
	From State
	To   State
}
