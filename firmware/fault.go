package firmware

import (
	"fmt"
	"log"

	"github.com/sarchlab/ssdctrl/nvme"
)

// A FaultHandler decides what happens when the firmware hits a contract
// violation. The firmware stops processing after reporting a fault.
type FaultHandler interface {
	HandleFault(err error)
}

// FaultHandlerFunc allows a plain function to be used as a FaultHandler.
type FaultHandlerFunc func(err error)

// HandleFault calls the function itself.
func (f FaultHandlerFunc) HandleFault(err error) {
	f(err)
}

// PanicFaultHandler halts the simulation.
type PanicFaultHandler struct{}

// HandleFault panics with the fault.
func (PanicFaultHandler) HandleFault(err error) {
	log.Panic(err)
}

// CommandFault is a fault raised while executing a command.
type CommandFault struct {
	Cmd nvme.Command
	Err error
}

func (f *CommandFault) Error() string {
	return fmt.Sprintf("queue %d, slot %d, seq %d: %v",
		f.Cmd.QueueID, f.Cmd.SlotTag, f.Cmd.SeqNum, f.Err)
}

func (f *CommandFault) Unwrap() error {
	return f.Err
}
