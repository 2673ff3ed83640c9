package dispatch

import (
	"fmt"

	"github.com/sarchlab/ssdctrl/nvme"
)

// OpType tells the translation layer the direction of a request.
type OpType int

// Request directions.
const (
	OpRead OpType = iota
	OpWrite
)

// String returns the name of the op type.
func (t OpType) String() string {
	switch t {
	case OpRead:
		return "Read"
	case OpWrite:
		return "Write"
	default:
		return fmt.Sprintf("OpType(%d)", int(t))
	}
}

// An Op is a decoded I/O command. It is one of ReadOp, WriteOp and FlushOp.
type Op interface {
	SlotTag() uint16
	Opcode() nvme.Opcode
	isOp()
}

// ReadOp reads BlockCount blocks starting at StartLBA.
type ReadOp struct {
	Slot       uint16
	StartLBA   uint64
	BlockCount uint32
}

// SlotTag returns the completion slot of the command.
func (o ReadOp) SlotTag() uint16 { return o.Slot }

// Opcode returns nvme.OpcodeRead.
func (o ReadOp) Opcode() nvme.Opcode { return nvme.OpcodeRead }

func (ReadOp) isOp() {}

// WriteOp writes BlockCount blocks starting at StartLBA. Cmd keeps the raw
// command for the barrier path, which needs the stream and epoch fields.
type WriteOp struct {
	Slot       uint16
	StartLBA   uint64
	BlockCount uint32
	Cmd        nvme.IoCommand
}

// SlotTag returns the completion slot of the command.
func (o WriteOp) SlotTag() uint16 { return o.Slot }

// Opcode returns nvme.OpcodeWrite.
func (o WriteOp) Opcode() nvme.Opcode { return nvme.OpcodeWrite }

func (WriteOp) isOp() {}

// FlushOp asks for all buffered writes to be made durable.
type FlushOp struct {
	Slot uint16
}

// SlotTag returns the completion slot of the command.
func (o FlushOp) SlotTag() uint16 { return o.Slot }

// Opcode returns nvme.OpcodeFlush.
func (o FlushOp) Opcode() nvme.Opcode { return nvme.OpcodeFlush }

func (FlushOp) isOp() {}
