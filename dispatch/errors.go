package dispatch

import (
	"fmt"

	"github.com/sarchlab/ssdctrl/nvme"
)

// UnsupportedOpcodeError reports an I/O opcode other than flush, write and
// read.
type UnsupportedOpcodeError struct {
	Opcode  nvme.Opcode
	SlotTag uint16
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported I/O opcode 0x%02X (slot %d)",
		uint8(e.Opcode), e.SlotTag)
}

// LBARangeError reports a starting LBA outside the addressable capacity.
type LBARangeError struct {
	Opcode       nvme.Opcode
	LBALow       uint32
	LBAHigh      uint32
	CapacityLow  uint32
	CapacityHigh uint32
}

func (e *LBARangeError) Error() string {
	return fmt.Sprintf(
		"%s: starting LBA 0x%08X_%08X out of range (capacity low 0x%X, high 0x%X)",
		e.Opcode, e.LBAHigh, e.LBALow, e.CapacityLow, e.CapacityHigh)
}

// PRPError reports a PRP entry that the DMA engine cannot use.
type PRPError struct {
	Opcode    nvme.Opcode
	Entry     int
	PRP       nvme.PRP
	Alignment uint32

	// AboveCeiling is set when the high half is out of reach of the DMA
	// engine, and cleared when the low half is misaligned.
	AboveCeiling bool
}

func (e *PRPError) Error() string {
	if e.AboveCeiling {
		return fmt.Sprintf("%s: PRP%d high half 0x%X not below 0x%X",
			e.Opcode, e.Entry, e.PRP.High, PRPHighCeiling)
	}

	return fmt.Sprintf("%s: PRP%d low half 0x%08X not %d-byte aligned",
		e.Opcode, e.Entry, e.PRP.Low, e.Alignment)
}

// FlushError wraps the errors reported by the flush collaborator.
type FlushError struct {
	Err error
}

func (e *FlushError) Error() string {
	return "flush failed: " + e.Err.Error()
}

func (e *FlushError) Unwrap() error {
	return e.Err
}
