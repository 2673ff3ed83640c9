package dispatch

import (
	"github.com/sarchlab/ssdctrl/nvme"
)

// Address limits of the DMA engine.
const (
	// ReadPRPAlignment is the alignment of the PRP low halves of a read.
	ReadPRPAlignment uint32 = 4

	// WritePRPAlignment is the alignment of the PRP low halves of a write.
	WritePRPAlignment uint32 = 16

	// PRPHighCeiling bounds the PRP high halves.
	PRPHighCeiling uint32 = 0x10000
)

// A Decoder turns raw I/O commands into Ops.
//
// The addressable capacity has two tiers. The low LBA dword must be below
// CapacityLow. The high LBA dword must be zero or below CapacityHigh.
type Decoder struct {
	CapacityLow  uint32
	CapacityHigh uint32
}

// Decode interprets the command. It returns an *UnsupportedOpcodeError, an
// *LBARangeError or a *PRPError when the command breaks the host interface
// contract.
func (d Decoder) Decode(cmd nvme.Command) (Op, error) {
	io := cmd.IO()

	switch io.Opcode() {
	case nvme.OpcodeFlush:
		return FlushOp{Slot: cmd.SlotTag}, nil
	case nvme.OpcodeWrite:
		if err := d.validate(io, WritePRPAlignment); err != nil {
			return nil, err
		}

		return WriteOp{
			Slot:       cmd.SlotTag,
			StartLBA:   io.StartLBA(),
			BlockCount: io.BlockCount(),
			Cmd:        io,
		}, nil
	case nvme.OpcodeRead:
		if err := d.validate(io, ReadPRPAlignment); err != nil {
			return nil, err
		}

		return ReadOp{
			Slot:       cmd.SlotTag,
			StartLBA:   io.StartLBA(),
			BlockCount: io.BlockCount(),
		}, nil
	default:
		return nil, &UnsupportedOpcodeError{
			Opcode:  io.Opcode(),
			SlotTag: cmd.SlotTag,
		}
	}
}

func (d Decoder) validate(io nvme.IoCommand, alignment uint32) error {
	low, high := io.LBALow(), io.LBAHigh()
	if low >= d.CapacityLow || (high != 0 && high >= d.CapacityHigh) {
		return &LBARangeError{
			Opcode:       io.Opcode(),
			LBALow:       low,
			LBAHigh:      high,
			CapacityLow:  d.CapacityLow,
			CapacityHigh: d.CapacityHigh,
		}
	}

	prps := [2]nvme.PRP{io.PRP1(), io.PRP2()}

	for i, prp := range prps {
		if prp.Low&(alignment-1) != 0 {
			return &PRPError{
				Opcode:    io.Opcode(),
				Entry:     i + 1,
				PRP:       prp,
				Alignment: alignment,
			}
		}
	}

	for i, prp := range prps {
		if prp.High >= PRPHighCeiling {
			return &PRPError{
				Opcode:       io.Opcode(),
				Entry:        i + 1,
				PRP:          prp,
				Alignment:    alignment,
				AboveCeiling: true,
			}
		}
	}

	return nil
}
