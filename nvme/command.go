package nvme

// NumDwords is the number of dwords in a submission queue entry.
const NumDwords = 16

// AdminQueueID is the queue id of the admin submission queue.
const AdminQueueID = 0

// NumIOQueuePairs is the number of I/O submission/completion queue pairs the
// controller supports.
const NumIOQueuePairs = 8

// A Command is a submission queue entry as fetched from the host, together
// with the queue it came from and the completion slot assigned to it.
type Command struct {
	QueueID uint16
	SlotTag uint16
	SeqNum  uint32
	Dwords  [NumDwords]uint32
}

// IsAdmin tells if the command was fetched from the admin queue.
func (c Command) IsAdmin() bool {
	return c.QueueID == AdminQueueID
}

// Opcode returns dword 0 bits 7:0.
func (c Command) Opcode() Opcode {
	return Opcode(c.Dwords[0] & 0xFF)
}

// IO returns the I/O command view of the command.
func (c Command) IO() IoCommand {
	return IoCommand{c}
}

// PRP is a Physical Region Page pointer split in two 32-bit halves.
type PRP struct {
	Low  uint32
	High uint32
}

// Addr returns the 64-bit address.
func (p PRP) Addr() uint64 {
	return uint64(p.High)<<32 | uint64(p.Low)
}

// Barrier streams carried by barrier-flagged writes.
const (
	StreamOne  = 1
	StreamTwo  = 2
	NumStreams = 2
)

// Bit positions in dword 12.
const (
	nlbMask          = 0xFFFF
	barrierFlag1Bit  = 16
	barrierFlag2Bit  = 17
	epochStream1Word = 2
	epochStream2Word = 3
)

// IoCommand is a view over a Command fetched from an I/O queue.
//
//	dword 0   bits 7:0   opcode
//	dword 2              epoch id of stream 1 (barrier writes)
//	dword 3              epoch id of stream 2 (barrier writes)
//	dword 6/7            PRP1 low/high
//	dword 8/9            PRP2 low/high
//	dword 10/11          starting LBA low/high
//	dword 12  bits 15:0  NLB, number of logical blocks minus one
//	dword 12  bit  16    barrier flag of stream 1 (vendor specific)
//	dword 12  bit  17    barrier flag of stream 2 (vendor specific)
type IoCommand struct {
	Command
}

// PRP1 returns the first PRP entry (dwords 6 and 7).
func (c IoCommand) PRP1() PRP {
	return PRP{Low: c.Dwords[6], High: c.Dwords[7]}
}

// PRP2 returns the second PRP entry (dwords 8 and 9).
func (c IoCommand) PRP2() PRP {
	return PRP{Low: c.Dwords[8], High: c.Dwords[9]}
}

// LBALow returns dword 10, the low half of the starting LBA.
func (c IoCommand) LBALow() uint32 {
	return c.Dwords[10]
}

// LBAHigh returns dword 11, the high half of the starting LBA.
func (c IoCommand) LBAHigh() uint32 {
	return c.Dwords[11]
}

// StartLBA returns the 64-bit starting LBA.
func (c IoCommand) StartLBA() uint64 {
	return uint64(c.LBAHigh())<<32 | uint64(c.LBALow())
}

// NLB returns dword 12 bits 15:0. The value is the block count minus one.
func (c IoCommand) NLB() uint16 {
	return uint16(c.Dwords[12] & nlbMask)
}

// BlockCount returns the number of blocks the command covers.
func (c IoCommand) BlockCount() uint32 {
	return uint32(c.NLB()) + 1
}

// BarrierFlag tells if the command closes the current epoch of the stream.
// Streams other than StreamOne and StreamTwo never carry a flag.
func (c IoCommand) BarrierFlag(stream int) bool {
	switch stream {
	case StreamOne:
		return c.Dwords[12]&(1<<barrierFlag1Bit) != 0
	case StreamTwo:
		return c.Dwords[12]&(1<<barrierFlag2Bit) != 0
	default:
		return false
	}
}

// EpochID returns the epoch the command belongs to on the given stream.
func (c IoCommand) EpochID(stream int) uint32 {
	switch stream {
	case StreamOne:
		return c.Dwords[epochStream1Word]
	case StreamTwo:
		return c.Dwords[epochStream2Word]
	default:
		return 0
	}
}
