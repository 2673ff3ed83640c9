package nvme

// IoCommandBuilder builds raw I/O commands. It is mostly used by host models
// and tests.
type IoCommandBuilder struct {
	queueID uint16
	slotTag uint16
	seqNum  uint32
	dwords  [NumDwords]uint32
}

// MakeIoCommandBuilder returns a builder for a command on I/O queue 1.
func MakeIoCommandBuilder() IoCommandBuilder {
	return IoCommandBuilder{queueID: 1}
}

// WithQueueID sets the submission queue the command is fetched from.
func (b IoCommandBuilder) WithQueueID(qid uint16) IoCommandBuilder {
	b.queueID = qid
	return b
}

// WithSlotTag sets the completion slot tag.
func (b IoCommandBuilder) WithSlotTag(tag uint16) IoCommandBuilder {
	b.slotTag = tag
	return b
}

// WithSeqNum sets the command sequence number.
func (b IoCommandBuilder) WithSeqNum(seq uint32) IoCommandBuilder {
	b.seqNum = seq
	return b
}

// WithOpcode sets dword 0 bits 7:0.
func (b IoCommandBuilder) WithOpcode(op Opcode) IoCommandBuilder {
	b.dwords[0] = b.dwords[0]&^0xFF | uint32(op)
	return b
}

// WithLBA sets dwords 10 and 11.
func (b IoCommandBuilder) WithLBA(lba uint64) IoCommandBuilder {
	b.dwords[10] = uint32(lba)
	b.dwords[11] = uint32(lba >> 32)

	return b
}

// WithNLB sets dword 12 bits 15:0.
func (b IoCommandBuilder) WithNLB(nlb uint16) IoCommandBuilder {
	b.dwords[12] = b.dwords[12]&^nlbMask | uint32(nlb)
	return b
}

// WithPRP1 sets dwords 6 and 7.
func (b IoCommandBuilder) WithPRP1(addr uint64) IoCommandBuilder {
	b.dwords[6] = uint32(addr)
	b.dwords[7] = uint32(addr >> 32)

	return b
}

// WithPRP2 sets dwords 8 and 9.
func (b IoCommandBuilder) WithPRP2(addr uint64) IoCommandBuilder {
	b.dwords[8] = uint32(addr)
	b.dwords[9] = uint32(addr >> 32)

	return b
}

// WithBarrier marks the command as closing the given epoch of the stream.
func (b IoCommandBuilder) WithBarrier(stream int, epoch uint32) IoCommandBuilder {
	switch stream {
	case StreamOne:
		b.dwords[12] |= 1 << barrierFlag1Bit
		b.dwords[epochStream1Word] = epoch
	case StreamTwo:
		b.dwords[12] |= 1 << barrierFlag2Bit
		b.dwords[epochStream2Word] = epoch
	default:
		panic("barrier stream must be 1 or 2")
	}

	return b
}

// WithEpoch sets the epoch of the stream without closing it.
func (b IoCommandBuilder) WithEpoch(stream int, epoch uint32) IoCommandBuilder {
	switch stream {
	case StreamOne:
		b.dwords[epochStream1Word] = epoch
	case StreamTwo:
		b.dwords[epochStream2Word] = epoch
	default:
		panic("barrier stream must be 1 or 2")
	}

	return b
}

// WithDword overwrites a raw dword.
func (b IoCommandBuilder) WithDword(index int, value uint32) IoCommandBuilder {
	b.dwords[index] = value
	return b
}

// Build creates the command.
func (b IoCommandBuilder) Build() Command {
	return Command{
		QueueID: b.queueID,
		SlotTag: b.slotTag,
		SeqNum:  b.seqNum,
		Dwords:  b.dwords,
	}
}
