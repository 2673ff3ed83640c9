package hostsim

import (
	"github.com/sarchlab/ssdctrl/nvme"
)

// Admin opcodes the driver issues.
const (
	// OpcodeIdentify is the first command the driver sends.
	OpcodeIdentify nvme.Opcode = 0x06

	// OpcodeSetFeatures changes a controller feature.
	OpcodeSetFeatures nvme.Opcode = 0x09
)

// FeatureVolatileWriteCache is the feature id of the volatile write cache.
// Bit 0 of dword 11 enables the cache.
const FeatureVolatileWriteCache = 0x06

// SetWriteCacheCommand builds the admin command that enables or disables the
// volatile write cache.
func SetWriteCacheCommand(enable bool) nvme.Command {
	cmd := nvme.Command{QueueID: nvme.AdminQueueID}
	cmd.Dwords[0] = uint32(OpcodeSetFeatures)
	cmd.Dwords[10] = FeatureVolatileWriteCache

	if enable {
		cmd.Dwords[11] = 1
	}

	return cmd
}

// Workload describes the commands the driver issues while the controller is
// running.
type Workload struct {
	NumWrites      int
	NumReads       int
	BlocksPerCmd   int
	FlushInterval  int
	EpochInterval  int
	QueueDepth     int
	NumQueues      int
	CapacityBlocks uint64

	// VolatileWriteCache makes the driver enable the write cache right
	// after Identify.
	VolatileWriteCache bool
}

// DefaultWorkload returns a small mixed workload.
func DefaultWorkload() Workload {
	return Workload{
		NumWrites:      64,
		NumReads:       32,
		BlocksPerCmd:   8,
		FlushInterval:  16,
		EpochInterval:  4,
		QueueDepth:     16,
		NumQueues:      2,
		CapacityBlocks: 1 << 20,
	}
}

func (w Workload) mustBeValid() {
	if w.NumWrites < 0 || w.NumReads < 0 {
		panic("command counts cannot be negative")
	}

	if w.BlocksPerCmd < 1 || w.BlocksPerCmd > 1<<16 {
		panic("blocks per command must be in [1, 65536]")
	}

	if w.QueueDepth < 1 {
		panic("queue depth must be positive")
	}

	if w.VolatileWriteCache && w.QueueDepth < 2 {
		panic("enabling the write cache needs a queue depth of at least 2")
	}

	if w.NumQueues < 1 || w.NumQueues > nvme.NumIOQueuePairs {
		panic("number of queues must be in [1, 8]")
	}

	if w.CapacityBlocks < uint64(w.BlocksPerCmd) {
		panic("capacity cannot hold a single command")
	}
}

// plan generates the I/O commands of the workload. Slot tags are assigned
// when the commands are submitted.
func (w Workload) plan() []nvme.Command {
	var (
		cmds     []nvme.Command
		epochs   = [nvme.NumStreams]uint32{1, 1}
		closures int
	)

	blocks := uint64(w.BlocksPerCmd)
	lbaOf := func(i int) uint64 {
		return (uint64(i) * blocks) % (w.CapacityBlocks - blocks + 1)
	}
	queueOf := func(i int) uint16 {
		return uint16(i%w.NumQueues) + 1
	}

	for i := 0; i < w.NumWrites; i++ {
		b := nvme.MakeIoCommandBuilder().
			WithQueueID(queueOf(i)).
			WithOpcode(nvme.OpcodeWrite).
			WithLBA(lbaOf(i)).
			WithNLB(uint16(w.BlocksPerCmd-1)).
			WithPRP1(uint64(i)*0x1000).
			WithEpoch(nvme.StreamOne, epochs[0]).
			WithEpoch(nvme.StreamTwo, epochs[1])

		if w.EpochInterval > 0 && (i+1)%w.EpochInterval == 0 {
			stream := closures%nvme.NumStreams + 1
			b = b.WithBarrier(stream, epochs[stream-1])
			epochs[stream-1]++
			closures++
		}

		cmds = append(cmds, b.Build())

		if w.FlushInterval > 0 && (i+1)%w.FlushInterval == 0 {
			cmds = append(cmds, w.flush(queueOf(i)))
		}
	}

	if w.NumWrites > 0 {
		cmds = append(cmds, w.flush(1))
	}

	for i := 0; i < w.NumReads; i++ {
		cmds = append(cmds, nvme.MakeIoCommandBuilder().
			WithQueueID(queueOf(i)).
			WithOpcode(nvme.OpcodeRead).
			WithLBA(lbaOf(i)).
			WithNLB(uint16(w.BlocksPerCmd-1)).
			WithPRP1(uint64(i)*0x1000+0x4).
			Build())
	}

	return cmds
}

func (w Workload) flush(qid uint16) nvme.Command {
	return nvme.MakeIoCommandBuilder().
		WithQueueID(qid).
		WithOpcode(nvme.OpcodeFlush).
		Build()
}

// NumIOCommands returns the number of I/O commands the workload issues,
// flushes included.
func (w Workload) NumIOCommands() int {
	return len(w.plan())
}
