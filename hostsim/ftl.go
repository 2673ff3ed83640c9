package hostsim

import (
	"fmt"
	"log"

	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/dispatch"
	"github.com/sarchlab/ssdctrl/firmware"
	"github.com/sarchlab/ssdctrl/nvme"
)

// An EpochSink receives the epochs closed by barrier-flagged writes.
type EpochSink interface {
	Push(streamID int, epochID uint32) error
}

type storageReq struct {
	slot       uint16
	startLBA   uint64
	blockCount uint32
	op         dispatch.OpType

	barrier bool
	cmd     nvme.IoCommand

	cycleLeft int
}

type bufferedWrite struct {
	lba    uint64
	tagged bool
	epochs [nvme.NumStreams]uint32
}

// FTLStats summarizes the work done by an FTL.
type FTLStats struct {
	Reads           uint64
	Writes          uint64
	BlocksRead      uint64
	BlocksWritten   uint64
	BlocksPersisted uint64
	Flushes         uint64
}

// FTL is an ideal flash translation layer. Every request takes a fixed
// number of scheduling rounds to finish its DMA, and writes land in a write
// buffer until they are flushed.
type FTL struct {
	completer    dispatch.Completer
	epochs       EpochSink
	faultHandler firmware.FaultHandler

	dmaLatency  int
	maxInFlight int

	initialized bool
	intake      []*storageReq
	blocked     []*storageReq
	inFlight    []*storageReq
	buffer      []bufferedWrite
	persisted   map[uint64]bool

	flushedEpochs []barrier.EpochEntry
	flushFailure  error
	stats         FTLStats
}

// AttachEpochSink sets where closed epochs are pushed. A nil sink disables
// epoch tracking.
func (f *FTL) AttachEpochSink(s EpochSink) {
	f.epochs = s
}

// AttachFaultHandler replaces who handles barrier tracker faults.
func (f *FTL) AttachFaultHandler(h firmware.FaultHandler) {
	f.faultHandler = h
}

// InjectFlushFailure makes every following flush report err. A nil err
// restores normal flushes.
func (f *FTL) InjectFlushFailure(err error) {
	f.flushFailure = err
}

// Stats returns the work done so far.
func (f *FTL) Stats() FTLStats {
	return f.stats
}

// FlushedEpochs returns the epochs flushed so far, in flush order.
func (f *FTL) FlushedEpochs() []barrier.EpochEntry {
	return f.flushedEpochs
}

// BufferedBlocks returns the number of blocks waiting in the write buffer.
func (f *FTL) BufferedBlocks() int {
	return len(f.buffer)
}

// Persisted tells if the block at lba has been written to the medium.
func (f *FTL) Persisted(lba uint64) bool {
	return f.persisted[lba]
}

// InitFtl resets the mapping and the write buffer.
func (f *FTL) InitFtl() {
	f.intake = nil
	f.blocked = nil
	f.inFlight = nil
	f.buffer = nil
	f.persisted = make(map[uint64]bool)
	f.initialized = true
}

// TranslateAndSubmit queues a read or a plain write.
func (f *FTL) TranslateAndSubmit(
	slotTag uint16,
	startLBA uint64,
	blockCount uint32,
	op dispatch.OpType,
) {
	f.mustBeInitialized()

	f.intake = append(f.intake, &storageReq{
		slot:       slotTag,
		startLBA:   startLBA,
		blockCount: blockCount,
		op:         op,
	})
}

// TranslateAndSubmitWriteWithBarrier queues a write that keeps its stream
// and epoch fields.
func (f *FTL) TranslateAndSubmitWriteWithBarrier(
	slotTag uint16,
	cmd nvme.IoCommand,
) {
	f.mustBeInitialized()

	f.intake = append(f.intake, &storageReq{
		slot:       slotTag,
		startLBA:   cmd.StartLBA(),
		blockCount: cmd.BlockCount(),
		op:         dispatch.OpWrite,
		barrier:    true,
		cmd:        cmd,
	})
}

func (f *FTL) mustBeInitialized() {
	if !f.initialized {
		log.Panic("FTL is not initialized")
	}
}

// FlushSubmissionQueueToLowLevel moves translated requests to the
// scheduler.
func (f *FTL) FlushSubmissionQueueToLowLevel() {
	f.blocked = append(f.blocked, f.intake...)
	f.intake = nil
}

// ReconcileCompletedDmaRequests retires the requests whose DMA finished and
// posts their completions.
func (f *FTL) ReconcileCompletedDmaRequests() {
	remaining := f.inFlight[:0]

	for _, req := range f.inFlight {
		if req.cycleLeft > 0 {
			remaining = append(remaining, req)
			continue
		}

		f.finish(req)
	}

	f.inFlight = remaining
}

func (f *FTL) finish(req *storageReq) {
	switch req.op {
	case dispatch.OpRead:
		f.stats.Reads++
		f.stats.BlocksRead += uint64(req.blockCount)
	case dispatch.OpWrite:
		f.stats.Writes++
		f.stats.BlocksWritten += uint64(req.blockCount)
		f.bufferWrite(req)
	}

	f.completer.PostCompletion(nvme.Completion{SlotTag: req.slot})

	if req.barrier {
		f.closeEpochs(req.cmd)
	}
}

func (f *FTL) bufferWrite(req *storageReq) {
	for i := uint64(0); i < uint64(req.blockCount); i++ {
		w := bufferedWrite{lba: req.startLBA + i, tagged: req.barrier}
		if req.barrier {
			w.epochs[0] = req.cmd.EpochID(nvme.StreamOne)
			w.epochs[1] = req.cmd.EpochID(nvme.StreamTwo)
		}

		f.buffer = append(f.buffer, w)
	}
}

func (f *FTL) closeEpochs(cmd nvme.IoCommand) {
	if f.epochs == nil {
		return
	}

	for streamID := nvme.StreamOne; streamID <= nvme.NumStreams; streamID++ {
		if !cmd.BarrierFlag(streamID) {
			continue
		}

		err := f.epochs.Push(streamID, cmd.EpochID(streamID))
		if err != nil {
			f.faultHandler.HandleFault(
				fmt.Errorf("closing epoch of slot %d: %w", cmd.SlotTag, err))
		}
	}
}

// ScheduleStorageRequests advances the in-flight DMA transfers and starts
// blocked requests while there is room.
func (f *FTL) ScheduleStorageRequests() {
	for _, req := range f.inFlight {
		if req.cycleLeft > 0 {
			req.cycleLeft--
		}
	}

	for len(f.blocked) > 0 && len(f.inFlight) < f.maxInFlight {
		req := f.blocked[0]
		f.blocked = f.blocked[1:]
		req.cycleLeft = f.dmaLatency
		f.inFlight = append(f.inFlight, req)
	}
}

// PendingDMA tells if any DMA transfer is in flight.
func (f *FTL) PendingDMA() bool {
	return len(f.inFlight) > 0
}

// OutstandingRequests returns the number of requests started but not
// retired.
func (f *FTL) OutstandingRequests() int {
	return len(f.inFlight)
}

// BlockedRequests returns the number of requests waiting for a DMA slot.
func (f *FTL) BlockedRequests() int {
	return len(f.blocked)
}

// FlushAllBufferedWrites persists the whole write buffer.
func (f *FTL) FlushAllBufferedWrites() error {
	f.stats.Flushes++

	if f.flushFailure != nil {
		return f.flushFailure
	}

	f.persist(func(bufferedWrite) bool { return true })

	return nil
}

// FlushBufferedWritesForEpoch persists the buffered writes of one epoch of a
// stream.
func (f *FTL) FlushBufferedWritesForEpoch(streamID int, epochID uint32) error {
	f.stats.Flushes++

	if f.flushFailure != nil {
		return f.flushFailure
	}

	f.flushedEpochs = append(f.flushedEpochs,
		barrier.EpochEntry{StreamID: streamID, EpochID: epochID})

	f.persist(func(w bufferedWrite) bool {
		return w.tagged && w.epochs[streamID-1] == epochID
	})

	return nil
}

func (f *FTL) persist(match func(bufferedWrite) bool) {
	remaining := f.buffer[:0]

	for _, w := range f.buffer {
		if !match(w) {
			remaining = append(remaining, w)
			continue
		}

		f.persisted[w.lba] = true
		f.stats.BlocksPersisted++
	}

	f.buffer = remaining
}

// FTLBuilder can build FTLs.
type FTLBuilder struct {
	completer    dispatch.Completer
	faultHandler firmware.FaultHandler
	dmaLatency   int
	maxInFlight  int
}

// MakeFTLBuilder creates an FTLBuilder with default parameters.
func MakeFTLBuilder() FTLBuilder {
	return FTLBuilder{
		faultHandler: firmware.PanicFaultHandler{},
		dmaLatency:   4,
		maxInFlight:  8,
	}
}

// WithCompleter sets where request completions are posted.
func (b FTLBuilder) WithCompleter(c dispatch.Completer) FTLBuilder {
	b.completer = c
	return b
}

// WithFaultHandler sets who handles barrier tracker faults.
func (b FTLBuilder) WithFaultHandler(h firmware.FaultHandler) FTLBuilder {
	b.faultHandler = h
	return b
}

// WithDMALatency sets the number of scheduling rounds a transfer takes.
func (b FTLBuilder) WithDMALatency(rounds int) FTLBuilder {
	b.dmaLatency = rounds
	return b
}

// WithMaxInFlight sets the number of concurrent DMA transfers.
func (b FTLBuilder) WithMaxInFlight(n int) FTLBuilder {
	b.maxInFlight = n
	return b
}

// Build creates an FTL.
func (b FTLBuilder) Build() *FTL {
	if b.completer == nil {
		panic("FTL requires a completer")
	}

	if b.maxInFlight <= 0 {
		panic("FTL requires at least one DMA slot")
	}

	if b.dmaLatency < 0 {
		panic("DMA latency cannot be negative")
	}

	return &FTL{
		completer:    b.completer,
		faultHandler: b.faultHandler,
		dmaLatency:   b.dmaLatency,
		maxInFlight:  b.maxInFlight,
		persisted:    make(map[uint64]bool),
	}
}
