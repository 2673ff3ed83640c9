package dispatch

import "github.com/sarchlab/ssdctrl/nvme"

// Translator hands decoded requests to the storage-request pipeline.
type Translator interface {
	// TranslateAndSubmit queues a request of blockCount blocks.
	TranslateAndSubmit(
		slotTag uint16,
		startLBA uint64,
		blockCount uint32,
		op OpType,
	)

	// TranslateAndSubmitWriteWithBarrier queues a write and keeps the
	// stream and epoch fields of the command with the buffered data.
	TranslateAndSubmitWriteWithBarrier(slotTag uint16, cmd nvme.IoCommand)
}

// Flusher persists buffered writes to the medium.
type Flusher interface {
	FlushAllBufferedWrites() error
	FlushBufferedWritesForEpoch(streamID int, epochID uint32) error
}

// Completer posts completion entries to the host.
type Completer interface {
	PostCompletion(c nvme.Completion)
}
