package firmware

import (
	"github.com/sarchlab/ssdctrl/controller"
	"github.com/sarchlab/ssdctrl/nvme"
)

// CommandFetcher polls the submission queues.
type CommandFetcher interface {
	// FetchCommand returns the next command, if any. It never blocks.
	FetchCommand() (nvme.Command, bool)
}

// AdminHandler executes commands fetched from the admin queue.
type AdminHandler interface {
	HandleAdminCommand(ctx *controller.DeviceContext, cmd nvme.Command)
}

// StoragePipeline is the storage-request engine behind the translation
// layer.
type StoragePipeline interface {
	// InitFtl initializes the storage engine. It is called once.
	InitFtl()

	// FlushSubmissionQueueToLowLevel pushes translated requests to the
	// low-level scheduler.
	FlushSubmissionQueueToLowLevel()

	// ScheduleStorageRequests runs the background request scheduler.
	ScheduleStorageRequests()

	// ReconcileCompletedDmaRequests retires the finished DMA transfers.
	ReconcileCompletedDmaRequests()

	PendingDMA() bool
	OutstandingRequests() int
	BlockedRequests() int
}
