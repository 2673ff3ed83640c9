package controller

import "github.com/sarchlab/ssdctrl/nvme"

// Hardware is the register and queue surface of the host interface.
type Hardware interface {
	// ControllerConfiguration reads the CC register.
	ControllerConfiguration() nvme.CC

	// SetReady sets CSTS.RDY.
	SetReady(ready bool)

	// SetShutdownStatus sets CSTS.SHST.
	SetShutdownStatus(status nvme.ShutdownStatus)

	// SetAdminQueue arms or clears the admin queue pair.
	SetAdminQueue(sqValid, cqValid, cqIrqEnabled bool)

	// ClearIOCompletionQueue tears down an I/O completion queue.
	ClearIOCompletionQueue(qid int)

	// ClearIOSubmissionQueue tears down an I/O submission queue.
	ClearIOSubmissionQueue(qid int)

	// IOQueuePairCleared tells if both queues of the pair are torn down.
	IOQueuePairCleared(qid int) bool

	// AsyncLinkReset asks the PCIe layer to reset the link.
	AsyncLinkReset(retryCount int)

	// PersistGrownBadBlockTable writes the grown bad block table to the
	// medium, using the buffer at bufferBase as scratch space.
	PersistGrownBadBlockTable(bufferBase uint64)
}
