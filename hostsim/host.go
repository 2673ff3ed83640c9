package hostsim

import (
	"errors"
	"fmt"

	"github.com/sarchlab/ssdctrl/nvme"
)

// ErrQueueNotCreated is returned when a command is submitted to a queue that
// is not armed.
var ErrQueueNotCreated = errors.New("queue not created")

// A Waker can be asked to tick again.
type Waker interface {
	TickLater()
}

// Host is the register file and queue set shared by the host and the
// firmware. The host side writes CC and submits commands. The firmware side
// reads CC, writes CSTS, fetches commands and posts completions.
type Host struct {
	cc   nvme.CC
	csts nvme.CSTS

	adminSQ, adminCQ, adminIrq bool
	ioSQ, ioCQ                 [nvme.NumIOQueuePairs]bool

	submissions []nvme.Command
	completions []nvme.Completion
	nextSeqNum  uint32

	linkResets       []int
	badBlockPersists []uint64

	firmware Waker
	driver   Waker
}

// NewHost creates a Host with all registers cleared.
func NewHost() *Host {
	return &Host{}
}

// ConnectFirmware sets who is woken up when the host writes a register or
// rings a doorbell.
func (h *Host) ConnectFirmware(w Waker) {
	h.firmware = w
}

// ConnectDriver sets who is woken up when the firmware posts a completion or
// updates the status register.
func (h *Host) ConnectDriver(w Waker) {
	h.driver = w
}

func wake(w Waker) {
	if w != nil {
		w.TickLater()
	}
}

// WriteCC is a host write to the controller configuration register.
func (h *Host) WriteCC(cc nvme.CC) {
	h.cc = cc
	wake(h.firmware)
}

// CC returns the controller configuration register.
func (h *Host) CC() nvme.CC {
	return h.cc
}

// CSTS returns the controller status register.
func (h *Host) CSTS() nvme.CSTS {
	return h.csts
}

// CreateIOQueuePair arms I/O queue pair qid, where qid is 1 based.
func (h *Host) CreateIOQueuePair(qid uint16) error {
	if qid == nvme.AdminQueueID || int(qid) > nvme.NumIOQueuePairs {
		return fmt.Errorf("I/O queue %d: %w", qid, ErrQueueNotCreated)
	}

	h.ioSQ[qid-1] = true
	h.ioCQ[qid-1] = true

	return nil
}

// Submit places a command on its submission queue and rings the doorbell.
// The sequence number is assigned by the Host.
func (h *Host) Submit(cmd nvme.Command) (nvme.Command, error) {
	if !h.queueArmed(cmd.QueueID) {
		return cmd, fmt.Errorf("queue %d: %w", cmd.QueueID, ErrQueueNotCreated)
	}

	cmd.SeqNum = h.nextSeqNum
	h.nextSeqNum++
	h.submissions = append(h.submissions, cmd)

	wake(h.firmware)

	return cmd, nil
}

func (h *Host) queueArmed(qid uint16) bool {
	if qid == nvme.AdminQueueID {
		return h.adminSQ
	}

	if int(qid) > nvme.NumIOQueuePairs {
		return false
	}

	return h.ioSQ[qid-1]
}

// TakeCompletions returns and forgets the completions posted so far.
func (h *Host) TakeCompletions() []nvme.Completion {
	cpls := h.completions
	h.completions = nil

	return cpls
}

// PendingSubmissions returns the number of commands not fetched yet.
func (h *Host) PendingSubmissions() int {
	return len(h.submissions)
}

// LinkResets returns the retry counts of every link reset requested.
func (h *Host) LinkResets() []int {
	return h.linkResets
}

// BadBlockPersists returns the buffer addresses of every bad block table
// update.
func (h *Host) BadBlockPersists() []uint64 {
	return h.badBlockPersists
}

// ControllerConfiguration reads CC.
func (h *Host) ControllerConfiguration() nvme.CC {
	return h.cc
}

// SetReady sets CSTS.RDY.
func (h *Host) SetReady(ready bool) {
	h.csts = h.csts.WithReady(ready)
	wake(h.driver)
}

// SetShutdownStatus sets CSTS.SHST.
func (h *Host) SetShutdownStatus(status nvme.ShutdownStatus) {
	h.csts = h.csts.WithShutdownStatus(status)
	wake(h.driver)
}

// SetAdminQueue arms or clears the admin queue pair.
func (h *Host) SetAdminQueue(sqValid, cqValid, cqIrqEnabled bool) {
	h.adminSQ = sqValid
	h.adminCQ = cqValid
	h.adminIrq = cqIrqEnabled
}

// AdminQueue returns the admin queue pair state.
func (h *Host) AdminQueue() (sqValid, cqValid, cqIrqEnabled bool) {
	return h.adminSQ, h.adminCQ, h.adminIrq
}

// ClearIOCompletionQueue tears down I/O completion queue qid, 0 based.
func (h *Host) ClearIOCompletionQueue(qid int) {
	h.ioCQ[qid] = false
}

// ClearIOSubmissionQueue tears down I/O submission queue qid, 0 based.
func (h *Host) ClearIOSubmissionQueue(qid int) {
	h.ioSQ[qid] = false
}

// IOQueuePairCleared tells if pair qid, 0 based, is torn down.
func (h *Host) IOQueuePairCleared(qid int) bool {
	return !h.ioSQ[qid] && !h.ioCQ[qid]
}

// AsyncLinkReset records a link reset request.
func (h *Host) AsyncLinkReset(retryCount int) {
	h.linkResets = append(h.linkResets, retryCount)
}

// PersistGrownBadBlockTable records a bad block table update.
func (h *Host) PersistGrownBadBlockTable(bufferBase uint64) {
	h.badBlockPersists = append(h.badBlockPersists, bufferBase)
}

// FetchCommand returns the oldest submitted command whose queue is armed.
func (h *Host) FetchCommand() (nvme.Command, bool) {
	for i, cmd := range h.submissions {
		if !h.queueArmed(cmd.QueueID) {
			continue
		}

		h.submissions = append(h.submissions[:i], h.submissions[i+1:]...)

		return cmd, true
	}

	return nvme.Command{}, false
}

// PostCompletion places a completion on the completion queue.
func (h *Host) PostCompletion(c nvme.Completion) {
	h.completions = append(h.completions, c)
	wake(h.driver)
}
