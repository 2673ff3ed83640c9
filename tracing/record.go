// Package tracing records what the firmware does into a trace database.
package tracing

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/controller"
	"github.com/sarchlab/ssdctrl/dispatch"
	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

// Record kinds.
const (
	KindDispatch   = "dispatch"
	KindCompletion = "completion"
	KindTransition = "transition"
	KindEpochPush  = "epoch_push"
	KindEpochPop   = "epoch_pop"
)

// A Record is one traced firmware event.
type Record struct {
	ID    string
	Time  sim.VTimeInSec
	Where string
	Kind  string
	What  string
}

// A Writer persists records.
type Writer interface {
	Init()
	Write(r Record)
	Flush()
}

// Recorder turns firmware hook invocations into records.
type Recorder struct {
	timeTeller sim.TimeTeller
	writer     Writer
}

// NewRecorder creates a Recorder that stamps records with the time told by
// timeTeller.
func NewRecorder(timeTeller sim.TimeTeller, writer Writer) *Recorder {
	return &Recorder{timeTeller: timeTeller, writer: writer}
}

// Attach makes the recorder trace domain. Records are located at where.
func (r *Recorder) Attach(domain sim.Hookable, where string) {
	domain.AcceptHook(&recordHook{r: r, where: where})
}

type recordHook struct {
	r     *Recorder
	where string
}

// Func converts the hook context into a record.
func (h *recordHook) Func(ctx sim.HookCtx) {
	kind, what, ok := describe(ctx)
	if !ok {
		return
	}

	h.r.writer.Write(Record{
		ID:    xid.New().String(),
		Time:  h.r.timeTeller.CurrentTime(),
		Where: h.where,
		Kind:  kind,
		What:  what,
	})
}

func describe(ctx sim.HookCtx) (kind, what string, ok bool) {
	switch ctx.Pos {
	case dispatch.HookPosDispatch:
		return KindDispatch, describeOp(ctx.Item.(dispatch.Op)), true
	case dispatch.HookPosFlushComplete:
		cpl := ctx.Item.(nvme.Completion)
		return KindCompletion,
			fmt.Sprintf("slot %d status 0x%04X", cpl.SlotTag, cpl.StatusField),
			true
	case controller.HookPosStateTransition:
		t := ctx.Item.(controller.Transition)
		return KindTransition, fmt.Sprintf("%s -> %s", t.From, t.To), true
	case barrier.HookPosEpochPush:
		e := ctx.Item.(barrier.EpochEntry)
		return KindEpochPush, describeEntry(e), true
	case barrier.HookPosEpochPop:
		e := ctx.Item.(barrier.EpochEntry)
		return KindEpochPop, describeEntry(e), true
	default:
		return "", "", false
	}
}

func describeOp(op dispatch.Op) string {
	switch op := op.(type) {
	case dispatch.ReadOp:
		return describeTransfer(op.Opcode(), op.Slot, op.StartLBA, op.BlockCount)
	case dispatch.WriteOp:
		return describeTransfer(op.Opcode(), op.Slot, op.StartLBA, op.BlockCount)
	default:
		return fmt.Sprintf("%s slot %d", op.Opcode(), op.SlotTag())
	}
}

func describeTransfer(
	opcode nvme.Opcode,
	slot uint16,
	lba uint64,
	blocks uint32,
) string {
	return fmt.Sprintf("%s slot %d lba %d blocks %d", opcode, slot, lba, blocks)
}

func describeEntry(e barrier.EpochEntry) string {
	return fmt.Sprintf("stream %d epoch %d", e.StreamID, e.EpochID)
}
