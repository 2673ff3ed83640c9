package dispatch

import (
	"errors"
	"log"

	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

// HookPosDispatch marks when a decoded op is about to be executed. The hook
// item is the Op.
var HookPosDispatch = &sim.HookPos{Name: "Dispatch"}

// HookPosFlushComplete marks when a flush command is completed. The hook item
// is the posted nvme.Completion.
var HookPosFlushComplete = &sim.HookPos{Name: "Flush Complete"}

// A Dispatcher executes I/O commands.
type Dispatcher struct {
	sim.HookableBase

	decoder    Decoder
	translator Translator
	completer  Completer
	writePath  WritePath

	reportFlushFailure bool
}

// Decoder returns the decoder used by the dispatcher.
func (d *Dispatcher) Decoder() Decoder {
	return d.decoder
}

// Dispatch decodes and executes a command fetched from an I/O queue. A
// decode error means the command was not executed at all.
func (d *Dispatcher) Dispatch(cmd nvme.Command) error {
	op, err := d.decoder.Decode(cmd)
	if err != nil {
		return err
	}

	if d.NumHooks() > 0 {
		d.InvokeHook(sim.HookCtx{
			Domain: d,
			Pos:    HookPosDispatch,
			Item:   op,
		})
	}

	switch op := op.(type) {
	case ReadOp:
		d.translator.TranslateAndSubmit(
			op.Slot, op.StartLBA, op.BlockCount, OpRead)
	case WriteOp:
		d.writePath.Write(op)
	case FlushOp:
		return d.flush(op)
	}

	return nil
}

func (d *Dispatcher) flush(op FlushOp) error {
	status, err := d.flushStatus()
	if err != nil {
		return err
	}

	cpl := nvme.Completion{
		SlotTag:     op.Slot,
		Specific:    0,
		StatusField: status,
	}
	d.completer.PostCompletion(cpl)

	if d.NumHooks() > 0 {
		d.InvokeHook(sim.HookCtx{
			Domain: d,
			Pos:    HookPosFlushComplete,
			Item:   cpl,
		})
	}

	return nil
}

// flushStatus runs the flush and picks the status to report. Collaborator
// failures are reported only when the dispatcher is built with
// WithFlushFailureReporting.
func (d *Dispatcher) flushStatus() (uint16, error) {
	err := d.writePath.Flush()
	if err == nil {
		return nvme.StatusSuccess, nil
	}

	var flushErr *FlushError
	if !errors.As(err, &flushErr) {
		return 0, err
	}

	log.Printf("%v", flushErr)

	if d.reportFlushFailure {
		return nvme.MakeStatusField(0, uint8(nvme.StatusInternalError)), nil
	}

	return nvme.StatusSuccess, nil
}

// FlushBuffered flushes buffered writes without completing any command. It
// is used by the internal periodic flush. Collaborator failures are logged.
func (d *Dispatcher) FlushBuffered() error {
	err := d.writePath.Flush()

	var flushErr *FlushError
	if errors.As(err, &flushErr) {
		log.Printf("internal %v", flushErr)
		return nil
	}

	return err
}
