package dispatch

import (
	"errors"
	"log"

	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/nvme"
)

// A WritePath decides how writes are submitted and how buffered writes are
// flushed.
type WritePath interface {
	// Write submits a decoded write.
	Write(op WriteOp)

	// Flush makes buffered writes durable. Failures reported by the flush
	// collaborator come back as a *FlushError. Any other error is a fault.
	Flush() error
}

// NewPlainWritePath returns the write path used without barrier support.
func NewPlainWritePath(t Translator, f Flusher) WritePath {
	return &plainWritePath{translator: t, flusher: f}
}

type plainWritePath struct {
	translator Translator
	flusher    Flusher
}

func (p *plainWritePath) Write(op WriteOp) {
	p.translator.TranslateAndSubmit(op.Slot, op.StartLBA, op.BlockCount, OpWrite)
}

func (p *plainWritePath) Flush() error {
	if err := p.flusher.FlushAllBufferedWrites(); err != nil {
		return &FlushError{Err: err}
	}

	return nil
}

// NewBarrierWritePath returns the write path that keeps per-stream epoch
// ordering. The tracker is filled by the write buffer when a barrier-flagged
// write finishes its data transfer.
func NewBarrierWritePath(
	t Translator,
	f Flusher,
	tracker *barrier.Tracker,
) WritePath {
	return &barrierWritePath{translator: t, flusher: f, tracker: tracker}
}

type barrierWritePath struct {
	translator Translator
	flusher    Flusher
	tracker    *barrier.Tracker
}

func (p *barrierWritePath) Write(op WriteOp) {
	p.translator.TranslateAndSubmitWriteWithBarrier(op.Slot, op.Cmd)
}

// Flush drains stream one completely before touching stream two.
func (p *barrierWritePath) Flush() error {
	var flushErrs []error

	for streamID := nvme.StreamOne; streamID <= nvme.NumStreams; streamID++ {
		err := p.tracker.Drain(streamID, func(epochID uint32) error {
			log.Printf("flush stream %d, epoch %d", streamID, epochID)

			err := p.flusher.FlushBufferedWritesForEpoch(streamID, epochID)
			if err != nil {
				flushErrs = append(flushErrs, err)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	if len(flushErrs) > 0 {
		return &FlushError{Err: errors.Join(flushErrs...)}
	}

	return nil
}
