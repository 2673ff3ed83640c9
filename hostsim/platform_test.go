package hostsim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ssdctrl/barrier"
	"github.com/sarchlab/ssdctrl/controller"
	"github.com/sarchlab/ssdctrl/firmware"
	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

type rejectingSink struct {
	err error
}

func (s rejectingSink) Push(int, uint32) error {
	return s.err
}

var _ = Describe("Platform", func() {
	var (
		faults  []error
		builder PlatformBuilder
	)

	BeforeEach(func() {
		faults = nil
		builder = MakePlatformBuilder().
			WithFaultHandler(firmware.FaultHandlerFunc(func(err error) {
				faults = append(faults, err)
			}))
	})

	expectCleanLifecycle := func(p *Platform) {
		Expect(faults).To(BeEmpty())
		Expect(p.Driver.Phase()).To(Equal(PhaseDone))
		Expect(p.Firmware.Context().Status).To(Equal(controller.StateIdle))
		Expect(p.Firmware.Context().CacheEnabled).To(BeFalse())
		Expect(p.Host.CSTS().Ready()).To(BeFalse())
		Expect(p.Host.CSTS().ShutdownStatus()).
			To(Equal(nvme.ShutdownStatusNone))
		Expect(p.Host.BadBlockPersists()).To(HaveLen(1))
		sq, cq, irq := p.Host.AdminQueue()
		Expect(sq || cq || irq).To(BeFalse())
		for qid := 0; qid < nvme.NumIOQueuePairs; qid++ {
			Expect(p.Host.IOQueuePairCleared(qid)).To(BeTrue())
		}
	}

	It("should run the workload without barriers", func() {
		p := builder.Build("SSD")

		Expect(p.Run()).To(Succeed())

		expectCleanLifecycle(p)

		stats := p.Driver.Stats()
		Expect(stats.Submitted).To(Equal(uint64(102)))
		Expect(stats.Completed).To(Equal(stats.Submitted))
		Expect(stats.Failed).To(BeZero())
		Expect(stats.MaxLatency).To(BeNumerically(">", 0))

		Expect(p.Admin.Handled()).To(Equal(uint64(1)))
		Expect(p.FTL.Stats().Writes).To(Equal(uint64(64)))
		Expect(p.FTL.Stats().Reads).To(Equal(uint64(32)))
		Expect(p.FTL.BufferedBlocks()).To(BeZero())
		Expect(p.FTL.Persisted(0)).To(BeTrue())
		Expect(p.FTL.FlushedEpochs()).To(BeEmpty())

		admin, io := p.Firmware.NumCommands()
		Expect(admin).To(Equal(uint64(1)))
		Expect(io).To(Equal(uint64(101)))
	})

	It("should enable the write cache until shutdown", func() {
		w := DefaultWorkload()
		w.VolatileWriteCache = true
		p := builder.WithWorkload(w).Build("SSD")

		cacheSeen := false
		p.Engine.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == sim.HookPosAfterEvent &&
				p.Firmware.Context().CacheEnabled {
				cacheSeen = true
			}
		}))

		Expect(p.Run()).To(Succeed())

		expectCleanLifecycle(p)
		Expect(cacheSeen).To(BeTrue())
		Expect(p.Admin.Handled()).To(Equal(uint64(2)))
		Expect(p.Driver.Stats().Submitted).To(Equal(uint64(103)))

		admin, io := p.Firmware.NumCommands()
		Expect(admin).To(Equal(uint64(2)))
		Expect(io).To(Equal(uint64(101)))
	})

	It("should flush epochs per stream in closing order", func() {
		p := builder.WithBarrier(barrier.CapacityStrict).Build("SSD")

		Expect(p.Run()).To(Succeed())

		expectCleanLifecycle(p)
		Expect(p.Driver.Stats().Failed).To(BeZero())
		Expect(p.FTL.BufferedBlocks()).To(BeZero())

		flushed := p.FTL.FlushedEpochs()
		Expect(flushed).To(HaveLen(16))
		Expect(flushed[:4]).To(Equal([]barrier.EpochEntry{
			{StreamID: 1, EpochID: 1},
			{StreamID: 1, EpochID: 2},
			{StreamID: 2, EpochID: 1},
			{StreamID: 2, EpochID: 2},
		}))

		last := map[int]uint32{}
		for _, e := range flushed {
			Expect(e.EpochID).To(Equal(last[e.StreamID] + 1))
			last[e.StreamID] = e.EpochID
		}

		for _, s := range []int{nvme.StreamOne, nvme.StreamTwo} {
			n, err := p.Firmware.Tracker().Count(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		}
	})

	It("should halt the firmware when an epoch cannot be closed", func() {
		p := builder.WithBarrier(barrier.CapacityStrict).Build("SSD")
		sinkErr := errors.New("epoch capacity exceeded")
		p.FTL.AttachEpochSink(rejectingSink{err: sinkErr})

		Expect(p.Run()).To(Succeed())

		Expect(faults).NotTo(BeEmpty())
		Expect(errors.Is(faults[0], sinkErr)).To(BeTrue())
		Expect(p.Firmware.Halted()).To(BeTrue())
		Expect(p.Firmware.Snapshot().Halted).To(BeTrue())
		Expect(p.Driver.Phase()).NotTo(Equal(PhaseDone))
	})

	It("should complete failed flushes with success by default", func() {
		p := builder.Build("SSD")
		p.FTL.InjectFlushFailure(errors.New("program failure"))

		Expect(p.Run()).To(Succeed())

		Expect(p.Driver.Stats().Failed).To(BeZero())
		Expect(p.Driver.Phase()).To(Equal(PhaseDone))
	})

	It("should report failed flushes when asked to", func() {
		p := builder.WithFlushFailureReporting().Build("SSD")
		p.FTL.InjectFlushFailure(errors.New("program failure"))

		Expect(p.Run()).To(Succeed())

		Expect(p.Driver.Stats().Failed).To(Equal(uint64(5)))
		Expect(p.Driver.Phase()).To(Equal(PhaseDone))
	})
})
