package controller

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ssdctrl/nvme"
	"github.com/sarchlab/ssdctrl/sim"
)

type fixedTime sim.VTimeInSec

func (t fixedTime) CurrentTime() sim.VTimeInSec {
	return sim.VTimeInSec(t)
}

func expectIOQueuesCleared(hw *MockHardware) {
	for qid := 0; qid < nvme.NumIOQueuePairs; qid++ {
		hw.EXPECT().ClearIOCompletionQueue(qid)
		hw.EXPECT().ClearIOSubmissionQueue(qid)
	}
}

var _ = Describe("Controller", func() {
	var (
		mockCtrl    *gomock.Controller
		hw          *MockHardware
		ctx         *DeviceContext
		c           *Controller
		transitions []Transition
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hw = NewMockHardware(mockCtrl)
		ctx = &DeviceContext{Status: StateIdle}
		c = MakeBuilder().
			WithHardware(hw).
			WithTimeTeller(fixedTime(2.5)).
			WithBadBlockBufferBase(0x4000).
			Build(ctx)

		transitions = nil
		c.AcceptHook(sim.HookFunc(func(hookCtx sim.HookCtx) {
			Expect(hookCtx.Pos).To(BeIdenticalTo(HookPosStateTransition))
			transitions = append(transitions, hookCtx.Item.(Transition))
		}))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic without hardware", func() {
		Expect(func() { MakeBuilder().Build(nil) }).To(Panic())
	})

	It("should create an idle context when none is given", func() {
		c := MakeBuilder().
			WithHardware(hw).
			WithTimeTeller(fixedTime(0)).
			Build(nil)

		Expect(c.State()).To(Equal(StateIdle))
		Expect(c.Context()).NotTo(BeNil())
	})

	It("should stay idle", func() {
		Expect(c.Step()).To(BeFalse())
		Expect(c.State()).To(Equal(StateIdle))
	})

	It("should only arm an idle controller", func() {
		Expect(c.Arm()).To(BeTrue())
		Expect(c.State()).To(Equal(StateWaitCCEn))
		Expect(c.Arm()).To(BeFalse())
		Expect(transitions).To(Equal([]Transition{
			{From: StateIdle, To: StateWaitCCEn},
		}))
	})

	Context("when waiting for CC.EN", func() {
		BeforeEach(func() {
			ctx.Status = StateWaitCCEn
		})

		It("should wait while CC.EN is clear", func() {
			hw.EXPECT().ControllerConfiguration().Return(nvme.CC(0)).Times(3)

			for i := 0; i < 3; i++ {
				Expect(c.Step()).To(BeFalse())
			}

			Expect(c.State()).To(Equal(StateWaitCCEn))
		})

		It("should enter RUNNING exactly once when enabled", func() {
			hw.EXPECT().
				ControllerConfiguration().
				Return(nvme.CC(0).WithEnabled(true)).
				AnyTimes()
			gomock.InOrder(
				hw.EXPECT().SetAdminQueue(true, true, true),
				hw.EXPECT().SetReady(true),
			)

			Expect(c.Step()).To(BeTrue())
			Expect(c.State()).To(Equal(StateRunning))
			Expect(c.FlushBaseline()).To(Equal(sim.VTimeInSec(2.5)))

			for i := 0; i < 4; i++ {
				Expect(c.Step()).To(BeFalse())
			}

			Expect(transitions).To(Equal([]Transition{
				{From: StateWaitCCEn, To: StateRunning},
			}))
		})
	})

	Context("when running", func() {
		BeforeEach(func() {
			ctx.Status = StateRunning
			ctx.CacheEnabled = true
		})

		It("should keep running without a shutdown notification", func() {
			hw.EXPECT().
				ControllerConfiguration().
				Return(nvme.CC(0).WithEnabled(true))

			Expect(c.Step()).To(BeFalse())
			Expect(c.State()).To(Equal(StateRunning))
			Expect(ctx.CacheEnabled).To(BeTrue())
		})

		It("should shut down in order", func() {
			cc := nvme.CC(0).WithEnabled(true).WithShutdownNotification(1)
			hw.EXPECT().ControllerConfiguration().Return(cc)

			calls := []any{
				hw.EXPECT().SetShutdownStatus(nvme.ShutdownStatusInProgress),
			}
			for qid := 0; qid < nvme.NumIOQueuePairs; qid++ {
				calls = append(calls,
					hw.EXPECT().ClearIOCompletionQueue(qid),
					hw.EXPECT().ClearIOSubmissionQueue(qid))
			}
			calls = append(calls,
				hw.EXPECT().SetAdminQueue(false, false, false),
				hw.EXPECT().SetShutdownStatus(nvme.ShutdownStatusComplete),
				hw.EXPECT().PersistGrownBadBlockTable(uint64(0x4000)),
			)
			gomock.InOrder(calls...)

			Expect(c.Step()).To(BeTrue())
			Expect(c.State()).To(Equal(StateShutdown))
			Expect(ctx.CacheEnabled).To(BeFalse())
		})
	})

	Context("when shutting down", func() {
		BeforeEach(func() {
			ctx.Status = StateShutdown
		})

		It("should wait until every queue pair is torn down", func() {
			hw.EXPECT().IOQueuePairCleared(gomock.Any()).
				DoAndReturn(func(qid int) bool { return qid < 5 }).
				Times(6)
			expectIOQueuesCleared(hw)

			Expect(c.Step()).To(BeTrue())
			Expect(c.State()).To(Equal(StateShutdown))

			hw.EXPECT().IOQueuePairCleared(gomock.Any()).
				Return(true).
				Times(nvme.NumIOQueuePairs)

			Expect(c.Step()).To(BeTrue())
			Expect(c.State()).To(Equal(StateWaitReset))
		})
	})

	Context("when waiting for reset", func() {
		BeforeEach(func() {
			ctx.Status = StateWaitReset
			ctx.CacheEnabled = true
		})

		It("should wait while CC.EN is set", func() {
			hw.EXPECT().
				ControllerConfiguration().
				Return(nvme.CC(0).WithEnabled(true))

			Expect(c.Step()).To(BeFalse())
			Expect(c.State()).To(Equal(StateWaitReset))
		})

		It("should go idle when CC.EN is cleared", func() {
			hw.EXPECT().ControllerConfiguration().Return(nvme.CC(0))
			hw.EXPECT().SetShutdownStatus(nvme.ShutdownStatusNone)
			hw.EXPECT().SetReady(false)

			Expect(c.Step()).To(BeTrue())
			Expect(c.State()).To(Equal(StateIdle))
			Expect(ctx.CacheEnabled).To(BeFalse())
		})
	})

	Context("when reset", func() {
		expectReset := func() {
			expectIOQueuesCleared(hw)
			hw.EXPECT().SetAdminQueue(false, false, false)
			hw.EXPECT().SetShutdownStatus(nvme.ShutdownStatusNone)
			hw.EXPECT().SetReady(false)
		}

		resetOnce := func() {
			c.ForceReset()
			Expect(c.Step()).To(BeTrue())
			Expect(c.State()).To(Equal(StateIdle))
		}

		It("should clear everything and go idle", func() {
			ctx.Status = StateRunning
			ctx.CacheEnabled = true
			expectReset()

			resetOnce()

			Expect(ctx.CacheEnabled).To(BeFalse())
			Expect(c.ResetCount()).To(Equal(1))
			Expect(transitions).To(Equal([]Transition{
				{From: StateRunning, To: StateReset},
				{From: StateReset, To: StateIdle},
			}))
		})

		It("should reset the link on the 5th consecutive reset", func() {
			for i := 0; i < 4; i++ {
				expectReset()
				resetOnce()
			}
			Expect(c.ResetCount()).To(Equal(4))

			expectReset()
			hw.EXPECT().AsyncLinkReset(LinkResetThreshold).Times(1)
			resetOnce()
			Expect(c.ResetCount()).To(Equal(0))

			for i := 0; i < 4; i++ {
				expectReset()
				resetOnce()
			}
			Expect(c.ResetCount()).To(Equal(4))
		})

		It("should restart counting when a command arrives", func() {
			for i := 0; i < 4; i++ {
				expectReset()
				resetOnce()
			}

			c.ResetRetryCounter()

			for i := 0; i < 4; i++ {
				expectReset()
				resetOnce()
			}
			Expect(c.ResetCount()).To(Equal(4))
		})
	})

	It("should not return to WAIT_CC_EN without passing IDLE", func() {
		enabled := true
		shn := uint8(0)
		hw.EXPECT().ControllerConfiguration().
			DoAndReturn(func() nvme.CC {
				return nvme.CC(0).
					WithEnabled(enabled).
					WithShutdownNotification(shn)
			}).
			AnyTimes()
		hw.EXPECT().SetAdminQueue(gomock.Any(), gomock.Any(), gomock.Any()).
			AnyTimes()
		hw.EXPECT().SetReady(gomock.Any()).AnyTimes()
		hw.EXPECT().SetShutdownStatus(gomock.Any()).AnyTimes()
		hw.EXPECT().ClearIOCompletionQueue(gomock.Any()).AnyTimes()
		hw.EXPECT().ClearIOSubmissionQueue(gomock.Any()).AnyTimes()
		hw.EXPECT().IOQueuePairCleared(gomock.Any()).Return(true).AnyTimes()
		hw.EXPECT().PersistGrownBadBlockTable(gomock.Any())

		c.Arm()
		c.Step()
		c.Step()
		shn = 1
		c.Step()
		c.Step()
		c.Step()
		enabled = false
		shn = 0
		c.Step()

		Expect(transitions).To(Equal([]Transition{
			{From: StateIdle, To: StateWaitCCEn},
			{From: StateWaitCCEn, To: StateRunning},
			{From: StateRunning, To: StateShutdown},
			{From: StateShutdown, To: StateWaitReset},
			{From: StateWaitReset, To: StateIdle},
		}))
	})
})

var _ = Describe("State", func() {
	It("should have names", func() {
		Expect(StateWaitCCEn.String()).To(Equal("WAIT_CC_EN"))
		Expect(StateReset.String()).To(Equal("RESET"))
		Expect(State(42).String()).To(Equal("State(42)"))
	})
})
