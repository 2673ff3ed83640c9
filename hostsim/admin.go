package hostsim

import (
	"github.com/sarchlab/ssdctrl/controller"
	"github.com/sarchlab/ssdctrl/dispatch"
	"github.com/sarchlab/ssdctrl/nvme"
)

// AdminResponder completes every admin command with success. Set Features
// on the volatile write cache also updates the device context.
type AdminResponder struct {
	Completer dispatch.Completer

	handled uint64
}

// HandleAdminCommand posts a success completion on the command's slot.
func (r *AdminResponder) HandleAdminCommand(
	ctx *controller.DeviceContext,
	cmd nvme.Command,
) {
	r.handled++

	if cmd.Opcode() == OpcodeSetFeatures &&
		cmd.Dwords[10]&0xFF == FeatureVolatileWriteCache {
		ctx.CacheEnabled = cmd.Dwords[11]&1 != 0
	}

	r.Completer.PostCompletion(nvme.Completion{SlotTag: cmd.SlotTag})
}

// Handled returns the number of admin commands completed.
func (r *AdminResponder) Handled() uint64 {
	return r.handled
}
