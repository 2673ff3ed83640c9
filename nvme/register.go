package nvme

// ShutdownStatus is the CSTS.SHST field.
type ShutdownStatus uint8

// Shutdown status codes.
const (
	ShutdownStatusNone       ShutdownStatus = 0
	ShutdownStatusInProgress ShutdownStatus = 1
	ShutdownStatusComplete   ShutdownStatus = 2
)

// String returns the name of the shutdown status.
func (s ShutdownStatus) String() string {
	switch s {
	case ShutdownStatusNone:
		return "None"
	case ShutdownStatusInProgress:
		return "InProgress"
	case ShutdownStatusComplete:
		return "Complete"
	default:
		return "Reserved"
	}
}

// Controller Configuration (CC) fields.
//
//	bit   0      EN   enable
//	bits 15:14   SHN  shutdown notification
const (
	ccEnableBit   = 0
	ccShnShift    = 14
	ccShnMask     = 0x3
	cstsReadyBit  = 0
	cstsShstShift = 2
	cstsShstMask  = 0x3
)

// CC is the value of the Controller Configuration register.
type CC uint32

// Enabled returns CC.EN.
func (cc CC) Enabled() bool {
	return cc&(1<<ccEnableBit) != 0
}

// ShutdownNotification returns CC.SHN. Zero means no notification.
func (cc CC) ShutdownNotification() uint8 {
	return uint8(uint32(cc) >> ccShnShift & ccShnMask)
}

// WithEnabled returns a copy with CC.EN set to en.
func (cc CC) WithEnabled(en bool) CC {
	if en {
		return cc | 1<<ccEnableBit
	}

	return cc &^ (1 << ccEnableBit)
}

// WithShutdownNotification returns a copy with CC.SHN set to shn.
func (cc CC) WithShutdownNotification(shn uint8) CC {
	cc &^= ccShnMask << ccShnShift
	return cc | CC(uint32(shn)&ccShnMask)<<ccShnShift
}

// CSTS is the value of the Controller Status register.
//
//	bit   0    RDY   ready
//	bits 3:2   SHST  shutdown status
type CSTS uint32

// Ready returns CSTS.RDY.
func (s CSTS) Ready() bool {
	return s&(1<<cstsReadyBit) != 0
}

// ShutdownStatus returns CSTS.SHST.
func (s CSTS) ShutdownStatus() ShutdownStatus {
	return ShutdownStatus(uint32(s) >> cstsShstShift & cstsShstMask)
}

// WithReady returns a copy with CSTS.RDY set to rdy.
func (s CSTS) WithReady(rdy bool) CSTS {
	if rdy {
		return s | 1<<cstsReadyBit
	}

	return s &^ (1 << cstsReadyBit)
}

// WithShutdownStatus returns a copy with CSTS.SHST set to st.
func (s CSTS) WithShutdownStatus(st ShutdownStatus) CSTS {
	s &^= cstsShstMask << cstsShstShift
	return s | CSTS(uint32(st)&cstsShstMask)<<cstsShstShift
}
