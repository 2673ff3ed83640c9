package nvme

// Status codes of the generic command status type (SCT 0).
const (
	StatusSuccess       uint16 = 0x00
	StatusInternalError uint16 = 0x06
)

// Completion is the part of a completion queue entry the firmware fills in.
// The controller hardware adds the submission queue head, the phase tag and
// the command identifier.
type Completion struct {
	SlotTag  uint16
	Specific uint32

	// StatusField is the 15-bit status field without the phase tag:
	// bits 7:0 status code, bits 10:8 status code type.
	StatusField uint16
}

// MakeStatusField packs a status code type and status code.
func MakeStatusField(sct uint8, sc uint8) uint16 {
	return uint16(sct&0x7)<<8 | uint16(sc)
}

// StatusCode returns bits 7:0 of the status field.
func (c Completion) StatusCode() uint8 {
	return uint8(c.StatusField)
}

// StatusCodeType returns bits 10:8 of the status field.
func (c Completion) StatusCodeType() uint8 {
	return uint8(c.StatusField>>8) & 0x7
}

// Succeeded tells if the completion reports success.
func (c Completion) Succeeded() bool {
	return c.StatusField == StatusSuccess
}
