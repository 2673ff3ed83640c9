package nvme

import "fmt"

// Opcode is the command opcode carried in dword 0 bits 7:0.
type Opcode uint8

// NVM command set opcodes handled by the I/O path.
const (
	OpcodeFlush Opcode = 0x00
	OpcodeWrite Opcode = 0x01
	OpcodeRead  Opcode = 0x02
)

// String returns the name of the opcode.
func (o Opcode) String() string {
	switch o {
	case OpcodeFlush:
		return "Flush"
	case OpcodeWrite:
		return "Write"
	case OpcodeRead:
		return "Read"
	default:
		return fmt.Sprintf("Opcode(0x%02X)", uint8(o))
	}
}
