// Package nvme describes the host-visible NVMe layouts that the controller
// core decodes: the 16-dword submission queue entry, the I/O view over it,
// the completion entry and the controller configuration and status register
// fields.
//
// All multi-bit fields are read through accessor functions. Each accessor
// documents the dword index and bit range it reads. Dwords are host-order
// uint32 values as fetched from the submission queue; no byte swapping is
// performed here.
package nvme
