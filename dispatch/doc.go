// Package dispatch decodes NVMe I/O commands into typed operations and hands
// them to the storage-request translation layer.
//
// Decoding enforces the address contracts of the host interface: the starting
// LBA must lie in the addressable capacity and the PRP entries must respect
// the DMA engine's alignment and address limits. A command that breaks a
// contract is reported as an error and nothing is submitted for it.
//
// Writes and flushes go through a WritePath. The plain path submits writes
// like reads and flushes every buffered write. The barrier path forwards the
// raw command so the write buffer can tag its entries with stream and epoch,
// and flushes pending epochs stream by stream.
package dispatch
