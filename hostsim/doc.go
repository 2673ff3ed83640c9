// Package hostsim provides simulated collaborators of the firmware core: a
// host interface register file with its command queues, an ideal FTL with a
// fixed DMA latency, an admin responder and a host driver that runs a
// workload through the full controller lifecycle.
package hostsim
