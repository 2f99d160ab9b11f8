// Package comm drives the wire protocol over a byte transport.
//
// A Process is the device side: it answers Read and Write requests against
// the shared areas, sends one-shot transmissions on request and periodic
// transmissions from a schedule. A Client is the peer side, sending
// requests to a device and matching the replies.
//
// Acknowledgement is link level and best effort. A device answers every
// request it dispatched with a single ACK or NAK byte after any response
// frame. Nothing is retransmitted.
package comm
