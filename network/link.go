// Package network provides the Link abstraction Listener and Connection
// send through, plus two implementations: Pipe, an in-memory link for
// deterministic tests, and UDP, which carries TCP-framed segments inside
// UDP datagrams as a stand-in for a raw IPv4 socket (see §6's "out of
// scope" note on raw network send/receive plumbing).
package network

// ReceiverFunc is the callback a Link hands inbound datagrams to:
// (srcAddr, dstAddr, segment bytes).
type ReceiverFunc func(srcAddr, dstAddr [4]byte, segment []byte)

// Link is the network abstraction consumed by Listener and Connection
// (§6 "Network abstraction (consumed)"): register a receiver, send
// fire-and-forget datagrams, and expose whether checksum verification
// should be skipped.
type Link interface {
	RegisterReceiver(f ReceiverFunc)
	Send(segment []byte, dstAddr [4]byte) error
	IgnoreChecksum() bool
}
