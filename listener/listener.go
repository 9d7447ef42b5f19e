// Package listener implements the 4-tuple demultiplexer that owns every
// Connection bound to a single local port: it decodes inbound segments,
// creates a Connection on a fresh SYN, and forwards everything else to the
// Connection it already belongs to.
package listener

import (
	"log/slog"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/netreliant/rtcp/conn"
	"github.com/netreliant/rtcp/internal/logging"
	"github.com/netreliant/rtcp/tcpseg"
)

// AcceptFunc is invoked with a newly-constructed Connection once its SYN has
// been answered with a SYN+ACK (§4.1 step 5).
type AcceptFunc func(c *conn.Connection)

// TransportFactory binds a shared network object to one peer address,
// returning the narrow Transport a Connection uses to send. Listener calls
// this once per accepted 4-tuple; see package network for a concrete Link
// implementation.
type TransportFactory func(four conn.FourTuple) conn.Transport

// Config configures a Listener's bound port and the Connections it creates.
type Config struct {
	Port           uint16
	IgnoreChecksum bool
	ConnConfig     conn.Config
	Clock          conn.Clock
	Logger         logging.Logger
}

// Listener binds a single local port and demultiplexes inbound segments to
// Connections by 4-tuple, per §4.1.
type Listener struct {
	mu    sync.Mutex
	cfg   Config
	newTx TransportFactory
	conns map[conn.FourTuple]*conn.Connection
	onAccept AcceptFunc
	log   logging.Logger
	lastSeen map[conn.FourTuple]time.Time
	clock conn.Clock
}

// New constructs a Listener bound to cfg.Port. newTx is called once per
// accepted connection to obtain its send-side Transport.
func New(cfg Config, newTx TransportFactory) *Listener {
	clk := cfg.Clock
	if clk == nil {
		clk = conn.SystemClock
	}
	return &Listener{
		cfg:      cfg,
		newTx:    newTx,
		conns:    make(map[conn.FourTuple]*conn.Connection),
		lastSeen: make(map[conn.FourTuple]time.Time),
		log:      cfg.Logger,
		clock:    clk,
	}
}

// SetAcceptCallback registers f to be invoked for every newly accepted
// Connection (§4.1 contract: set_accept_callback(f)).
func (l *Listener) SetAcceptCallback(f AcceptFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAccept = f
}

// OnDatagram is the network-receive entry point (§4.1 "Inbound processing").
// srcAddr/dstAddr are the IPv4 addresses the datagram carried; segment is the
// raw TCP segment bytes (header + payload), already extracted from whatever
// outer framing the network layer used.
func (l *Listener) OnDatagram(srcAddr, dstAddr [4]byte, segment []byte) {
	frm, err := tcpseg.NewFrame(segment)
	if err != nil {
		l.reject(tcpseg.ErrShortSegment, slog.Int("len", len(segment)))
		return
	}
	if frm.DestinationPort() != l.cfg.Port {
		return // §4.1 step 2: drop silently, no log.
	}
	if !l.cfg.IgnoreChecksum {
		sum := tcpseg.PseudoHeaderIPv4Checksum(srcAddr, dstAddr, segment)
		if sum != 0 {
			l.reject(tcpseg.ErrBadChecksum,
				slog.String("src", formatAddr(srcAddr)), slog.Uint64("sum", uint64(sum)))
			return
		}
	}

	_, flags := frm.OffsetAndFlags()
	four := conn.FourTuple{
		PeerAddr:  srcAddr,
		PeerPort:  frm.SourcePort(),
		LocalAddr: dstAddr,
		LocalPort: frm.DestinationPort(),
	}
	seq := frm.Seq()
	ack := frm.Ack()
	payload := append([]byte(nil), frm.Payload()...)

	l.mu.Lock()
	existing, known := l.conns[four]
	l.mu.Unlock()

	if flags.HasAny(tcpseg.FlagSYN) {
		if known {
			l.reject(tcpseg.ErrDuplicateSYN, slog.String("peer", formatAddr(four.PeerAddr)))
			return // §4.1 step 5: duplicate SYN for known 4-tuple is dropped.
		}
		l.acceptSYN(four, seq)
		return
	}

	if !known {
		l.reject(tcpseg.ErrUnknownConn, slog.String("peer", formatAddr(four.PeerAddr)))
		return
	}
	l.touch(four)
	existing.OnSegment(seq, ack, flags, payload)
}

// reject logs a dropped segment's reason. All rejection paths are terminal
// per §7: the Listener never surfaces an error to anything but its own log.
func (l *Listener) reject(err *tcpseg.RejectError, attrs ...slog.Attr) {
	l.log.Debug(err.Error(), attrs...)
}

// acceptSYN implements the Listener half of §4.1 step 5: choosing iss and
// handing off to conn.Accept, which builds and transmits the SYN+ACK.
func (l *Listener) acceptSYN(four conn.FourTuple, peerSeq tcpseg.Value) {
	iss := tcpseg.Value(rand.Intn(65536))
	cfg := l.cfg.ConnConfig
	cfg.IgnoreChecksum = l.cfg.IgnoreChecksum
	cfg.Logger = l.log

	tx := l.newTx(four)
	c := conn.Accept(four, iss, peerSeq, tx, l.clock, cfg)

	l.mu.Lock()
	l.conns[four] = c
	l.lastSeen[four] = l.clock.Now()
	cb := l.onAccept
	l.mu.Unlock()

	if cb != nil {
		cb(c)
	}
}

func (l *Listener) touch(four conn.FourTuple) {
	l.mu.Lock()
	l.lastSeen[four] = l.clock.Now()
	l.mu.Unlock()
}

// Reap removes (and returns) connections that have reached StateClosed, or
// that have been idle since before idleSince, freeing the 4-tuple map entry
// so a later SYN for the same tuple can be accepted fresh. It is a
// supplemental maintenance operation, not part of the steady-state receive
// path: callers invoke it periodically (e.g. from a ticker).
func (l *Listener) Reap(idleSince time.Time) []*conn.Connection {
	l.mu.Lock()
	defer l.mu.Unlock()
	var reaped []*conn.Connection
	for four, c := range l.conns {
		if c.State() == conn.StateClosed || l.lastSeen[four].Before(idleSince) {
			delete(l.conns, four)
			delete(l.lastSeen, four)
			reaped = append(reaped, c)
		}
	}
	return reaped
}

// Connections returns a snapshot slice of all currently tracked Connections,
// for monitoring (see package metrics).
func (l *Listener) Connections() []*conn.Connection {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*conn.Connection, 0, len(l.conns))
	for _, c := range l.conns {
		out = append(out, c)
	}
	return out
}

func formatAddr(a [4]byte) string {
	return net.IPv4(a[0], a[1], a[2], a[3]).String()
}
