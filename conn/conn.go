// Package conn implements the per-flow reliability engine: the send queue,
// retransmission timer, RTT estimator, congestion window, receive sequence
// tracking, and connection state machine described for a Connection. It is
// the dominant component of the module; Listener (package listener) merely
// demultiplexes inbound segments to a Connection by 4-tuple.
package conn

import (
	"sync"
	"time"

	"github.com/netreliant/rtcp/internal/logging"
	"github.com/netreliant/rtcp/internal/ring"
	"github.com/netreliant/rtcp/rto"
	"github.com/netreliant/rtcp/tcpseg"
	"github.com/rs/xid"
)

// Transport is the narrow send-only capability a Connection needs from the
// shared network object: hand off one already-encoded segment.
// Listener binds a Connection to the concrete transport (see package
// network) at construction time.
type Transport interface {
	Send(segment []byte) error
}

// FourTuple identifies a Connection. Only IPv4 addressing is supported.
type FourTuple struct {
	PeerAddr  [4]byte
	PeerPort  uint16
	LocalAddr [4]byte
	LocalPort uint16
}

// ReceiveFunc is invoked with in-order application payload bytes. An empty
// payload marks end-of-stream (peer FIN received in order).
type ReceiveFunc func(c *Connection, payload []byte)

// Config bundles the knobs a Connection needs beyond its identity and
// transport. A zero Config is valid and uses tcpseg.MSS plus a 4KiB receive
// window.
type Config struct {
	MSS           tcpseg.Size
	RecvWindow    tcpseg.Size
	RecvBufSize   int
	IgnoreChecksum bool
	Logger        logging.Logger
}

func (c Config) withDefaults() Config {
	if c.MSS == 0 {
		c.MSS = tcpseg.MSS
	}
	if c.RecvWindow == 0 {
		c.RecvWindow = 4096
	}
	if c.RecvBufSize == 0 {
		c.RecvBufSize = 4096
	}
	return c
}

// Connection is a single passively-opened reliability-engine flow. Its
// logic follows a single-threaded cooperative event-loop model (no handler
// suspends mid-way), and every exported method serializes on an internal
// mutex so callers may drive it from more than one goroutine (network
// receive vs. application writer).
type Connection struct {
	mu sync.Mutex

	id   xid.ID
	four FourTuple
	cfg  Config
	tx   Transport
	clk  Clock
	log  logging.Logger

	state State

	// send-side
	sndNext    tcpseg.Value
	unacked    unackedQueue
	sendBuffer []byte
	cwnd       tcpseg.Size
	cwndAccum  tcpseg.Size
	inRecovery bool
	rtt        rto.Estimator
	timer      Timer

	// receive-side
	rcvNext tcpseg.Value
	onRecv  ReceiveFunc
	rxRing  ring.Ring

	// stats
	bytesSent      uint64
	bytesReceived  uint64
	retransmits    uint64
}

// newForAccept constructs a Connection in SYN_RECEIVED as described in
// §4.1 step 5: it is the Listener's job, not application code, to create
// one. iss is the Listener-chosen initial sequence number.
func newForAccept(four FourTuple, iss tcpseg.Value, peerSeq tcpseg.Value, tx Transport, clk Clock, cfg Config) *Connection {
	cfg = cfg.withDefaults()
	c := &Connection{
		id:      xid.New(),
		four:    four,
		cfg:     cfg,
		tx:      tx,
		clk:     clk,
		log:     cfg.Logger,
		state:   StateSynRcvd,
		sndNext: iss,
		rcvNext: tcpseg.Add(peerSeq, 1),
		cwnd:    cfg.MSS,
	}
	c.rxRing.Reset(make([]byte, cfg.RecvBufSize))
	return c
}

// ID returns the connection's opaque identifier, minted on acceptance.
func (c *Connection) ID() xid.ID { return c.id }

// FourTuple returns the identity tuple used by Listener's demultiplexing map.
func (c *Connection) FourTuple() FourTuple { return c.four }

// State returns the current connection state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetReceiveCallback registers the application data callback. It is not
// safe to call once segments may already be arriving; set it immediately
// after the Listener's accept callback hands over the Connection.
func (c *Connection) SetReceiveCallback(f ReceiveFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRecv = f
}

// Read implements io.Reader over the half-close receive buffer: it returns
// whatever application bytes have been delivered so far, and io.EOF once
// the peer's FIN has been processed and the buffer drained. It is an
// alternative to SetReceiveCallback's push model for callers that prefer a
// pull-based surface. Every in-order payload is written to this buffer and
// also passed to the receive callback if one is registered, so the two
// surfaces see the same bytes.
func (c *Connection) Read(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.rxRing.Read(b)
	if err == nil {
		return n, nil
	}
	// Ring empty: surface EOF only once the peer has actually closed.
	if c.state == StateCloseWait || c.state == StateLastAck || c.state == StateClosed {
		return 0, err
	}
	return 0, nil
}

// Stats is an immutable snapshot of a Connection's reliability-engine
// state, exposed for monitoring (see package metrics).
type Stats struct {
	State           State
	CWND            tcpseg.Size
	SRTT            time.Duration
	RTTVAR          time.Duration
	RTO             time.Duration
	BytesInFlight   tcpseg.Size
	Retransmits     uint64
	BytesSent       uint64
	BytesReceived   uint64
}

// Stats returns a point-in-time snapshot of the connection's internals.
func (c *Connection) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		State:         c.state,
		CWND:          c.cwnd,
		SRTT:          c.rtt.SRTT(),
		RTTVAR:        c.rtt.RTTVAR(),
		RTO:           c.rtt.RTO(),
		BytesInFlight: c.unacked.bytesInFlight(),
		Retransmits:   c.retransmits,
		BytesSent:     c.bytesSent,
		BytesReceived: c.bytesReceived,
	}
}
