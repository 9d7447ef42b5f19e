package conn

import "github.com/netreliant/rtcp/tcpseg"

// Accept constructs a Connection for a freshly-received SYN and performs
// the rest of §4.1 step 5 that is properly the Connection's own business:
// building, queuing, and transmitting the SYN+ACK, starting the
// retransmission timer, and advancing snd_next past the consumed sequence
// number. The Listener is left only to pick iss, register the 4-tuple, and
// invoke the accept callback.
func Accept(four FourTuple, iss tcpseg.Value, peerSeq tcpseg.Value, tx Transport, clk Clock, cfg Config) *Connection {
	c := newForAccept(four, iss, peerSeq, tx, clk, cfg)

	seg := tcpseg.Segment{
		SEQ:   c.sndNext,
		ACK:   c.rcvNext,
		WND:   c.cfg.RecvWindow,
		Flags: tcpseg.FlagSYN | tcpseg.FlagACK,
	}
	encoded := c.encode(seg, nil)
	c.unacked.push(unackedEntry{
		seq:      seg.SEQ,
		length:   seg.LEN(),
		payload:  0,
		encoded:  encoded,
		sendTime: c.clk.Now(),
	})
	c.armTimerLocked()
	c.transmitRaw(encoded)
	c.sndNext = tcpseg.Add(c.sndNext, 1)
	return c
}
