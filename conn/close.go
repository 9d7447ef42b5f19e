package conn

import "github.com/netreliant/rtcp/tcpseg"

// Close requests local close (§4.2.6). It is the only way the application
// side initiates a FIN; there is no full active-close teardown beyond
// FIN_WAIT_1 (open question 3: unimplemented past that point, by design).
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateLastAck, StateClosed, StateFinWait1:
		return
	case StateCloseWait:
		c.state = StateLastAck
	case StateEstablished:
		c.state = StateFinWait1
	default:
		return
	}
	c.sendFINLocked()
}

func (c *Connection) sendFINLocked() {
	seg := tcpseg.Segment{
		SEQ:   c.sndNext,
		ACK:   c.rcvNext,
		WND:   c.cfg.RecvWindow,
		Flags: tcpseg.FlagFIN | tcpseg.FlagACK,
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
}
