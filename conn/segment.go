package conn

import (
	"log/slog"
	"time"

	"github.com/netreliant/rtcp/tcpseg"
)

const minRTTSample = time.Millisecond

// OnSegment is the Listener's receive-side entry point into a Connection
// (§4.2, on_segment). It is the only inbound path: everything else is
// driven by the application (Send/Close) or the timer (onTimeout).
func (c *Connection) OnSegment(seq, ack tcpseg.Value, flags tcpseg.Flags, payload []byte) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	if flags.HasAny(tcpseg.FlagACK) {
		c.processAckLocked(ack)
	}
	deliveries := c.processDataLocked(seq, flags, payload)
	onRecv := c.onRecv
	c.mu.Unlock()

	// Deliver to the application outside the lock: the receive callback is
	// a capability the application may use to call back into this
	// Connection (e.g. Send from within a read handler), which would
	// deadlock if invoked while c.mu is held.
	if onRecv != nil {
		for _, d := range deliveries {
			onRecv(c, d)
		}
	}
}

// processAckLocked implements §4.2.2. Caller holds c.mu.
func (c *Connection) processAckLocked(ack tcpseg.Value) {
	switch c.state {
	case StateSynRcvd:
		if ack == c.sndNext {
			c.state = StateEstablished
			c.log.Debug("handshake complete", slog.String("state", c.state.String()))
		}
	case StateLastAck:
		if ack == c.sndNext {
			c.state = StateClosed
			c.cancelTimerLocked()
			c.unacked.clear()
			return
		}
	}

	var ackedBytes tcpseg.Size
	removedAny := false
	for {
		head := c.unacked.head()
		if head == nil || !head.last().LessThanEq(ack) {
			break
		}
		e := c.unacked.popFront()
		removedAny = true
		if !e.sendTime.IsZero() {
			sample := c.clk.Now().Sub(e.sendTime)
			// Clock-granularity guard: with no prior estimate, a sample
			// below minRTTSample is discarded rather than seeding srtt.
			if sample >= minRTTSample || c.rtt.SRTT() != 0 {
				c.rtt.Sample(sample)
			}
		}
		ackedBytes += tcpseg.Size(e.payload)
	}

	if removedAny {
		if c.inRecovery {
			c.inRecovery = false
		} else if ackedBytes > 0 {
			c.cwndAccum += ackedBytes
			for c.cwndAccum >= c.cwnd {
				c.cwndAccum -= c.cwnd
				c.cwnd += c.cfg.MSS
			}
		}

		// A duplicate, stale, or future ACK removes nothing and must leave
		// the retransmission timer running on whatever it was already
		// counting down; only genuine cumulative progress re-bases it.
		c.cancelTimerLocked()
		if !c.unacked.empty() {
			c.restartTimerLocked()
		}
	}
	c.transmitLocked()
}

// processDataLocked implements §4.2.4. Caller holds c.mu. It returns the
// payloads (in order) that should be delivered to the application callback
// once the caller has released the lock; an empty slice element marks the
// end-of-stream (FIN) delivery.
func (c *Connection) processDataLocked(seq tcpseg.Value, flags tcpseg.Flags, payload []byte) [][]byte {
	if !c.state.canReceiveData() || seq != c.rcvNext {
		return nil
	}

	var deliveries [][]byte
	armAck := false
	if len(payload) > 0 {
		if _, err := c.rxRing.Write(payload); err != nil {
			c.log.Err("receive buffer overrun, dropping payload", slog.String("err", err.Error()))
			return nil
		}
		c.rcvNext = tcpseg.Add(c.rcvNext, tcpseg.Size(len(payload)))
		c.bytesReceived += uint64(len(payload))
		armAck = true
		deliveries = append(deliveries, payload)
	}
	if flags.HasAny(tcpseg.FlagFIN) {
		c.state = StateCloseWait
		c.rcvNext = tcpseg.Add(c.rcvNext, 1)
		armAck = true
		deliveries = append(deliveries, nil)
	}
	if armAck {
		c.sendPureACKLocked()
	}
	return deliveries
}

func (c *Connection) sendPureACKLocked() {
	seg := tcpseg.Segment{
		SEQ:   c.sndNext,
		ACK:   c.rcvNext,
		WND:   c.cfg.RecvWindow,
		Flags: tcpseg.FlagACK,
	}
	c.transmitRaw(c.encode(seg, nil))
}
