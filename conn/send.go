package conn

import (
	"log/slog"

	"github.com/netreliant/rtcp/tcpseg"
)

// Send enqueues bytes for reliable transmission (§4.2, send(bytes)). It is a
// no-op unless the connection is ESTABLISHED, per invariant 6: only then
// may the application append to send_buffer.
func (c *Connection) Send(b []byte) {
	if len(b) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEstablished {
		return
	}
	c.sendBuffer = append(c.sendBuffer, b...)
	c.transmitLocked()
}

// transmitLocked implements §4.2.5: drain send_buffer in MSS-sized chunks
// while bytes_in_flight < cwnd. Caller must hold c.mu.
func (c *Connection) transmitLocked() {
	if !c.state.canTransmit() {
		return
	}
	for len(c.sendBuffer) > 0 && c.unacked.bytesInFlight() < c.cwnd {
		n := int(c.cfg.MSS)
		if n > len(c.sendBuffer) {
			n = len(c.sendBuffer)
		}
		chunk := c.sendBuffer[:n]
		c.sendBuffer = c.sendBuffer[n:]

		seg := tcpseg.Segment{
			SEQ:     c.sndNext,
			ACK:     c.rcvNext,
			WND:     c.cfg.RecvWindow,
			DATALEN: tcpseg.Size(n),
			Flags:   tcpseg.FlagACK,
		}
		encoded := c.encode(seg, chunk)
		now := c.clk.Now()
		c.unacked.push(unackedEntry{
			seq:      seg.SEQ,
			length:   seg.LEN(),
			payload:  n,
			encoded:  encoded,
			sendTime: now,
		})
		c.armTimerLocked()
		c.transmitRaw(encoded)
		c.sndNext = tcpseg.Add(c.sndNext, tcpseg.Size(n))
		c.bytesSent += uint64(n)
	}
}

// encode builds the wire bytes for seg with the given payload, computing
// (or skipping, per Config.IgnoreChecksum) the IPv4 pseudo-header checksum.
func (c *Connection) encode(seg tcpseg.Segment, payload []byte) []byte {
	buf := make([]byte, tcpseg.SizeHeader+len(payload))
	frm, _ := tcpseg.NewFrame(buf)
	frm.SetSourcePort(c.four.LocalPort)
	frm.SetDestinationPort(c.four.PeerPort)
	frm.SetSegment(seg, 5)
	copy(frm.Payload(), payload)
	if !c.cfg.IgnoreChecksum {
		sum := tcpseg.PseudoHeaderIPv4Checksum(c.four.LocalAddr, c.four.PeerAddr, buf)
		frm.SetChecksum(tcpseg.NeverZero(sum))
	}
	return buf
}

func (c *Connection) transmitRaw(encoded []byte) {
	if c.tx == nil {
		return
	}
	if err := c.tx.Send(encoded); err != nil {
		c.log.Err("transmit failed", slog.String("err", err.Error()))
	}
}
