package conn

import (
	"log/slog"
	"time"
)

// armTimerLocked starts the retransmission timer if none is scheduled and
// unacked is non-empty, per §4.2.1: "Start the timer on any transmission
// that would otherwise leave unacked non-empty while no timer is
// scheduled." Caller must hold c.mu.
func (c *Connection) armTimerLocked() {
	if c.timer != nil || c.unacked.empty() {
		return
	}
	c.restartTimerLocked()
}

// restartTimerLocked (re)schedules the timer for the current rto,
// unconditionally. Caller must hold c.mu.
func (c *Connection) restartTimerLocked() {
	c.timer = c.clk.AfterFunc(c.rtt.RTO(), c.onTimeout)
}

// cancelTimerLocked stops any scheduled timer. Caller must hold c.mu.
func (c *Connection) cancelTimerLocked() {
	if c.timer == nil {
		return
	}
	c.timer.Stop()
	c.timer = nil
}

// onTimeout implements §4.2.1's expiry behavior. It runs as the Clock's
// fired callback, so it must acquire c.mu itself.
func (c *Connection) onTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = nil
	head := c.unacked.head()
	if head == nil {
		return // race guard: timer fired on empty unacked, per §7.
	}

	c.cwnd = c.cwnd / 2
	if c.cwnd < c.cfg.MSS {
		c.cwnd = c.cfg.MSS
	}
	c.inRecovery = true
	head.sendTime = time.Time{} // Karn: this retransmission must not yield a sample.
	c.retransmits++

	c.log.Debug("retransmission timeout",
		slog.String("state", c.state.String()),
		slog.Uint64("cwnd", uint64(c.cwnd)),
		slog.Uint64("retransmits", c.retransmits),
	)
	c.transmitRaw(head.encoded)
	c.restartTimerLocked()
}
