package conn

import (
	"time"

	"github.com/netreliant/rtcp/tcpseg"
)

// unackedEntry records one outstanding transmitted segment: its starting
// sequence number, logical length (payload bytes, or 1 for a bare SYN/FIN),
// and the send time to use for an RTT sample. sendTime is the zero Time once
// the entry has been retransmitted, marking it untainted-sample-ineligible
// per Karn's algorithm.
type unackedEntry struct {
	seq      tcpseg.Value
	length   tcpseg.Size
	payload  int // payload bytes only, for cwnd accounting; 0 for header-only
	encoded  []byte
	sendTime time.Time
}

func (e unackedEntry) last() tcpseg.Value { return tcpseg.Add(e.seq, e.length) }

// unackedQueue is the ordered, head-removable, tail-appendable retransmission
// queue described by the design notes: append only at the tail, remove only
// from the head.
type unackedQueue struct {
	entries []unackedEntry
}

func (q *unackedQueue) empty() bool { return len(q.entries) == 0 }

func (q *unackedQueue) head() *unackedEntry {
	if q.empty() {
		return nil
	}
	return &q.entries[0]
}

func (q *unackedQueue) push(e unackedEntry) {
	q.entries = append(q.entries, e)
}

func (q *unackedQueue) popFront() unackedEntry {
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e
}

func (q *unackedQueue) clear() {
	q.entries = nil
}

// bytesInFlight sums the payload length of every outstanding entry.
func (q *unackedQueue) bytesInFlight() tcpseg.Size {
	var total tcpseg.Size
	for _, e := range q.entries {
		total += tcpseg.Size(e.payload)
	}
	return total
}
