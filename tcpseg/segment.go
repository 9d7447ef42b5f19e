package tcpseg

import "fmt"

// MSS is the maximum segment size this implementation negotiates and
// transmits: the largest payload a single data segment may carry. A real
// deployment would read this from the peer's MSS option; this engine is not
// required to parse TCP options (out of scope), so it uses a fixed,
// conservative value safe for Ethernet-sized MTUs.
const MSS Size = 536

// Segment is the sequence-space view of an incoming or outgoing TCP
// segment: everything the reliability engine needs to reason about ordering,
// acknowledgment, and retransmission, independent of wire encoding.
type Segment struct {
	SEQ     Value // sequence number of the first octet (or of SYN/FIN if present).
	ACK     Value // acknowledgment number, valid only if Flags has ACK set.
	DATALEN Size  // payload length, not counting SYN/FIN.
	WND     Size  // advertised window.
	Flags   Flags
}

// LEN returns the number of sequence numbers this segment consumes,
// including one each for SYN and FIN.
func (seg *Segment) LEN() Size {
	add := Size(seg.Flags>>0) & 1 // FIN bit.
	add += Size(seg.Flags>>1) & 1 // SYN bit.
	return seg.DATALEN + add
}

// Last returns the sequence number of the final octet of the segment.
func (seg *Segment) Last() Value {
	seglen := seg.LEN()
	if seglen == 0 {
		return seg.SEQ
	}
	return Add(seg.SEQ, seglen) - 1
}

func (seg Segment) String() string {
	return fmt.Sprintf("<SEQ=%d><ACK=%d><WND=%d>%s DATA=%d", seg.SEQ, seg.ACK, seg.WND, seg.Flags.String(), seg.DATALEN)
}
