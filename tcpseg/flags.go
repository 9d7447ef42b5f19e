package tcpseg

import "math/bits"

// Flags is a TCP control-bits bitmask, i.e: SYN, FIN, ACK.
type Flags uint16

const (
	FlagFIN Flags = 1 << iota // FlagFIN - no more data from sender.
	FlagSYN                   // FlagSYN - synchronize sequence numbers.
	FlagRST                   // FlagRST - reset the connection.
	FlagPSH                   // FlagPSH - push function.
	FlagACK                   // FlagACK - acknowledgment field significant.
	FlagURG                   // FlagURG - urgent pointer field significant.
)

const flagMask = 0x01ff

// The union of SYN/FIN and ACK flags shows up throughout the engine, so we
// give the common combinations short names.
const (
	synack = FlagSYN | FlagACK
	finack = FlagFIN | FlagACK
)

// HasAll reports whether every bit in mask is set in flags.
func (flags Flags) HasAll(mask Flags) bool { return flags&mask == mask }

// HasAny reports whether one or more bits in mask are set in flags.
func (flags Flags) HasAny(mask Flags) bool { return flags&mask != 0 }

// Mask returns flags with non-control bits cleared.
func (flags Flags) Mask() Flags { return flags & flagMask }

// String returns a human readable flag string, i.e "[SYN,ACK]".
func (flags Flags) String() string {
	switch flags {
	case 0:
		return "[]"
	case synack:
		return "[SYN,ACK]"
	case finack:
		return "[FIN,ACK]"
	case FlagACK:
		return "[ACK]"
	case FlagSYN:
		return "[SYN]"
	case FlagFIN:
		return "[FIN]"
	case FlagRST:
		return "[RST]"
	}
	buf := make([]byte, 0, 2+4*bits.OnesCount16(uint16(flags)))
	buf = append(buf, '[')
	buf = flags.AppendFormat(buf)
	buf = append(buf, ']')
	return string(buf)
}

// AppendFormat appends the human readable flag list (without brackets) to b.
func (flags Flags) AppendFormat(b []byte) []byte {
	const names = "FIN SYN RST PSH ACK URG "
	const namelen = 4
	first := true
	for f := flags; f != 0; {
		i := bits.TrailingZeros16(uint16(f))
		if !first {
			b = append(b, ',')
		}
		first = false
		name := names[i*namelen : i*namelen+namelen-1]
		b = append(b, name...)
		f &= ^(1 << i)
	}
	return b
}
