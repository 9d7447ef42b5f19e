package tcpseg

import (
	"encoding/binary"
	"errors"
	"math"
)

// SizeHeader is the length in bytes of a TCP header without options.
const SizeHeader = 20

var ErrShortBuffer = errors.New("tcpseg: buffer shorter than TCP header")

// Frame is a view over a byte buffer containing a TCP segment: a 20-byte
// fixed header (no options support, since options parsing is out of scope)
// followed by payload.
type Frame struct {
	buf []byte
}

// NewFrame returns a Frame backed by buf. buf must be at least SizeHeader
// bytes; the caller is responsible for ensuring it is no longer than the
// actual wire segment.
func NewFrame(buf []byte) (Frame, error) {
	if len(buf) < SizeHeader {
		return Frame{}, ErrShortBuffer
	}
	return Frame{buf: buf}, nil
}

// RawData returns the underlying buffer backing the frame.
func (f Frame) RawData() []byte { return f.buf }

func (f Frame) SourcePort() uint16      { return binary.BigEndian.Uint16(f.buf[0:2]) }
func (f Frame) SetSourcePort(p uint16)  { binary.BigEndian.PutUint16(f.buf[0:2], p) }
func (f Frame) DestinationPort() uint16 { return binary.BigEndian.Uint16(f.buf[2:4]) }
func (f Frame) SetDestinationPort(p uint16) {
	binary.BigEndian.PutUint16(f.buf[2:4], p)
}

func (f Frame) Seq() Value     { return Value(binary.BigEndian.Uint32(f.buf[4:8])) }
func (f Frame) SetSeq(v Value) { binary.BigEndian.PutUint32(f.buf[4:8], uint32(v)) }
func (f Frame) Ack() Value     { return Value(binary.BigEndian.Uint32(f.buf[8:12])) }
func (f Frame) SetAck(v Value) { binary.BigEndian.PutUint32(f.buf[8:12], uint32(v)) }

// OffsetAndFlags returns the data offset (header length in 32-bit words,
// high 4 bits of the field) and the control flags (low 9 bits).
func (f Frame) OffsetAndFlags() (offset uint8, flags Flags) {
	v := binary.BigEndian.Uint16(f.buf[12:14])
	offset = uint8(v >> 12)
	flags = Flags(v).Mask()
	return offset, flags
}

func (f Frame) SetOffsetAndFlags(offset uint8, flags Flags) {
	v := uint16(offset)<<12 | uint16(flags.Mask())
	binary.BigEndian.PutUint16(f.buf[12:14], v)
}

// HeaderLength returns the header length in bytes, options included.
func (f Frame) HeaderLength() int {
	offset, _ := f.OffsetAndFlags()
	return 4 * int(offset)
}

func (f Frame) WindowSize() uint16     { return binary.BigEndian.Uint16(f.buf[14:16]) }
func (f Frame) SetWindowSize(v uint16) { binary.BigEndian.PutUint16(f.buf[14:16], v) }
func (f Frame) Checksum() uint16       { return binary.BigEndian.Uint16(f.buf[16:18]) }
func (f Frame) SetChecksum(v uint16)   { binary.BigEndian.PutUint16(f.buf[16:18], v) }
func (f Frame) UrgentPtr() uint16      { return binary.BigEndian.Uint16(f.buf[18:20]) }
func (f Frame) SetUrgentPtr(v uint16)  { binary.BigEndian.PutUint16(f.buf[18:20], v) }

// Payload returns the segment's payload, i.e everything past the header.
func (f Frame) Payload() []byte {
	return f.buf[f.HeaderLength():]
}

// Segment decodes the frame into a Segment, with DATALEN set from
// payloadSize (the caller already knows the total datagram length).
func (f Frame) Segment(payloadSize int) Segment {
	if payloadSize > math.MaxInt32 {
		panic("tcpseg: payload overflow")
	}
	_, flags := f.OffsetAndFlags()
	return Segment{
		SEQ:     f.Seq(),
		ACK:     f.Ack(),
		WND:     Size(f.WindowSize()),
		DATALEN: Size(payloadSize),
		Flags:   flags,
	}
}

// SetSegment writes seq, ack, offset, window and flags into the frame's
// fixed header. offset is the header length in 32-bit words (minimum 5).
func (f Frame) SetSegment(seg Segment, offset uint8) {
	if offset >= 1<<4 {
		panic("tcpseg: header offset too large")
	} else if seg.WND > math.MaxUint16 {
		panic("tcpseg: window overflow")
	}
	f.SetSeq(seg.SEQ)
	f.SetAck(seg.ACK)
	f.SetOffsetAndFlags(offset, seg.Flags)
	f.SetWindowSize(uint16(seg.WND))
}

// ClearHeader zeros the fixed header section, leaving payload untouched.
func (f Frame) ClearHeader() {
	for i := range f.buf[:SizeHeader] {
		f.buf[i] = 0
	}
}
