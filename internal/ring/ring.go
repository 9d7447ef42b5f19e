// Package ring implements the byte ring buffer backing a Connection's
// receive-side io.Reader surface, adapted from the teacher repository's
// internal ring buffer.
package ring

import (
	"errors"
	"io"
)

// ErrBufferFull is returned by Write when there is not enough free space to
// hold the entire input. Writes are never partial: either all of b is
// buffered or none of it is.
var ErrBufferFull = errors.New("ring: buffer full")

// Ring is a byte ring buffer. The zero value is an empty ring of zero
// capacity; call Reset with a backing slice before use.
type Ring struct {
	Buf []byte
	Off int  // start of readable data
	End int  // one past the end of readable data
	full bool // disambiguates Off==End meaning empty vs. full
}

// Reset discards all buffered data and, if buf is non-nil, replaces the
// backing storage.
func (r *Ring) Reset(buf []byte) {
	if buf != nil {
		r.Buf = buf
	}
	r.Off = 0
	r.End = 0
	r.full = false
}

// Size returns the ring's total capacity.
func (r *Ring) Size() int { return len(r.Buf) }

// Buffered returns how many bytes are ready to read.
func (r *Ring) Buffered() int {
	switch {
	case r.full:
		return r.Size()
	case r.End >= r.Off:
		return r.End - r.Off
	default:
		return r.Size() - r.Off + r.End
	}
}

// Free returns how many bytes can still be written before the ring is full.
func (r *Ring) Free() int { return r.Size() - r.Buffered() }

func (r *Ring) isFull() bool { return r.full }

// Write appends b to the ring. It fails with ErrBufferFull if there is not
// enough free space for all of b; partial writes are never performed.
func (r *Ring) Write(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > r.Free() {
		return 0, ErrBufferFull
	}
	n := copy(r.Buf[r.End:], b)
	if n < len(b) {
		n += copy(r.Buf, b[n:])
	}
	r.End = (r.End + len(b)) % r.Size()
	if r.End == r.Off {
		r.full = true
	}
	return n, nil
}

// Read copies buffered bytes into b, advancing the read pointer. Returns
// io.EOF if the ring is empty.
func (r *Ring) Read(b []byte) (int, error) {
	if r.Buffered() == 0 {
		return 0, io.EOF
	}
	var n int
	if r.End > r.Off {
		n = copy(b, r.Buf[r.Off:r.End])
	} else {
		n = copy(b, r.Buf[r.Off:])
		if n < len(b) {
			n += copy(b[n:], r.Buf[:r.End])
		}
	}
	r.advance(n)
	return n, nil
}

func (r *Ring) advance(n int) {
	if n <= 0 {
		return
	}
	r.Off = (r.Off + n) % r.Size()
	r.full = false
}
