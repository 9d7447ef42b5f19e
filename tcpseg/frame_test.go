package tcpseg

import (
	"math/rand"
	"testing"
)

func TestFrameSetGet(t *testing.T) {
	var buf [64]byte
	frm, err := NewFrame(buf[:])
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		wantSrc := uint16(1 + rng.Intn(0xfffe))
		wantDst := uint16(1 + rng.Intn(0xfffe))
		wantSeq := Value(rng.Uint32())
		wantAck := Value(rng.Uint32())
		wantWnd := uint16(rng.Intn(0xffff))
		wantFlags := Flags(rng.Intn(64)).Mask()

		frm.SetSourcePort(wantSrc)
		frm.SetDestinationPort(wantDst)
		frm.SetSeq(wantSeq)
		frm.SetAck(wantAck)
		frm.SetWindowSize(wantWnd)
		frm.SetOffsetAndFlags(5, wantFlags)

		if frm.SourcePort() != wantSrc {
			t.Fatalf("src port: got %d want %d", frm.SourcePort(), wantSrc)
		}
		if frm.DestinationPort() != wantDst {
			t.Fatalf("dst port: got %d want %d", frm.DestinationPort(), wantDst)
		}
		if frm.Seq() != wantSeq {
			t.Fatalf("seq: got %d want %d", frm.Seq(), wantSeq)
		}
		if frm.Ack() != wantAck {
			t.Fatalf("ack: got %d want %d", frm.Ack(), wantAck)
		}
		if frm.WindowSize() != wantWnd {
			t.Fatalf("wnd: got %d want %d", frm.WindowSize(), wantWnd)
		}
		off, flags := frm.OffsetAndFlags()
		if off != 5 || flags != wantFlags {
			t.Fatalf("offset/flags: got %d/%s want 5/%s", off, flags, wantFlags)
		}
		if frm.HeaderLength() != 20 {
			t.Fatalf("header length: got %d want 20", frm.HeaderLength())
		}
	}
}

func TestNewFrameShortBuffer(t *testing.T) {
	_, err := NewFrame(make([]byte, 19))
	if err != ErrShortBuffer {
		t.Fatalf("got %v want ErrShortBuffer", err)
	}
}

func TestSegmentLEN(t *testing.T) {
	tt := []struct {
		seg  Segment
		want Size
	}{
		{Segment{DATALEN: 0, Flags: 0}, 0},
		{Segment{DATALEN: 5, Flags: FlagACK}, 5},
		{Segment{DATALEN: 0, Flags: FlagSYN}, 1},
		{Segment{DATALEN: 0, Flags: FlagFIN}, 1},
		{Segment{DATALEN: 0, Flags: FlagSYN | FlagFIN}, 2},
	}
	for _, tc := range tt {
		if got := tc.seg.LEN(); got != tc.want {
			t.Errorf("LEN(%+v)=%d want %d", tc.seg, got, tc.want)
		}
	}
}

func TestChecksumRoundTrip(t *testing.T) {
	src := [4]byte{192, 168, 0, 1}
	dst := [4]byte{192, 168, 0, 2}
	seg := make([]byte, SizeHeader)
	frm, _ := NewFrame(seg)
	frm.SetSourcePort(1234)
	frm.SetDestinationPort(80)
	frm.SetSeq(100)
	frm.SetAck(0)
	frm.SetOffsetAndFlags(5, FlagSYN)
	frm.SetWindowSize(4096)

	sum := PseudoHeaderIPv4Checksum(src, dst, seg)
	frm.SetChecksum(NeverZero(sum))

	// A correctly checksummed segment sums to zero when the checksum field
	// itself is included in the running sum.
	verify := PseudoHeaderIPv4Checksum(src, dst, seg)
	if verify != 0 {
		t.Fatalf("checksum self-verification failed: got %#x want 0", verify)
	}
}
