package network

import (
	"testing"
)

func TestPipeDeliversToPeer(t *testing.T) {
	a, b := NewPipePair([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2})
	var got []byte
	var gotSrc, gotDst [4]byte
	b.RegisterReceiver(func(src, dst [4]byte, segment []byte) {
		gotSrc, gotDst = src, dst
		got = append([]byte(nil), segment...)
	})
	payload := []byte("hello")
	if err := a.Send(payload, b.localAddr); err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q want hello", got)
	}
	if gotSrc != a.localAddr {
		t.Fatalf("src=%v want %v", gotSrc, a.localAddr)
	}
	if gotDst != b.localAddr {
		t.Fatalf("dst=%v want %v", gotDst, b.localAddr)
	}
}

func TestPipeDropNextDropsOneSegment(t *testing.T) {
	a, b := NewPipePair([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2})
	var calls int
	b.RegisterReceiver(func(src, dst [4]byte, segment []byte) { calls++ })
	a.DropNext()
	a.Send([]byte("lost"), b.localAddr)
	if calls != 0 {
		t.Fatalf("expected dropped segment, got %d deliveries", calls)
	}
	a.Send([]byte("delivered"), b.localAddr)
	if calls != 1 {
		t.Fatalf("expected one delivery after drop, got %d", calls)
	}
}

func TestBoundTransportSendsToFixedPeer(t *testing.T) {
	a, b := NewPipePair([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2})
	var got []byte
	b.RegisterReceiver(func(src, dst [4]byte, segment []byte) { got = segment })
	tx := Bind(a, b.localAddr)
	if err := tx.Send([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if string(got) != "x" {
		t.Fatalf("got %q want x", got)
	}
}
