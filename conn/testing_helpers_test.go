package conn

import (
	"testing"

	"github.com/netreliant/rtcp/tcpseg"
)

// captureTransport records every segment handed to Send, decoded into a
// tcpseg.Frame for assertions, mirroring how the teacher's own tcp_test.go
// inspects raw segment bytes rather than a higher-level mock.
type captureTransport struct {
	sent []tcpseg.Frame
	err  error
}

func (tx *captureTransport) Send(segment []byte) error {
	frm, err := tcpseg.NewFrame(append([]byte(nil), segment...))
	if err != nil {
		return err
	}
	tx.sent = append(tx.sent, frm)
	return tx.err
}

func (tx *captureTransport) last() tcpseg.Frame {
	return tx.sent[len(tx.sent)-1]
}

func (tx *captureTransport) reset() { tx.sent = nil }

func newTestConn(t *testing.T, tx *captureTransport, clk Clock) (*Connection, FourTuple) {
	t.Helper()
	four := FourTuple{
		PeerAddr:  [4]byte{10, 0, 0, 2},
		PeerPort:  9000,
		LocalAddr: [4]byte{10, 0, 0, 1},
		LocalPort: 80,
	}
	c := Accept(four, 5000, 1000, tx, clk, Config{IgnoreChecksum: true, MSS: 536})
	return c, four
}

func collectReceived(c *Connection) *[][]byte {
	got := new([][]byte)
	c.SetReceiveCallback(func(_ *Connection, payload []byte) {
		*got = append(*got, append([]byte(nil), payload...))
	})
	return got
}
