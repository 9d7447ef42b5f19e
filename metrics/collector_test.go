package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/netreliant/rtcp/conn"
	"github.com/netreliant/rtcp/network"
	"github.com/netreliant/rtcp/tcpseg"
)

func newTestConnection(t *testing.T) *conn.Connection {
	t.Helper()
	a, b := network.NewPipePair([4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2})
	tx := network.Bind(a, [4]byte{10, 0, 0, 2})
	four := conn.FourTuple{PeerAddr: [4]byte{10, 0, 0, 2}, PeerPort: 9000, LocalAddr: [4]byte{10, 0, 0, 1}, LocalPort: 80}
	_ = b
	return conn.Accept(four, tcpseg.Value(5000), tcpseg.Value(1000), tx, conn.NewFakeClock(), conn.Config{IgnoreChecksum: true})
}

func TestCollectorAddCollectRemove(t *testing.T) {
	c := NewCollector("rtcp", []string{"conn_id"}, prometheus.Labels{"app": "test"})
	connection := newTestConnection(t)
	c.Add(connection, []string{"abc"})
	if c.Len() != 1 {
		t.Fatalf("Len()=%d want 1", c.Len())
	}

	ch := make(chan prometheus.Metric, 64)
	c.Collect(ch)
	close(ch)
	var n int
	for range ch {
		n++
	}
	if n != len(c.infos) {
		t.Fatalf("collected %d metrics, want %d", n, len(c.infos))
	}

	c.Remove(connection)
	if c.Len() != 0 {
		t.Fatalf("Len()=%d want 0 after Remove", c.Len())
	}
}

func TestCollectorDescribeEmitsEveryDesc(t *testing.T) {
	c := NewCollector("rtcp", nil, nil)
	ch := make(chan *prometheus.Desc, 64)
	c.Describe(ch)
	close(ch)
	var n int
	for range ch {
		n++
	}
	if n != len(c.infos) {
		t.Fatalf("described %d, want %d", n, len(c.infos))
	}
}
