// Package metrics exposes live Connection internals as Prometheus metrics,
// polled the same way the teacher retrieval pack's TCPInfoCollector polls
// kernel tcp_info (see runZeroInc-sockstats/pkg/exporter), except the data
// source here is an in-process conn.Connection.Stats snapshot rather than a
// getsockopt call: this engine owns the TCB itself, so there is no fd and no
// kernel socket to introspect.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/netreliant/rtcp/conn"
)

type info struct {
	description *prometheus.Desc
	supplier    func(s conn.Stats, labelValues []string) prometheus.Metric
}

type connEntry struct {
	c      *conn.Connection
	labels []string
}

// Collector is a prometheus.Collector that reports each tracked
// Connection's cwnd, RTT estimator state, bytes in flight, retransmit
// count, and byte counters. Add/Remove may be called concurrently with
// Collect; all three take the same lock the exporter reference does.
type Collector struct {
	mu    sync.Mutex
	conns map[*conn.Connection]connEntry
	infos []info
}

// NewCollector builds a Collector with metric names prefixed by prefix and
// a per-connection label set named by connectionLabels (values supplied to
// Add), plus constLabels attached to every series, mirroring
// exporter.NewTCPInfoCollector's constructor shape.
func NewCollector(prefix string, connectionLabels []string, constLabels prometheus.Labels) *Collector {
	c := &Collector{
		conns: make(map[*conn.Connection]connEntry),
	}
	c.addMetrics(prefix, connectionLabels, constLabels)
	return c
}

func (c *Collector) addMetrics(prefix string, labels []string, constLabels prometheus.Labels) {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prefix+"_"+name, help, labels, constLabels)
	}
	gauge := func(name, help string, f func(conn.Stats) float64) info {
		d := desc(name, help)
		return info{
			description: d,
			supplier: func(s conn.Stats, lv []string) prometheus.Metric {
				return prometheus.MustNewConstMetric(d, prometheus.GaugeValue, f(s), lv...)
			},
		}
	}
	counter := func(name, help string, f func(conn.Stats) float64) info {
		d := desc(name, help)
		return info{
			description: d,
			supplier: func(s conn.Stats, lv []string) prometheus.Metric {
				return prometheus.MustNewConstMetric(d, prometheus.CounterValue, f(s), lv...)
			},
		}
	}
	c.infos = []info{
		gauge("cwnd_bytes", "current congestion window in bytes", func(s conn.Stats) float64 { return float64(s.CWND) }),
		gauge("bytes_in_flight", "unacknowledged bytes outstanding", func(s conn.Stats) float64 { return float64(s.BytesInFlight) }),
		gauge("srtt_seconds", "smoothed round-trip-time estimate", func(s conn.Stats) float64 { return s.SRTT.Seconds() }),
		gauge("rttvar_seconds", "round-trip-time variance estimate", func(s conn.Stats) float64 { return s.RTTVAR.Seconds() }),
		gauge("rto_seconds", "current retransmission timeout", func(s conn.Stats) float64 { return s.RTO.Seconds() }),
		gauge("state", "numeric connection state (conn.State ordinal)", func(s conn.Stats) float64 { return float64(s.State) }),
		counter("retransmits_total", "retransmission timeouts fired", func(s conn.Stats) float64 { return float64(s.Retransmits) }),
		counter("bytes_sent_total", "application bytes transmitted", func(s conn.Stats) float64 { return float64(s.BytesSent) }),
		counter("bytes_received_total", "application bytes delivered to the receive callback", func(s conn.Stats) float64 { return float64(s.BytesReceived) }),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	for _, i := range c.infos {
		descs <- i.description
	}
}

// Collect implements prometheus.Collector: it snapshots every tracked
// Connection's Stats() and emits one sample per metric per connection.
// Unlike the kernel-backed exporter this is grounded on, a dead Connection
// is never removed here as a side effect of a failed syscall — callers
// must call Remove explicitly (e.g. from the accept callback's peer of
// Listener.Reap).
func (c *Collector) Collect(out chan<- prometheus.Metric) {
	c.mu.Lock()
	entries := make([]connEntry, 0, len(c.conns))
	for _, e := range c.conns {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	for _, e := range entries {
		s := e.c.Stats()
		for _, i := range c.infos {
			out <- i.supplier(s, e.labels)
		}
	}
}

// Add starts tracking c, reporting labels as the values for the
// connectionLabels given to NewCollector, in the same order.
func (c *Collector) Add(conn *conn.Connection, labels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[conn] = connEntry{c: conn, labels: labels}
}

// Remove stops tracking c. It is a no-op if c was never added, or was
// already removed.
func (c *Collector) Remove(conn *conn.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, conn)
}

// Len reports how many connections are currently tracked, for tests.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}
