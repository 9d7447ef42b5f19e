// Command rtcpd runs the reliability engine as a standalone server: it
// binds a UDP-tunneled TCP-framed Link (see package network), accepts
// connections, echoes received bytes back to the peer, and serves
// Prometheus metrics over HTTP, in the style of the teacher's
// examples/stackbasic and examples/httpserver main packages plus the
// retrieval pack's exporter_example1.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/netreliant/rtcp/conn"
	"github.com/netreliant/rtcp/internal/logging"
	"github.com/netreliant/rtcp/listener"
	"github.com/netreliant/rtcp/metrics"
	"github.com/netreliant/rtcp/network"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		flagPort           = 7878
		flagTunnelPort     = 7979
		flagMetricsAddr    = ":9102"
		flagIgnoreChecksum = false
		flagReapIdle       = 5 * time.Minute
		flagVerbose        = false
	)
	flag.IntVar(&flagPort, "port", flagPort, "virtual TCP port to accept connections on")
	flag.IntVar(&flagTunnelPort, "tunnel-port", flagTunnelPort, "UDP port carrying TCP-framed segments")
	flag.StringVar(&flagMetricsAddr, "metrics-addr", flagMetricsAddr, "address to serve /metrics on")
	flag.BoolVar(&flagIgnoreChecksum, "ignore-checksum", flagIgnoreChecksum, "skip segment checksum verification")
	flag.DurationVar(&flagReapIdle, "reap-idle", flagReapIdle, "stop tracking connections idle longer than this")
	flag.BoolVar(&flagVerbose, "v", flagVerbose, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rtcpd is a reliability-engine echo server over a UDP-tunneled TCP-framed link.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	log := logging.Logger{Log: slogger}

	localAddr := [4]byte{127, 0, 0, 1}
	link, err := network.ListenUDP(localAddr, flagTunnelPort, flagIgnoreChecksum, log)
	if err != nil {
		return fmt.Errorf("rtcpd: listen udp: %w", err)
	}
	defer link.Close()

	collector := metrics.NewCollector("rtcp", []string{"conn_id"}, nil)
	prometheus.MustRegister(collector)

	lst := listener.New(listener.Config{
		Port:           uint16(flagPort),
		IgnoreChecksum: flagIgnoreChecksum,
		Logger:         log,
	}, func(four conn.FourTuple) conn.Transport {
		return network.Bind(link, four.PeerAddr)
	})
	link.RegisterReceiver(func(src, dst [4]byte, segment []byte) {
		lst.OnDatagram(src, dst, segment)
	})

	lst.SetAcceptCallback(func(c *conn.Connection) {
		collector.Add(c, []string{c.ID().String()})
		slogger.Info("accepted connection", slog.String("conn_id", c.ID().String()), slog.Any("peer", c.FourTuple().PeerAddr))
		c.SetReceiveCallback(func(c *conn.Connection, payload []byte) {
			if len(payload) == 0 {
				slogger.Info("peer closed", slog.String("conn_id", c.ID().String()))
				collector.Remove(c)
				return
			}
			c.Send(payload) // echo
		})
	})

	go reapLoop(lst, collector, flagReapIdle, slogger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: flagMetricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slogger.Error("metrics server failed", slog.String("err", err.Error()))
		}
	}()

	slogger.Info("rtcpd listening",
		slog.Int("port", flagPort),
		slog.Int("tunnel_port", flagTunnelPort),
		slog.String("metrics_addr", flagMetricsAddr))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	return nil
}

func reapLoop(lst *listener.Listener, collector *metrics.Collector, idle time.Duration, slogger *slog.Logger) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for range ticker.C {
		reaped := lst.Reap(time.Now().Add(-idle))
		for _, c := range reaped {
			collector.Remove(c)
			slogger.Debug("reaped idle connection", slog.String("conn_id", c.ID().String()))
		}
	}
}
