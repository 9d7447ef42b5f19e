package network

import (
	"log/slog"
	"net"
	"sync"

	"github.com/netreliant/rtcp/internal/logging"
)

// UDP is a Link that carries whole TCP-framed segments as UDP datagram
// payloads, standing in for a raw IPv4 socket (§6 notes raw network
// send/receive plumbing is out of scope; this is the simplest real
// transport that needs no elevated privileges to open). TunnelPort is the
// UDP port every peer listens on; the TCP ports inside each segment's
// header are the real, virtual ports the reliability engine reasons about.
type UDP struct {
	conn       *net.UDPConn
	localAddr  [4]byte
	tunnelPort int
	ignoreCRC  bool
	log        logging.Logger

	mu   sync.Mutex
	recv ReceiverFunc
}

// ListenUDP opens a UDP socket on localAddr:tunnelPort and returns a Link
// ready to RegisterReceiver and Send. Call Close when done.
func ListenUDP(localAddr [4]byte, tunnelPort int, ignoreChecksum bool, log logging.Logger) (*UDP, error) {
	pc, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(localAddr[0], localAddr[1], localAddr[2], localAddr[3]), Port: tunnelPort})
	if err != nil {
		return nil, err
	}
	u := &UDP{conn: pc, localAddr: localAddr, tunnelPort: tunnelPort, ignoreCRC: ignoreChecksum, log: log}
	go u.readLoop()
	return u, nil
}

func (u *UDP) readLoop() {
	buf := make([]byte, 64*1024)
	for {
		n, raddr, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			u.log.Debug("udp link closed", slog.String("err", err.Error()))
			return
		}
		u.mu.Lock()
		recv := u.recv
		u.mu.Unlock()
		if recv == nil {
			continue
		}
		var src [4]byte
		copy(src[:], raddr.IP.To4())
		segment := append([]byte(nil), buf[:n]...)
		recv(src, u.localAddr, segment)
	}
}

func (u *UDP) RegisterReceiver(f ReceiverFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.recv = f
}

func (u *UDP) IgnoreChecksum() bool { return u.ignoreCRC }

func (u *UDP) Send(segment []byte, dstAddr [4]byte) error {
	addr := &net.UDPAddr{IP: net.IPv4(dstAddr[0], dstAddr[1], dstAddr[2], dstAddr[3]), Port: u.tunnelPort}
	_, err := u.conn.WriteToUDP(segment, addr)
	return err
}

// Close releases the underlying UDP socket, ending the read loop.
func (u *UDP) Close() error {
	return u.conn.Close()
}
