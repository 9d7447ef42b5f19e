package network

import (
	"errors"
	"sync"
)

// Pipe is an in-memory Link connecting exactly two addressed endpoints,
// useful for deterministic tests that would otherwise need a real socket.
// Datagrams sent on one end are delivered synchronously (on the caller's
// goroutine) to the other end's registered receiver.
type Pipe struct {
	mu             sync.Mutex
	localAddr      [4]byte
	peer           *Pipe
	recv           ReceiverFunc
	ignoreChecksum bool
	dropNext       bool
}

// NewPipePair returns two Pipes, each addressed as given, wired to deliver
// to one another.
func NewPipePair(addrA, addrB [4]byte) (a, b *Pipe) {
	a = &Pipe{localAddr: addrA}
	b = &Pipe{localAddr: addrB}
	a.peer = b
	b.peer = a
	return a, b
}

// SetIgnoreChecksum controls the value IgnoreChecksum() reports.
func (p *Pipe) SetIgnoreChecksum(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ignoreChecksum = v
}

// DropNext causes the next Send call to silently discard its segment,
// simulating a single lost datagram for retransmission tests.
func (p *Pipe) DropNext() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropNext = true
}

func (p *Pipe) RegisterReceiver(f ReceiverFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recv = f
}

func (p *Pipe) IgnoreChecksum() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ignoreChecksum
}

func (p *Pipe) Send(segment []byte, dstAddr [4]byte) error {
	p.mu.Lock()
	if p.dropNext {
		p.dropNext = false
		p.mu.Unlock()
		return nil
	}
	peer := p.peer
	src := p.localAddr
	p.mu.Unlock()
	if peer == nil {
		return errors.New("network: pipe has no peer")
	}
	peer.mu.Lock()
	recv := peer.recv
	peer.mu.Unlock()
	if recv == nil {
		return nil
	}
	cp := append([]byte(nil), segment...)
	recv(src, dstAddr, cp)
	return nil
}
