package network

// BoundTransport adapts a shared Link, plus one fixed peer address, to the
// narrow per-Connection send capability (conn.Transport: Send([]byte) error).
// Listener constructs one per accepted 4-tuple via a TransportFactory.
type BoundTransport struct {
	link    Link
	dstAddr [4]byte
}

// Bind returns a BoundTransport that sends everything to dstAddr over link.
func Bind(link Link, dstAddr [4]byte) BoundTransport {
	return BoundTransport{link: link, dstAddr: dstAddr}
}

func (t BoundTransport) Send(segment []byte) error {
	return t.link.Send(segment, t.dstAddr)
}
